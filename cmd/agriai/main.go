// agriai — backend сервиса AgriAI: HTTP шлюз к агрономическим flow,
// каталогу культур и программ, приём заявок.
//
// Использование:
//
//	agriai serve                                  # HTTP сервер
//	agriai flow list                              # зарегистрированные flow
//	agriai flow run news_feed --input '{"region":"Punjab","language":"Hindi"}'
//	agriai flow run disease_detection --photo leaf.jpg --input '{"language":"Tamil"}'
//	agriai models ping                            # доступность моделей
//	agriai documents list farmer-42               # документы заявок в S3
//	agriai token farmer-42 --name "Ravi"          # JWT для локальной отладки
//
// Переменные окружения:
//
//	OPENAI_API_KEY, GEMINI_API_KEY — ключи провайдеров (подставляются в config.yaml)
//	AGRIAI_JWT_SECRET              — секрет подписи сессий
//
// Конфигурация: --config, затем config.yaml в текущей директории, затем рядом с бинарником.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/config"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

var (
	// Глобальные флаги
	configPath string
	envFiles   []string
	verbose    bool

	// appCfg заполняется в PersistentPreRunE.
	appCfg *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "agriai",
	Short: "AgriAI - AI assistant backend for farmers",
	Long: `AgriAI serves the farmer-facing AI flows (crop suggestion, disease detection,
irrigation advice, news, market prediction, assistant), the crop and scheme
catalogs and the scheme application intake over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFiles(envFiles...); err != nil {
			return err
		}

		path := config.FindConfigPath(configPath)
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.App.LogLevel
		if verbose {
			level = "debug"
		}
		if err := utils.InitLogger(utils.LogOptions{
			Level:       level,
			File:        cfg.App.LogFile,
			Development: cfg.App.Debug,
		}); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		appCfg = cfg
		utils.Debug("Config loaded", "path", path, "models", len(cfg.Models.Definitions))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		utils.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Extra .env files (default .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(serveCmd, flowCmd, modelsCmd, documentsCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/llm"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/models"
)

// pingTimeout — предел одного тестового запроса к модели.
const pingTimeout = 20 * time.Second

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect configured models",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List model aliases from config",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := models.NewRegistryFromConfig(cmd.Context(), appCfg)
		if err != nil {
			return err
		}
		for _, m := range registry.Describe() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.Alias, m.Provider, m.ModelName)
		}
		return nil
	},
}

var modelsPingCmd = &cobra.Command{
	Use:   "ping [alias...]",
	Short: "Send a one-word request to each model and report availability",
	Long:  "Without arguments pings models.default_chat and models.default_vision.",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := models.NewRegistryFromConfig(cmd.Context(), appCfg)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			args = []string{appCfg.Models.DefaultChat}
			if vision := appCfg.GetVisionModel(); vision != appCfg.Models.DefaultChat {
				args = append(args, vision)
			}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		failed := 0
		for _, alias := range args {
			res := pingModel(cmd.Context(), registry, alias)
			if !res.Available {
				failed++
			}
			if err := enc.Encode(res); err != nil {
				return err
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d models unavailable", failed, len(args))
		}
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd, modelsPingCmd)
}

// pingResult — итог проверки одной модели.
type pingResult struct {
	Model     string `json:"model"`
	Provider  string `json:"provider,omitempty"`
	ModelName string `json:"model_name,omitempty"`
	Available bool   `json:"available"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func pingModel(ctx context.Context, registry *models.Registry, alias string) pingResult {
	res := pingResult{Model: alias}

	provider, def, err := registry.Get(alias)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Provider, res.ModelName = def.Provider, def.ModelName

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	_, err = provider.Generate(ctx, []llm.Message{{Role: llm.RoleUser, Content: "Reply with the single word: pong"}}, llm.WithMaxTokens(5))
	res.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Available = true
	return res
}

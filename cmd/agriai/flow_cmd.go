package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vijayasainandipati/Agri-Ai-2/internal/actions"
	"github.com/vijayasainandipati/Agri-Ai-2/internal/i18n"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

var (
	flowInput     string
	flowInputFile string
	flowPhoto     string
)

var flowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Inspect and run AI flows from the command line",
}

var flowListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered flows",
	RunE: func(cmd *cobra.Command, args []string) error {
		executor, err := buildExecutor(cmd.Context(), appCfg)
		if err != nil {
			return err
		}
		for _, name := range executor.Flows().Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var flowRunCmd = &cobra.Command{
	Use:   "run <flow>",
	Short: "Run a flow once and print its JSON output",
	Args:  cobra.ExactArgs(1),
	RunE:  runFlow,
}

func init() {
	flowRunCmd.Flags().StringVarP(&flowInput, "input", "i", "", "Flow input as a JSON object")
	flowRunCmd.Flags().StringVarP(&flowInputFile, "input-file", "f", "", "Read flow input from a JSON file (- for stdin)")
	flowRunCmd.Flags().StringVar(&flowPhoto, "photo", "", "Image file passed as photoDataUri")

	flowCmd.AddCommand(flowListCmd, flowRunCmd)
}

func runFlow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	input, err := readFlowInput(cmd.InOrStdin())
	if err != nil {
		return err
	}

	executor, err := buildExecutor(ctx, appCfg)
	if err != nil {
		return err
	}
	tr, err := i18n.Default()
	if err != nil {
		return err
	}

	// CLI не сохраняет заявок, поэтому хранилища не нужны.
	gw := actions.NewGateway(executor, nil, nil, tr)

	output, err := gw.Execute(ctx, args[0], input)
	if err != nil {
		language, _ := input["language"].(string)
		title, description := gw.Notice(err, language)
		utils.Error("Flow failed", "flow", args[0], "error", err)
		return fmt.Errorf("%s: %s: %w", title, description, err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// readFlowInput собирает вход из --input, --input-file и --photo.
func readFlowInput(stdin io.Reader) (map[string]any, error) {
	raw := []byte(flowInput)
	switch {
	case flowInputFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		raw = data
	case flowInputFile != "":
		data, err := os.ReadFile(flowInputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		raw = data
	}

	input := map[string]any{}
	if strings.TrimSpace(string(raw)) != "" {
		if err := json.Unmarshal(raw, &input); err != nil {
			return nil, fmt.Errorf("input must be a JSON object: %w", err)
		}
	}

	if flowPhoto != "" {
		data, err := os.ReadFile(flowPhoto)
		if err != nil {
			return nil, fmt.Errorf("failed to read photo: %w", err)
		}
		input["photoDataUri"] = utils.EncodeDataURI(http.DetectContentType(data), data)
	}
	return input, nil
}

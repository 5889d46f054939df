package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vijayasainandipati/Agri-Ai-2/internal/agri"
	"github.com/vijayasainandipati/Agri-Ai-2/internal/auth"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/config"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/llm"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/models"
)

func TestMain(m *testing.M) {
	// Фоновые воркеры из init зависимостей: opencensus (genai) и анализатор bleve.
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
		goleak.IgnoreAnyFunction("github.com/blevesearch/bleve_index_api.AnalysisWorker"),
	)
}

const testConfig = `
app:
  log_level: warn
models:
  default_chat: chat
  definitions:
    chat:
      provider: openai
      model_name: gpt-4o-mini
      api_key: test-key
auth:
  jwt_secret: cli-test-secret
store:
  dsn: ${AGRIAI_TEST_DB}
`

// execute запускает корневую команду с временным config.yaml.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	t.Setenv("AGRIAI_TEST_DB", filepath.Join(dir, "agriai.db"))

	t.Cleanup(func() {
		configPath, envFiles, verbose, appCfg = "", nil, false, nil
		tokenName, tokenTTL = "", 0
		flowInput, flowInputFile, flowPhoto = "", "", ""
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", path))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootRegistersCommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "flow", "models", "documents", "token"})
}

func TestTokenCommand(t *testing.T) {
	out, err := execute(t, "token", "farmer-42", "--name", "Ravi")
	require.NoError(t, err)

	token := strings.TrimSpace(out)
	require.NotEmpty(t, token)

	require.NotNil(t, appCfg)
	jm, err := auth.NewJWTManager(appCfg.Auth)
	require.NoError(t, err)
	claims, err := jm.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "farmer-42", claims.UserID)
	assert.Equal(t, "Ravi", claims.Name)
	assert.Equal(t, "agriai", claims.Issuer)
}

func TestTokenCommandNeedsUserID(t *testing.T) {
	_, err := execute(t, "token")
	assert.Error(t, err)
}

func TestMissingConfig(t *testing.T) {
	t.Cleanup(func() { configPath = "" })

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"token", "u1", "--config", filepath.Join(t.TempDir(), "absent.yaml")})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestDocumentsNeedS3(t *testing.T) {
	_, err := execute(t, "documents", "list", "farmer-42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 is not configured")
}

func TestFlowList(t *testing.T) {
	out, err := execute(t, "flow", "list")
	require.NoError(t, err)

	lines := strings.Fields(out)
	assert.ElementsMatch(t, []string{
		agri.FlowCropSuggestion,
		agri.FlowDiseaseDetection,
		agri.FlowWeatherIrrigation,
		agri.FlowNewsFeed,
		agri.FlowMarketPrediction,
		agri.FlowKisanAssistant,
	}, lines)
}

func TestReadFlowInput(t *testing.T) {
	t.Cleanup(func() { flowInput, flowInputFile, flowPhoto = "", "", "" })

	t.Run("inline json", func(t *testing.T) {
		flowInput, flowInputFile, flowPhoto = `{"region":"Maharashtra","language":"Marathi"}`, "", ""
		got, err := readFlowInput(nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"region": "Maharashtra", "language": "Marathi"}, got)
	})

	t.Run("stdin", func(t *testing.T) {
		flowInput, flowInputFile, flowPhoto = "", "-", ""
		got, err := readFlowInput(strings.NewReader(`{"village":"Nagercoil","cropType":"Rice","language":"Tamil"}`))
		require.NoError(t, err)
		assert.Equal(t, "Nagercoil", got["village"])
	})

	t.Run("photo becomes data uri", func(t *testing.T) {
		photo := filepath.Join(t.TempDir(), "leaf.png")
		png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
		require.NoError(t, os.WriteFile(photo, png, 0o644))

		flowInput, flowInputFile, flowPhoto = `{"language":"Hindi"}`, "", photo
		got, err := readFlowInput(nil)
		require.NoError(t, err)
		uri, _ := got["photoDataUri"].(string)
		assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"), uri)
		assert.Equal(t, "Hindi", got["language"])
	})

	t.Run("not an object", func(t *testing.T) {
		flowInput, flowInputFile, flowPhoto = `["a"]`, "", ""
		_, err := readFlowInput(nil)
		assert.Error(t, err)
	})
}

func TestRunTokenWithoutSecret(t *testing.T) {
	_, err := execute(t, "token", "u1")
	require.NoError(t, err)

	appCfg.Auth.JWTSecret = ""
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	assert.Error(t, runToken(cmd, []string{"u1"}))
}

func TestPingModel(t *testing.T) {
	registry := models.NewRegistry()
	require.NoError(t, registry.Register("ok", config.ModelDef{Provider: "openai", ModelName: "gpt-4o-mini"},
		llm.ProviderFunc(func(ctx context.Context, msgs []llm.Message, opts ...any) (llm.Message, error) {
			return llm.Message{Role: llm.RoleAssistant, Content: "pong"}, nil
		})))
	require.NoError(t, registry.Register("down", config.ModelDef{Provider: "googleai", ModelName: "gemini-2.0-flash"},
		llm.ProviderFunc(func(ctx context.Context, msgs []llm.Message, opts ...any) (llm.Message, error) {
			return llm.Message{}, errors.New("503 unavailable")
		})))

	ok := pingModel(context.Background(), registry, "ok")
	assert.True(t, ok.Available)
	assert.Equal(t, "gpt-4o-mini", ok.ModelName)
	assert.Empty(t, ok.Error)

	down := pingModel(context.Background(), registry, "down")
	assert.False(t, down.Available)
	assert.Equal(t, "googleai", down.Provider)
	assert.Contains(t, down.Error, "503")

	missing := pingModel(context.Background(), registry, "nope")
	assert.False(t, missing.Available)
	assert.NotEmpty(t, missing.Error)
}

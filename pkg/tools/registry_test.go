package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/schema"
)

func echoTool() *ShapedTool {
	return &ShapedTool{
		Name:        "echo",
		Description: "Echoes the location",
		Input: &schema.Shape{Name: "echo_input", Fields: []schema.Field{
			{Name: "location", Kind: schema.KindString, Required: true},
		}},
		Output: &schema.Field{Kind: schema.KindString},
		Handler: func(ctx context.Context, args schema.Record) (any, error) {
			return "crops for " + args.String("location"), nil
		},
		Default: "",
	}
}

func TestRegisterValidatesDefinition(t *testing.T) {
	tests := []struct {
		name    string
		tool    Tool
		wantErr bool
	}{
		{name: "shaped tool", tool: echoTool()},
		{name: "empty name", tool: &ShapedTool{Handler: echoTool().Handler}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.tool)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool()))
	assert.Error(t, r.Register(echoTool()))
}

func TestInvoke(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool()))

	out, err := r.Invoke(context.Background(), "echo", "```json\n{\"location\": \"Madurai\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, `"crops for Madurai"`, out)
}

func TestInvokeFailuresAreToolExecutionErrors(t *testing.T) {
	bad := echoTool()
	bad.Name = "bad_result"
	bad.Handler = func(ctx context.Context, args schema.Record) (any, error) {
		return 42, nil
	}

	failing := echoTool()
	failing.Name = "failing"
	failing.Handler = func(ctx context.Context, args schema.Record) (any, error) {
		return nil, errors.New("upstream down")
	}

	slow := echoTool()
	slow.Name = "slow"
	slow.Handler = func(ctx context.Context, args schema.Record) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	r := NewRegistry()
	r.SetTimeout(20 * time.Millisecond)
	for _, tool := range []Tool{echoTool(), bad, failing, slow} {
		require.NoError(t, r.Register(tool))
	}

	tests := []struct {
		name string
		tool string
		args string
	}{
		{name: "unknown tool", tool: "missing", args: `{}`},
		{name: "missing argument", tool: "echo", args: `{}`},
		{name: "malformed arguments", tool: "echo", args: `{location`},
		{name: "result violates output shape", tool: "bad_result", args: `{"location": "x"}`},
		{name: "handler error", tool: "failing", args: `{"location": "x"}`},
		{name: "timeout", tool: "slow", args: `{"location": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Invoke(context.Background(), tt.tool, tt.args)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrToolExecution))

			var te *ToolExecutionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.tool, te.Tool)
		})
	}

	assert.Equal(t, `""`, r.DefaultResult("echo"))
	assert.Equal(t, "null", r.DefaultResult("missing"))
}

func TestGetDefinitionsOrder(t *testing.T) {
	first := echoTool()
	second := echoTool()
	second.Name = "second"

	r := NewRegistry()
	require.NoError(t, r.Register(first))
	require.NoError(t, r.Register(second))

	defs := r.GetDefinitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "echo", defs[0].Name)
	assert.Equal(t, "second", defs[1].Name)

	only := r.GetDefinitions("second", "unknown")
	require.Len(t, only, 1)
	assert.Equal(t, "second", only[0].Name)
}

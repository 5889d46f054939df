package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerKeyValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	Info("flow executed", "flow", "news_feed", "duration_ms", 12)
	Warn("tool degraded", "tool", "getWeatherForecast")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "flow executed", entries[0].Message)
	assert.Equal(t, "news_feed", entries[0].ContextMap()["flow"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	err := InitLogger(LogOptions{Level: "loud"})
	assert.Error(t, err)
}

package logger_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonesrussell/north-cloud/search-probe/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, logger.ParseLevel(tt.in))
		})
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	var cfg logger.Config
	cfg.SetDefaults()

	assert.Equal(t, logger.DefaultLevel, cfg.Level)
	assert.Equal(t, logger.FormatJSON, cfg.Format)
	assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)
}

func TestNew_WritesJSONWithFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "probe.log")
	log, err := logger.New(logger.Config{Level: "debug", OutputPaths: []string{path}})
	require.NoError(t, err)

	log.With(logger.String("component", "test")).Info("index created",
		logger.String("index", "customer"),
		logger.Int("shards", 1),
	)
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "index created", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "customer", entry["index"])
	assert.Equal(t, "test", entry["component"])
	assert.InDelta(t, 1, entry["shards"], 0)
}

func TestNew_LevelFiltersDebug(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "probe.log")
	log, err := logger.New(logger.Config{Level: "warn", OutputPaths: []string{path}})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestWithContext_FromContext_RoundTrip(t *testing.T) {
	t.Parallel()

	nop := logger.NewNop()
	ctx := logger.WithContext(context.Background(), nop)

	assert.Same(t, nop, logger.FromContext(ctx))
}

func TestFromContext_NoLogger_ReturnsUsableFallback(t *testing.T) {
	t.Parallel()

	fallback := logger.FromContext(context.Background())
	require.NotNil(t, fallback)

	fallback.Debug("debug message")
	fallback.Warn("message with field", logger.String("key", "value"))
}

func TestNop_WithReturnsSelf(t *testing.T) {
	t.Parallel()

	nop := logger.NewNop()
	assert.Same(t, nop, nop.With(logger.Bool("x", true)))
	assert.NoError(t, nop.Sync())
}

package logger_test

import (
	"context"
	"sitemapcheck/pkg/logger"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		debug       bool
	}{
		{name: "development", environment: logger.DevelopmentEnvironment, debug: true},
		{name: "production", environment: logger.ProductionEnvironment, debug: false},
		{name: "unknown falls back to development", environment: "staging", debug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, logger.Setup(tt.environment))

			ctx := context.Background()
			require.NotNil(t, logger.Get(ctx))
			require.Equal(t, tt.debug, logger.IsDebug(ctx))
		})
	}
}

func TestGet_PrefersContextLogger(t *testing.T) {
	require.NoError(t, logger.Setup(logger.DevelopmentEnvironment))

	ctx := context.Background()
	require.NotNil(t, logger.Get(ctx), "should return default logger when context has no logger")

	custom := zap.NewNop()
	require.Equal(t, custom, logger.Get(logger.WithLogger(ctx, custom)))
}

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	ctx = logger.WithFields(ctx, zap.String("runID", "abc"), zap.Int("attempt", 2))
	logger.Warn(ctx, "retrying")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "retrying", entries[0].Message)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Equal(t, "abc", entries[0].ContextMap()["runID"])
	require.EqualValues(t, 2, entries[0].ContextMap()["attempt"])
}

func TestLoggingFunctions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	levels := make([]zapcore.Level, 0, 4)
	for _, e := range logs.All() {
		levels = append(levels, e.Level)
	}
	require.Equal(t, []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}, levels)
}

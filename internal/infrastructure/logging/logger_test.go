package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "chatty"

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestFromSettings(t *testing.T) {
	tests := []struct {
		name  string
		level string
		dev   bool
		want  zapcore.Level
	}{
		{"production default", "", false, zapcore.InfoLevel},
		{"development default", "", true, zapcore.DebugLevel},
		{"explicit warn", "warn", false, zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := FromSettings(tt.level, tt.dev)
			require.NotNil(t, logger)
			assert.True(t, logger.Core().Enabled(tt.want))
			assert.False(t, logger.Core().Enabled(tt.want-1))
		})
	}
}

func TestFromSettingsFallsBackToNop(t *testing.T) {
	logger := FromSettings("nonsense", false)
	require.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestComponent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := &Logger{Logger: zap.New(core)}

	logger.Component("session").Info("starting session")
	logger.Component("model").Warn("model fetch failed")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "session", logs.All()[0].LoggerName)
	assert.Equal(t, "model", logs.All()[1].LoggerName)
}

package app

import (
	"context"
	"log/slog"
	"testing"

	"github.com/humanbelnik/penaltydraw/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected slog.Level
	}{
		{in: "debug", expected: slog.LevelDebug},
		{in: "WARN", expected: slog.LevelWarn},
		{in: "error", expected: slog.LevelError},
		{in: "info", expected: slog.LevelInfo},
		{in: "chatty", expected: slog.LevelInfo},
		{in: "", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, level(tt.in))
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(config.Log{Level: "warn", Format: "json"})

	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
	_, isJSON := logger.Handler().(*slog.JSONHandler)
	assert.True(t, isJSON)

	text := NewLogger(config.Log{Level: "info", Format: "text"})
	_, isText := text.Handler().(*slog.TextHandler)
	assert.True(t, isText)
}

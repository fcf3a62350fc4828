package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Logger
	Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() { Logger = prev })
	return &buf
}

func TestInitLogger(t *testing.T) {
	InitLogger(false)
	assert.NotNil(t, Logger)

	InitLogger(true)
	assert.NotNil(t, Logger)

	InitLoggerWithLevel(false, slog.LevelDebug)
	assert.NotNil(t, Logger)
}

func TestWithContext(t *testing.T) {
	Logger = nil
	assert.NotNil(t, WithContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLoggingFunctions(t *testing.T) {
	buf := captureLogs(t)

	t.Run("Info", func(t *testing.T) {
		buf.Reset()
		Info("test info message", "key", "value")
		assert.Contains(t, buf.String(), "test info message")
		assert.Contains(t, buf.String(), "key=value")
	})

	t.Run("Warn", func(t *testing.T) {
		buf.Reset()
		Warn("endpoint failed")
		assert.Contains(t, buf.String(), "level=WARN")
	})

	t.Run("Error", func(t *testing.T) {
		buf.Reset()
		Error("All server URLs have been tried without success")
		assert.Contains(t, buf.String(), "level=ERROR")
	})

	t.Run("Debug", func(t *testing.T) {
		buf.Reset()
		Debug("debug message")
		assert.Contains(t, buf.String(), "debug message")
	})
}

func TestFieldHelpers(t *testing.T) {
	buf := captureLogs(t)

	WithTicker("AAPL").Info("loaded")
	assert.Contains(t, buf.String(), "ticker=AAPL")

	buf.Reset()
	WithEndpoint("http://localhost:4000/graphql").Info("trying")
	assert.Contains(t, buf.String(), "endpoint=http://localhost:4000/graphql")

	buf.Reset()
	WithOperation("StockDetail").Info("executing")
	assert.Contains(t, buf.String(), "operation=StockDetail")

	buf.Reset()
	WithError(errors.New("boom")).Info("failed")
	assert.Contains(t, buf.String(), "error=boom")
}

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	log.Info("link created", "slug", "abc123")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "link created", entry["msg"])
	assert.Equal(t, "abc123", entry["slug"])
}

func TestNew_ProductionForcesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "text", Environment: "production", Output: &buf})

	log.Info("hello")

	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "expected JSON output, got %q", buf.String())
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestContextRoundTrip(t *testing.T) {
	fallback := Nop()
	child := fallback.With("request_id", "r-1")

	ctx := WithContext(context.Background(), child)

	assert.Same(t, child, FromContext(ctx, fallback))
	assert.Same(t, fallback, FromContext(context.Background(), fallback))
}

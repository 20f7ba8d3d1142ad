package logging

import (
	"bytes"
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
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew_JSON(t *testing.T) {
	var out bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "json"}, &out)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", slog.Int("expanded", 13))

	var record map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &record))
	assert.Equal(t, "shown", record["msg"])
	assert.Equal(t, 13.0, record["expanded"])
}

func TestNew_Text(t *testing.T) {
	var out bytes.Buffer
	logger, err := New(Config{}, &out)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("hello")
	assert.Contains(t, out.String(), "msg=hello")
	assert.NotContains(t, out.String(), "hidden")
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Config{Format: "xml"}, nil)
	assert.Error(t, err)
	_, err = New(Config{Level: "loud"}, nil)
	assert.Error(t, err)
}

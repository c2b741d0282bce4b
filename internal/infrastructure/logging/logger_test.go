package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/wooctl/internal/infrastructure/config"
)

func TestMavenHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := NewLoggerTo(&buf, config.LoggingConfig{Level: "info"})
	defer closer.Close()

	logger.With(KeySystem, "orders", KeyRunID, "abc-123").
		Info("Order status updated", "order_id", 1001, "note", "from processing")

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "[INFO] [orders] ["), line)
	assert.Contains(t, line, "Order status updated order_id=1001")
	assert.Contains(t, line, `note="from processing"`)
	assert.NotContains(t, line, "abc-123", "run id stays out of terminal lines")
	assert.NotContains(t, line, "\033[", "no colors when not a terminal")
}

func TestMavenHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewLoggerTo(&buf, config.LoggingConfig{Level: "warn"})

	logger.Info("hidden")
	logger.Debug("hidden")
	logger.Warn("shown")

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "[WARN]")
}

func TestMavenHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewMavenHandler(&buf, nil))

	logger.WithGroup("request").Info("Handled", "status", 200, slog.Group("store", "driver", "wpdb"))

	assert.Contains(t, buf.String(), "request.status=200")
	assert.Contains(t, buf.String(), "request.store.driver=wpdb")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewLoggerTo(&buf, config.LoggingConfig{Level: "debug", Format: "json"})

	logger.With(KeySystem, "wpdb", KeyRunID, "run-1").Debug("Queried orders", "count", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Queried orders", entry["msg"])
	assert.Equal(t, "wpdb", entry["system"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, float64(3), entry["count"])
}

func TestRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wooctl.log")
	var buf bytes.Buffer
	logger, closer := NewLoggerTo(&buf, config.LoggingConfig{Level: "info", File: path})

	logger.With(KeyRunID, "run-2").Info("Listed orders", "count", 5)
	require.NoError(t, closer.Close())

	assert.Contains(t, buf.String(), "Listed orders")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "run-2", entry["run_id"])
	assert.Equal(t, float64(5), entry["count"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}

package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nerrad567/pihole-card-core/internal/infrastructure/config"
)

func TestNew_JSONFormat(t *testing.T) {
	cfg := config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}

	logger := New(cfg, "1.0.0")
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() without file error = %v", err)
	}
}

func TestNew_TextFormat(t *testing.T) {
	cfg := config.LoggingConfig{
		Level:  "debug",
		Format: "text",
		Output: "stderr",
	}

	if logger := New(cfg, "1.0.0"); logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "piholecard.log")
	cfg := config.LoggingConfig{
		Level:  "info",
		Format: "text",
		Output: "stderr",
		File:   config.FileLoggingConfig{Path: path},
	}

	logger := New(cfg, "1.2.3")
	logger.Info("setup assembled", "devices", 2)
	logger.Debug("filtered out")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	var lines int
	for scanner.Scan() {
		lines++
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("log file line is not JSON: %v", err)
		}
		if entry["service"] != "piholecard" || entry["version"] != "1.2.3" {
			t.Errorf("default fields missing: %v", entry)
		}
		if entry["devices"] != 2.0 {
			t.Errorf("devices = %v, want 2", entry["devices"])
		}
	}
	if lines != 1 {
		t.Errorf("log file has %d lines, want 1", lines)
	}
}

func TestNewWithWriters_Fanout(t *testing.T) {
	var console, file bytes.Buffer
	cfg := config.LoggingConfig{Level: "info", Format: "text"}

	logger := newWithWriters(cfg, "test", &console, &file, nil)
	logger.Warn("device missing", "device_id", "abc")

	if !strings.Contains(console.String(), "device missing") {
		t.Errorf("console output = %q", console.String())
	}
	if strings.HasPrefix(strings.TrimSpace(console.String()), "{") {
		t.Error("console should use text format")
	}

	var entry map[string]any
	if err := json.Unmarshal(file.Bytes(), &entry); err != nil {
		t.Fatalf("file output is not JSON: %v", err)
	}
	if entry["device_id"] != "abc" {
		t.Errorf("device_id = %v", entry["device_id"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"info level", "info", slog.LevelInfo},
		{"warn level", "warn", slog.LevelWarn},
		{"warning level", "warning", slog.LevelWarn},
		{"error level", "error", slog.LevelError},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
		{"case insensitive", "DEBUG", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriters(config.LoggingConfig{Level: "info"}, "1.0.0", &buf, nil, nil)
	childLogger := logger.With("component", "mqtt")

	if childLogger == logger {
		t.Error("expected child logger to be different from parent")
	}

	childLogger.Info("connected")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if entry["component"] != "mqtt" {
		t.Errorf("component = %v, want mqtt", entry["component"])
	}
	if entry["service"] != "piholecard" {
		t.Errorf("service = %v, want piholecard", entry["service"])
	}
}

func TestDefault(t *testing.T) {
	if logger := Default(); logger == nil {
		t.Fatal("expected non-nil default logger")
	}
}

package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"

	"github.com/nerrad567/pihole-card-core/internal/infrastructure/config"
)

// serviceName is attached to every record.
const serviceName = "piholecard"

// Logger is a slog.Logger that owns its optional log file.
type Logger struct {
	*slog.Logger

	file io.Closer
}

// New builds the logger described by cfg. A log file that cannot be
// opened is reported on the console and skipped.
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	if cfg.File.Path == "" {
		return newWithWriters(cfg, version, output, nil, nil)
	}

	if dir := filepath.Dir(cfg.File.Path); dir != "." {
		_ = os.MkdirAll(dir, 0o750)
	}
	file, err := os.OpenFile(cfg.File.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		l := newWithWriters(cfg, version, output, nil, nil)
		l.Error("failed to open log file, using console only", "file", cfg.File.Path, "error", err)
		return l
	}
	return newWithWriters(cfg, version, output, file, file)
}

// newWithWriters builds a logger writing to console and, when file is
// non-nil, fanning out JSON records to file as well.
func newWithWriters(cfg config.LoggingConfig, version string, console, file io.Writer, closer io.Closer) *Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(console, opts)
	default:
		handler = slog.NewJSONHandler(console, opts)
	}

	if file != nil {
		handler = slogmulti.Fanout(handler, slog.NewJSONHandler(file, opts))
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", version),
	})

	return &Logger{
		Logger: slog.New(handler),
		file:   closer,
	}
}

// parseLevel maps debug, info, warn and error; anything else is info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a child logger carrying args on every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Close releases the log file, if any. Loggers derived with With share
// the parent's file and must not be closed themselves.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Default returns an info-level JSON logger on stdout, for use before the
// config is loaded.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}

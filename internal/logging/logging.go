// Package logging builds the engine's structured logger. Output goes
// to stderr; when a logs directory is configured it additionally goes
// to a size-rotated file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"pagepulse/internal/config"
)

// NewLogger constructs a JSON slog.Logger honoring the configured log
// level and rotation settings.
func NewLogger(cfg *config.Config) *slog.Logger {
	var output io.Writer = os.Stderr

	if cfg.LogsDirectory != "" {
		rotated := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogsDirectory, cfg.AppName+".log"),
			MaxSize:    cfg.LogsMaxSizeInMb,
			MaxBackups: cfg.LogsMaxBackups,
			MaxAge:     cfg.LogsMaxAgeInDays,
		}
		output = io.MultiWriter(os.Stderr, rotated)
	}

	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: toSlogLevel(cfg.LogLevel),
	})
	return slog.New(handler)
}

func toSlogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

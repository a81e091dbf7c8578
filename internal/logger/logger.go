// Package logger настраивает структурное логирование через slog.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Setup возвращает логгер с текстовым обработчиком и заданным уровнем.
func Setup(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// Package logging configures the application-wide slog logger.
package logging

import (
	"log/slog"
	"os"

	"github.com/Mugdhazope/hemut-qna/internal/correlation"
)

// Logger is the application-wide structured logger instance.
var Logger *slog.Logger

// InitLogger initializes the global logger with the specified level and format.
// level: "debug", "info", "warn", "error" (defaults to "info")
// format: "json" or "text" (defaults to "text")
func InitLogger(level, format string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Logger = slog.New(correlation.NewHandler(handler))
	slog.SetDefault(Logger)
}

// WithQuestion returns a logger with question_id field.
func WithQuestion(questionID string) *slog.Logger {
	return Logger.With("question_id", questionID)
}

// WithUser returns a logger with user_id field.
func WithUser(userID string) *slog.Logger {
	return Logger.With("user_id", userID)
}

// WithError returns a logger with error field.
func WithError(err error) *slog.Logger {
	return Logger.With("error", err)
}

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	defaultLogger *slog.Logger
	mu            sync.RWMutex
)

// Init installs the process logger. Production defaults to JSON at info,
// other environments to text at debug; level and format override either.
func Init(env, level, format string) *slog.Logger {
	return InitWriter(os.Stdout, env, level, format)
}

func InitWriter(w io.Writer, env, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(env, level)}

	if format == "" {
		format = "text"
		if env == "production" {
			format = "json"
		}
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler).With("env", env)

	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	slog.SetDefault(l)
	return l
}

func parseLevel(env, level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if env == "production" {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

func LoggerWrapper() *slog.Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		return Init("development", "", "")
	}
	return l
}

package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup points the default slog logger at a JSON handler on stdout, at
// the level named by LOG_LEVEL (debug, info, warn, error; default info).
// The handler is returned so the caller can later fan it out alongside
// the database handler without building a second stdout handler.
func Setup() slog.Handler {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	})
	slog.SetDefault(slog.New(h))
	return h
}

func parseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

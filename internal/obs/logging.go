package obs

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is the process-wide structured logger. Tests keep the default.
var Logger = slog.Default()

// InitLogger switches Logger to JSON on stdout at the given level
// ("debug", "info", "warn", "error"; anything else means info).
func InitLogger(level string) {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(level)})
	Logger = slog.New(h)
	slog.SetDefault(Logger)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a zerolog logger configured for stdout at info level.
func New() zerolog.Logger {
	return NewWithLevel("info")
}

// NewWithLevel returns a stdout logger at the given level. Unknown levels fall back to info.
func NewWithLevel(level string) zerolog.Logger {
	return zerolog.New(os.Stdout).Level(parseLevel(level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if normalized == "warning" {
		normalized = "warn"
	}
	switch normalized {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
		parsed, err := zerolog.ParseLevel(normalized)
		if err != nil {
			return zerolog.InfoLevel
		}
		return parsed
	default:
		return zerolog.InfoLevel
	}
}

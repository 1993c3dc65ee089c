package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/config"
)

// NewLogger creates a structured zerolog.Logger writing JSON to stdout with
// the service name attached to every event.
func NewLogger(cfg *config.Config) zerolog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *config.Config) zerolog.Logger {
	ctx := zerolog.New(w).With().Timestamp()

	if cfg.ServiceName != "" {
		ctx = ctx.Str("service", cfg.ServiceName)
	}

	logger := ctx.Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}

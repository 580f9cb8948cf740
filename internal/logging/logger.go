package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Environment variables read by Init.
const (
	LevelEnv  = "PICKER_LOG_LEVEL"
	FormatEnv = "PICKER_LOG_FORMAT"
)

// Init initializes the global logger with configuration from environment variables.
// PICKER_LOG_LEVEL controls the log level: debug, info, warn, error (default: info).
// PICKER_LOG_FORMAT=json keeps zerolog's JSON lines (used in Lambda, where
// CloudWatch indexes the fields); anything else writes human-readable console output.
func Init() {
	InitWriter(os.Stderr)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer) {
	zerolog.SetGlobalLevel(ParseLevel(os.Getenv(LevelEnv)))

	if strings.EqualFold(os.Getenv(FormatEnv), "json") {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

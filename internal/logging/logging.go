// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup builds the process logger from the --log-level and --log-format flags
// and installs it as the zerolog global. Output goes to stderr so that command
// output on stdout stays machine-readable.
func Setup(level, format string) (zerolog.Logger, error) {
	return SetupWithWriter(level, format, os.Stderr)
}

// SetupWithWriter is Setup with an explicit destination.
func SetupWithWriter(level, format string, out io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q (expected debug, info, warn, error)", level)
	}

	var writer io.Writer
	switch strings.ToLower(format) {
	case "json", "":
		writer = out
	case "text", "console":
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.000"}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q (expected json, text)", format)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	logger := zerolog.New(writer).With().Timestamp().Logger().Level(lvl)
	log.Logger = logger
	return logger, nil
}

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Level  string `doc:"log from debug, info, warn or error"`
	File   string `doc:"append logs to file, - for the default output"`
	Format string `doc:"format logs as text or json"                    default:"text"`
}

func level(option string) (slog.Leveler, bool) {
	switch strings.ToLower(option) {
	case "":
		return nil, true
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return nil, false
	}
}

// New returns a logger writing to options.File, or to output when the file is
// empty or "-". The server logs to stdout and the REPL to stderr, out of the
// way of its replies. Invalid options fall back to defaults with a warning.
func New(options *Options, output io.Writer) *slog.Logger {
	level, ok := level(options.Level)
	if !ok {
		options.Level = ""
		logger := New(options, output)
		logger.Warn("could not parse logger level")
		return logger
	}
	opts := slog.HandlerOptions{Level: level}

	switch options.File {
	case "", "-":
	case os.DevNull:
		return slog.New(slog.DiscardHandler)
	default:
		file, err := os.OpenFile(options.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) //nolint: mnd // owner only
		if err != nil {
			options.File = ""
			logger := New(options, output)
			logger.Warn("could not open logger file", "err", err)
			return logger
		}
		output = file
	}

	switch strings.ToLower(options.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(output, &opts))
	case "text":
		return slog.New(slog.NewTextHandler(output, &opts))
	default:
		options.Format = "text"
		logger := New(options, output)
		logger.Warn("could not parse logger format")
		return logger
	}
}

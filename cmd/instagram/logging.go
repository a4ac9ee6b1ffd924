package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type simpleHandler struct {
	level  slog.Level
	writer io.Writer
	attrs  []slog.Attr
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log level must be one of: debug, info, warn, error")
	}
}

// setupLogging installs a level-filtered handler writing to w as the default logger.
func setupLogging(level string, w io.Writer) (*slog.Logger, error) {
	logLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := slog.New(&simpleHandler{level: logLevel, writer: w})
	slog.SetDefault(logger)
	return logger, nil
}

func (h *simpleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *simpleHandler) Handle(_ context.Context, r slog.Record) error {
	var attrs []string
	for _, a := range h.attrs {
		attrs = append(attrs, fmt.Sprintf("%s='%v'", a.Key, a.Value))
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, fmt.Sprintf("%s='%v'", a.Key, a.Value))
		return true
	})

	if len(attrs) > 0 {
		_, err := fmt.Fprintf(h.writer, "%s: %s (%s)\n", r.Level, r.Message, strings.Join(attrs, " "))
		return err
	}
	_, err := fmt.Fprintf(h.writer, "%s: %s\n", r.Level, r.Message)
	return err
}

func (h *simpleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *simpleHandler) WithGroup(name string) slog.Handler {
	return h
}

package logging

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// Logging registers the log flags and installs the default logger. The returned
// exit func exits 1 if anything was logged at error level.
func Logging() (exit func()) {
	var hadSlogError atomic.Bool
	var logLevel slog.LevelVar

	format := &formatParser{name: "text", out: os.Stderr, level: &logLevel, hadError: &hadSlogError}
	flag.TextVar(&logLevel, "log-level", &logLevel, "Set the logging level")
	flag.Var(format, "log-format", `Log output format, "text" or "json"`)

	slog.SetDefault(slog.New(format.handler()))
	slog.SetLogLoggerLevel(slog.LevelError)

	return func() {
		if hadSlogError.Load() {
			os.Exit(1)
		}
		os.Exit(0)
	}
}

var _ flag.Value = (*formatParser)(nil)

type formatParser struct {
	name     string
	out      io.Writer
	level    *slog.LevelVar
	hadError *atomic.Bool
}

func (f *formatParser) Set(value string) error {
	switch value {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", value)
	}
	f.name = value
	slog.SetDefault(slog.New(f.handler()))
	return nil
}
func (f *formatParser) String() string {
	if f == nil {
		return ""
	}
	return f.name
}

func (f *formatParser) handler() slog.Handler {
	opts := &slog.HandlerOptions{Level: f.level}

	var h slog.Handler = slog.NewTextHandler(f.out, opts)
	if f.name == "json" {
		h = slog.NewJSONHandler(f.out, opts)
	}
	return &slogErrorHandler{Handler: h, hadSlogError: f.hadError}
}

type slogErrorHandler struct {
	slog.Handler
	hadSlogError *atomic.Bool
}

func (n *slogErrorHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		n.hadSlogError.Store(true)
	}
	return n.Handler.Handle(ctx, r)
}

func (n *slogErrorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &slogErrorHandler{Handler: n.Handler.WithAttrs(attrs), hadSlogError: n.hadSlogError}
}

func (n *slogErrorHandler) WithGroup(name string) slog.Handler {
	return &slogErrorHandler{Handler: n.Handler.WithGroup(name), hadSlogError: n.hadSlogError}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/s3koel/s3koel"
	"github.com/s3koel/s3koel/cmd/internal/logging"
	"github.com/s3koel/s3koel/cmd/internal/s3koelflag"
	"github.com/s3koel/s3koel/tags"
)

func init() {
	flag := flag.CommandLine
	flag.Usage = func() {
		fmt.Fprintf(flag.Output(), "Usage:\n")
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] [<event.json>]\n", flag.Name())
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Reads a storage notification document from the file or stdin and applies it to Koel.\n")
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Options:\n")
		flag.PrintDefaults()
	}
}

func main() {
	defer logging.Logging()()
	var (
		cfg     = s3koelflag.Config()
		notifs  = s3koelflag.Notifications()
		clients = s3koelflag.ClientFlags()
	)
	s3koelflag.Parse()
	s3koelflag.DefaultClient()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cfg.Validate(); err != nil {
		slog.ErrorContext(ctx, "checking config", "err", err)
		return
	}

	provider, err := clients.Provider()
	if err != nil {
		slog.ErrorContext(ctx, "picking provider", "err", err)
		return
	}

	data, err := readInput(flag.Arg(0))
	if err != nil {
		slog.ErrorContext(ctx, "reading event", "err", err)
		return
	}
	evs, err := provider.Decode(data)
	if err != nil {
		slog.ErrorContext(ctx, "decoding event", "err", err)
		return
	}

	st, err := clients.Storage(cfg, provider.Endpoint)
	if err != nil {
		slog.ErrorContext(ctx, "creating storage client", "err", err)
		return
	}

	ingester := &s3koel.Ingester{
		Config:    cfg,
		Storage:   st,
		TagReader: tags.TagLib{},
		Publisher: clients.Koel(cfg),
		Notifier:  notifs,
		Endpoint:  provider.Endpoint,
	}
	if err := ingester.IngestBatch(ctx, evs); err != nil {
		slog.ErrorContext(ctx, "ingesting events", "events", len(evs), "err", err)
		return
	}
	slog.InfoContext(ctx, "ingested events", "events", len(evs))
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

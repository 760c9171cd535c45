package main

import (
	"context"
	"flag"
	"fmt"
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
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] <bucket> [<prefix>]\n", flag.Name())
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Sends every song under prefix in bucket to Koel.\n")
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

	bucket, prefix := flag.Arg(0), flag.Arg(1)
	if bucket == "" {
		slog.ErrorContext(ctx, "need a bucket")
		return
	}

	if err := cfg.Validate(); err != nil {
		slog.ErrorContext(ctx, "checking config", "err", err)
		return
	}

	provider, err := clients.Provider()
	if err != nil {
		slog.ErrorContext(ctx, "picking provider", "err", err)
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

	// Sync logs its own summary
	_, _ = ingester.Sync(ctx, bucket, prefix)
}

// Command s3koel-lambda applies S3 bucket notifications to Koel from AWS Lambda.
// It is configured through S3KOEL_* environment variables.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/s3koel/s3koel"
	"github.com/s3koel/s3koel/cmd/internal/logging"
	"github.com/s3koel/s3koel/cmd/internal/s3koelflag"
	"github.com/s3koel/s3koel/event"
	"github.com/s3koel/s3koel/tags"
)

func main() {
	logging.Logging()
	var (
		cfg     = s3koelflag.Config()
		notifs  = s3koelflag.Notifications()
		clients = s3koelflag.ClientFlags()
	)
	s3koelflag.Parse()
	s3koelflag.DefaultClient()

	if err := cfg.Validate(); err != nil {
		slog.Error("checking config", "err", err)
		os.Exit(1)
	}

	provider, err := clients.Provider()
	if err != nil {
		slog.Error("picking provider", "err", err)
		os.Exit(1)
	}
	st, err := clients.Storage(cfg, provider.Endpoint)
	if err != nil {
		slog.Error("creating storage client", "err", err)
		os.Exit(1)
	}

	ingester := &s3koel.Ingester{
		Config:    cfg,
		Storage:   st,
		TagReader: tags.TagLib{},
		Publisher: clients.Koel(cfg),
		Notifier:  notifs,
		Endpoint:  provider.Endpoint,
	}

	lambda.Start(func(ctx context.Context, s3ev events.S3Event) error {
		evs, err := event.FromS3(s3ev)
		if err != nil {
			return err
		}
		return ingester.IngestBatch(ctx, evs)
	})
}

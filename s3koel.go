package s3koel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/s3koel/s3koel/event"
	"github.com/s3koel/s3koel/notifications"
	"github.com/s3koel/s3koel/storage"
	"github.com/s3koel/s3koel/tags"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrExtract           = errors.New("extract tags")
	ErrPublish           = errors.New("publish to catalog")
	ErrSyncIncomplete    = errors.New("sync finished with errors")
)

type TagReader interface {
	Read(path string) (tags.File, error)
}

type Publisher interface {
	PutSong(ctx context.Context, bucket, key string, tags any) error
	DeleteSong(ctx context.Context, bucket, key string) error
}

// Notifier delivers alerts on a best effort basis.
type Notifier interface {
	Send(ctx context.Context, event notifications.Event, message string)
}

type Ingester struct {
	Config    *Config
	Storage   storage.Client
	TagReader TagReader
	Publisher Publisher
	Notifier  Notifier // optional

	// Endpoint of Storage, recorded on objects found by Sync.
	Endpoint string
}

// Ingest applies a single event to the catalog.
func (in *Ingester) Ingest(ctx context.Context, ev event.Event) error {
	if err := in.Config.Validate(); err != nil {
		return err
	}
	_, err := in.ingest(ctx, ev)
	return err
}

// IngestBatch applies events in order. A failed event doesn't stop the rest, the
// returned error joins every failure.
func (in *Ingester) IngestBatch(ctx context.Context, evs []event.Event) error {
	if err := in.Config.Validate(); err != nil {
		return err
	}

	var errs []error
	for _, ev := range evs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := in.ingest(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "ingesting object", "object", ev.Object, "action", ev.Action, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type SyncStats struct {
	Done    int
	Skipped int
	Failed  int
}

// Sync ingests every object under prefix in bucket as a create. Objects that fail
// are reported and the sync moves on.
func (in *Ingester) Sync(ctx context.Context, bucket, prefix string) (SyncStats, error) {
	if err := in.Config.Validate(); err != nil {
		return SyncStats{}, err
	}

	start := time.Now()

	var stats SyncStats
	var syncErr error
	for info, err := range in.Storage.ListObjects(ctx, bucket, prefix) {
		if err != nil {
			syncErr = fmt.Errorf("list objects: %w", err)
			break
		}
		if err := ctx.Err(); err != nil {
			syncErr = err
			break
		}
		if info.Size == 0 {
			// directory marker
			continue
		}

		ev := event.Event{
			Object: storage.Object{Bucket: bucket, Key: info.Key, Endpoint: in.Endpoint},
			Action: event.Create,
		}
		skipped, err := in.ingest(ctx, ev)
		switch {
		case err != nil:
			slog.ErrorContext(ctx, "syncing object", "object", ev.Object, "err", err)
			stats.Failed++
		case skipped:
			stats.Skipped++
		default:
			stats.Done++
		}
	}

	slog := slog.With("bucket", bucket, "prefix", prefix, "took", time.Since(start), "done", stats.Done, "skipped", stats.Skipped, "failed", stats.Failed)
	if syncErr == nil && stats.Failed > 0 {
		syncErr = fmt.Errorf("%w: %d failed", ErrSyncIncomplete, stats.Failed)
	}
	if syncErr != nil {
		in.notify(ctx, notifications.SyncError, fmt.Sprintf("sync of %s/%s: %v", bucket, prefix, syncErr))
		slog.ErrorContext(ctx, "sync finished with errors", "err", syncErr)
		return stats, syncErr
	}
	in.notify(ctx, notifications.SyncComplete, fmt.Sprintf("sync of %s/%s finished, %d songs", bucket, prefix, stats.Done))
	slog.InfoContext(ctx, "sync finished")
	return stats, nil
}

// ingest runs one event through the pipeline. Unsupported objects are skipped and
// reported with skipped rather than an error.
func (in *Ingester) ingest(ctx context.Context, ev event.Event) (skipped bool, err error) {
	err = in.process(ctx, ev)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, ErrUnsupportedFormat):
		slog.InfoContext(ctx, "skipping object", "object", ev.Object, "reason", err)
		return true, nil
	}

	err = fmt.Errorf("%s %q: %w", ev.Action, ev.Object.Key, err)
	in.notify(ctx, notifications.IngestError, err.Error())
	return false, err
}

func (in *Ingester) process(ctx context.Context, ev event.Event) error {
	obj := ev.Object
	if !tags.CanRead(obj.Key) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, path.Ext(obj.Key))
	}

	switch ev.Action {
	case event.Create:
		return in.create(ctx, obj)
	case event.Delete:
		if err := in.Publisher.DeleteSong(ctx, obj.Bucket, obj.Key); err != nil {
			return fmt.Errorf("%w: delete song: %w", ErrPublish, err)
		}
		slog.InfoContext(ctx, "deleted song", "object", obj)
		return nil
	}
	return fmt.Errorf("%w: %q", event.ErrUnknownEventType, ev.Action)
}

func (in *Ingester) create(ctx context.Context, obj storage.Object) error {
	local, err := storage.Fetch(ctx, in.Storage, obj, in.Config.tempDir())
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer func() {
		if err := local.Close(); err != nil {
			slog.ErrorContext(ctx, "cleaning up", "object", obj, "err", err)
		}
	}()

	file, err := in.TagReader.Read(local.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtract, err)
	}

	record := ResolveTags(ctx, in.Config, obj, file)

	if err := in.Publisher.PutSong(ctx, obj.Bucket, obj.Key, record); err != nil {
		return fmt.Errorf("%w: put song: %w", ErrPublish, err)
	}
	slog.InfoContext(ctx, "put song", "object", obj, "artist", record.Artist, "title", record.Title, "album", record.Album)
	return nil
}

func (in *Ingester) notify(ctx context.Context, event notifications.Event, message string) {
	if in.Notifier == nil {
		return
	}
	in.Notifier.Send(ctx, event, message)
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/s3koel/s3koel"
	"github.com/s3koel/s3koel/cmd/internal/logging"
	"github.com/s3koel/s3koel/cmd/internal/s3koelflag"
	"github.com/s3koel/s3koel/storage"
	"github.com/s3koel/s3koel/tags"
)

func init() {
	flag := flag.CommandLine
	flag.Usage = func() {
		fmt.Fprintf(flag.Output(), "Usage:\n")
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] <key> <path>\n", flag.Name())
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Prints the tags that would be sent to Koel for the local file at path if it were stored at key.\n")
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Example:\n")
		fmt.Fprintf(flag.Output(), "  $ %s -assume-tags -albums-root albums \"albums/Burial/2007 - Untrue/02. Archangel.mp3\" archangel.mp3\n", flag.Name())
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Options:\n")
		flag.PrintDefaults()
	}
}

func main() {
	defer logging.Logging()()
	cfg := s3koelflag.Config()
	s3koelflag.Parse()

	key, path := flag.Arg(0), flag.Arg(1)
	if key == "" || path == "" {
		flag.CommandLine.Usage()
		slog.Error("need a key and a path")
		return
	}

	ctx := context.Background()

	file, err := tags.TagLib{}.Read(path)
	if err != nil {
		slog.ErrorContext(ctx, "reading file", "path", path, "err", err)
		return
	}

	record := s3koel.ResolveTags(ctx, cfg, storage.Object{Key: key}, file)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		slog.ErrorContext(ctx, "encoding tags", "err", err)
		return
	}
}

// Package storage identifies remote objects and fetches them to short lived local files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"

	"github.com/s3koel/s3koel/fileutil"
)

// Object is a reference to an object in a bucket.
type Object struct {
	Bucket   string
	Key      string
	Endpoint string
}

func (o Object) FileName() string {
	return path.Base(o.Key)
}

// LocalPath is where the object is fetched to inside dir. It only depends on the file name.
func (o Object) LocalPath(dir string) string {
	return filepath.Join(dir, fileutil.SafePath(o.FileName()))
}

func (o Object) String() string {
	return fmt.Sprintf("%s/%s", o.Bucket, o.Key)
}

type ObjectInfo struct {
	Key  string
	Size int64
}

type Client interface {
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	ListObjects(ctx context.Context, bucket, prefix string) iter.Seq2[ObjectInfo, error]
}

// Local is a fetched copy of an object. Close removes it.
type Local struct {
	Path string
}

func (l *Local) Close() error {
	if err := os.Remove(l.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove local copy: %w", err)
	}
	return nil
}

// Fetch downloads obj to its local path in dir. No file is left behind if it fails.
func Fetch(ctx context.Context, client Client, obj Object, dir string) (*Local, error) {
	body, err := client.GetObject(ctx, obj.Bucket, obj.Key)
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer body.Close()

	local := &Local{Path: obj.LocalPath(dir)}

	f, err := os.Create(local.Path)
	if err != nil {
		return nil, fmt.Errorf("create local copy: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		err = fmt.Errorf("copy object: %w", err)
		return nil, errors.Join(err, f.Close(), local.Close())
	}
	if err := f.Close(); err != nil {
		err = fmt.Errorf("close local copy: %w", err)
		return nil, errors.Join(err, local.Close())
	}
	return local, nil
}

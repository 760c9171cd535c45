package storage

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
}

// S3 is a Client for any S3 compatible service.
type S3 struct {
	client *minio.Client
}

func NewS3(conf S3Config, transport http.RoundTripper) (*S3, error) {
	u, err := url.Parse(conf.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse endpoint: no host in %q", conf.Endpoint)
	}
	client, err := minio.New(u.Host, &minio.Options{
		Creds:     credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure:    u.Scheme != "http",
		Region:    conf.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	return &S3{client: client}, nil
}

func (s *S3) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (s *S3) ListObjects(ctx context.Context, bucket, prefix string) iter.Seq2[ObjectInfo, error] {
	return func(yield func(ObjectInfo, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true}
		for info := range s.client.ListObjects(ctx, bucket, opts) {
			if info.Err != nil {
				yield(ObjectInfo{}, info.Err)
				return
			}
			if !yield(ObjectInfo{Key: info.Key, Size: info.Size}, nil) {
				return
			}
		}
	}
}

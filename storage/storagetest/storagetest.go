// Package storagetest provides an in-memory storage.Client for tests.
package storagetest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/s3koel/s3koel/storage"
)

var ErrNoSuchKey = errors.New("no such key")

type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	order   []string
	gets    []string

	// ListErr is yielded after all objects if set.
	ListErr error
	// ReadErr makes every object body fail after its data has been read.
	ReadErr error
}

func (m *Memory) Put(bucket, key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	k := bucket + "/" + key
	if _, ok := m.objects[k]; !ok {
		m.order = append(m.order, k)
	}
	m.objects[k] = data
}

// Gets returns the bucket/key of every GetObject call so far.
func (m *Memory) Gets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.gets)
}

func (m *Memory) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := bucket + "/" + key
	m.gets = append(m.gets, k)
	data, ok := m.objects[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchKey, k)
	}
	var r io.Reader = bytes.NewReader(data)
	if m.ReadErr != nil {
		r = io.MultiReader(r, errReader{m.ReadErr})
	}
	return io.NopCloser(r), nil
}

func (m *Memory) ListObjects(ctx context.Context, bucket, prefix string) iter.Seq2[storage.ObjectInfo, error] {
	m.mu.Lock()
	var infos []storage.ObjectInfo
	for _, k := range m.order {
		key, ok := strings.CutPrefix(k, bucket+"/")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		infos = append(infos, storage.ObjectInfo{Key: key, Size: int64(len(m.objects[k]))})
	}
	listErr := m.ListErr
	m.mu.Unlock()

	return func(yield func(storage.ObjectInfo, error) bool) {
		for _, info := range infos {
			if !yield(info, nil) {
				return
			}
		}
		if listErr != nil {
			yield(storage.ObjectInfo{}, listErr)
		}
	}
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }

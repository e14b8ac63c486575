// Package memory provides an in-memory blob store for testing and development.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/blogware/simple-blog/pkg/simpleblog"
)

// Backend is an in-memory implementation of the simpleblog.BlobStore interface
type Backend struct {
	mu    sync.RWMutex
	blobs map[uuid.UUID]blob
}

type blob struct {
	data []byte
	info simpleblog.BlobInfo
}

var _ simpleblog.BlobStore = (*Backend)(nil)

// New creates a new in-memory blob store
func New() *Backend {
	return &Backend{
		blobs: make(map[uuid.UUID]blob),
	}
}

func (b *Backend) Put(ctx context.Context, r io.Reader, info simpleblog.BlobInfo) (uuid.UUID, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return uuid.Nil, fmt.Errorf("read blob data: %w", err)
	}
	info.Size = int64(len(data))

	id := uuid.New()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[id] = blob{data: data, info: info}

	return id, nil
}

func (b *Backend) Get(ctx context.Context, id uuid.UUID) (io.ReadCloser, *simpleblog.BlobInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stored, ok := b.blobs[id]
	if !ok {
		return nil, nil, simpleblog.ErrBlobNotFound
	}

	info := stored.info
	return io.NopCloser(bytes.NewReader(stored.data)), &info, nil
}

func (b *Backend) Delete(ctx context.Context, id uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.blobs[id]; !ok {
		return simpleblog.ErrBlobNotFound
	}
	delete(b.blobs, id)

	return nil
}

// Len reports the number of stored blobs. It is intended for tests.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.blobs)
}

// Package fs provides a filesystem blob store. Blob bytes live in sharded
// directories under the base directory with a JSON sidecar for metadata.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/blogware/simple-blog/pkg/simpleblog"
)

// Backend is a filesystem implementation of the simpleblog.BlobStore interface
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files
}

var _ simpleblog.BlobStore = (*Backend)(nil)

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{baseDir: config.BaseDir}, nil
}

// blobPath shards blobs by the first two characters of the id to keep
// directory sizes manageable.
func (b *Backend) blobPath(id uuid.UUID) string {
	s := id.String()
	return filepath.Join(b.baseDir, s[:2], s)
}

func (b *Backend) metaPath(id uuid.UUID) string {
	return b.blobPath(id) + ".meta.json"
}

func (b *Backend) Put(ctx context.Context, r io.Reader, info simpleblog.BlobInfo) (uuid.UUID, error) {
	id := uuid.New()
	path := b.blobPath(id)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	n, err := io.Copy(file, r)
	if err != nil {
		os.Remove(path)
		return uuid.Nil, fmt.Errorf("failed to write file: %w", err)
	}
	info.Size = n

	meta, err := json.Marshal(info)
	if err != nil {
		os.Remove(path)
		return uuid.Nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := os.WriteFile(b.metaPath(id), meta, 0644); err != nil {
		os.Remove(path)
		return uuid.Nil, fmt.Errorf("failed to write metadata: %w", err)
	}

	return id, nil
}

func (b *Backend) Get(ctx context.Context, id uuid.UUID) (io.ReadCloser, *simpleblog.BlobInfo, error) {
	path := b.blobPath(id)

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil, simpleblog.ErrBlobNotFound
	} else if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := b.readMeta(id, file)
	if err != nil {
		file.Close()
		return nil, nil, err
	}

	return file, info, nil
}

// readMeta loads the sidecar metadata, falling back to stat plus content
// sniffing when the sidecar is missing.
func (b *Backend) readMeta(id uuid.UUID, file *os.File) (*simpleblog.BlobInfo, error) {
	data, err := os.ReadFile(b.metaPath(id))
	if err == nil {
		var info simpleblog.BlobInfo
		if err := json.Unmarshal(data, &info); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
		return &info, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	contentType := "application/octet-stream"
	buffer := make([]byte, 512)
	if n, err := file.Read(buffer); err == nil || err == io.EOF {
		contentType = http.DetectContentType(buffer[:n])
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind file: %w", err)
	}

	return &simpleblog.BlobInfo{
		ContentType: contentType,
		Size:        stat.Size(),
	}, nil
}

func (b *Backend) Delete(ctx context.Context, id uuid.UUID) error {
	path := b.blobPath(id)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return simpleblog.ErrBlobNotFound
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	os.Remove(b.metaPath(id))

	b.cleanupEmptyDirectories(filepath.Dir(path))

	return nil
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}

package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogware/simple-blog/pkg/simpleblog"
)

func TestNew(t *testing.T) {
	t.Run("requires base dir", func(t *testing.T) {
		_, err := New(Config{})
		assert.Error(t, err)
	})

	t.Run("creates base dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "blobs")
		_, err := New(Config{BaseDir: dir})
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestFSBackend(t *testing.T) {
	ctx := context.Background()
	backend, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	t.Run("put then get with metadata", func(t *testing.T) {
		id, err := backend.Put(ctx, strings.NewReader("image-bytes"), simpleblog.BlobInfo{
			Filename:    "photo.png",
			ContentType: "image/png",
		})
		require.NoError(t, err)

		body, info, err := backend.Get(ctx, id)
		require.NoError(t, err)
		defer body.Close()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "image-bytes", string(data))
		assert.Equal(t, "photo.png", info.Filename)
		assert.Equal(t, "image/png", info.ContentType)
		assert.Equal(t, int64(len("image-bytes")), info.Size)
	})

	t.Run("get missing", func(t *testing.T) {
		_, _, err := backend.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, simpleblog.ErrBlobNotFound)
	})

	t.Run("delete removes bytes and sidecar", func(t *testing.T) {
		id, err := backend.Put(ctx, strings.NewReader("x"), simpleblog.BlobInfo{ContentType: "text/plain"})
		require.NoError(t, err)

		require.NoError(t, backend.Delete(ctx, id))

		_, _, err = backend.Get(ctx, id)
		assert.ErrorIs(t, err, simpleblog.ErrBlobNotFound)
		assert.ErrorIs(t, backend.Delete(ctx, id), simpleblog.ErrBlobNotFound)
	})

	t.Run("missing sidecar falls back to sniffing", func(t *testing.T) {
		id, err := backend.Put(ctx, strings.NewReader("plain text content"), simpleblog.BlobInfo{
			ContentType: "text/plain",
		})
		require.NoError(t, err)

		require.NoError(t, os.Remove(backend.metaPath(id)))

		body, info, err := backend.Get(ctx, id)
		require.NoError(t, err)
		defer body.Close()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "plain text content", string(data))
		assert.Contains(t, info.ContentType, "text/plain")
		assert.Equal(t, int64(len("plain text content")), info.Size)
	})
}

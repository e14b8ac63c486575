package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogware/simple-blog/pkg/simpleblog"
)

func TestMemoryBackend(t *testing.T) {
	ctx := context.Background()
	backend := New()

	t.Run("put then get", func(t *testing.T) {
		id, err := backend.Put(ctx, strings.NewReader("image-bytes"), simpleblog.BlobInfo{
			Filename:    "photo.png",
			ContentType: "image/png",
		})
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, id)

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

	t.Run("put allocates distinct ids", func(t *testing.T) {
		a, err := backend.Put(ctx, strings.NewReader("a"), simpleblog.BlobInfo{})
		require.NoError(t, err)
		b, err := backend.Put(ctx, strings.NewReader("b"), simpleblog.BlobInfo{})
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("get missing", func(t *testing.T) {
		_, _, err := backend.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, simpleblog.ErrBlobNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		id, err := backend.Put(ctx, strings.NewReader("x"), simpleblog.BlobInfo{})
		require.NoError(t, err)

		require.NoError(t, backend.Delete(ctx, id))

		_, _, err = backend.Get(ctx, id)
		assert.ErrorIs(t, err, simpleblog.ErrBlobNotFound)
		assert.ErrorIs(t, backend.Delete(ctx, id), simpleblog.ErrBlobNotFound)
	})
}

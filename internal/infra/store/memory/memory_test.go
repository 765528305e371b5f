package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davay42/sw-gallery/internal/domain"
	"github.com/davay42/sw-gallery/internal/infra/store/memory"
)

// Контрактные тесты BlobStore; общее тело, чтобы прогонять и другие
// бэкенды, когда есть живая инфраструктура.
func TestMemoryStore(t *testing.T) {
	testBlobStore(t, memory.New())
}

func testBlobStore(t *testing.T, store domain.BlobStore) {
	ctx := context.Background()

	t.Run("what you put is what you get", func(t *testing.T) {
		item := domain.NewStoredItem("a.png", []byte("hello"), "image/png")
		require.NoError(t, store.Put(ctx, item))

		got, err := store.Get(ctx, "a.png")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), got.Blob)
		assert.Equal(t, int64(5), got.Size)
		assert.Equal(t, "image/png", got.Type)
		assert.Equal(t, item.Timestamp, got.Timestamp)
	})

	t.Run("error on not existing key", func(t *testing.T) {
		_, err := store.Get(ctx, "missing.jpg")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, domain.NewStoredItem("b.png", []byte("x"), "")))
		require.NoError(t, store.Delete(ctx, "b.png"))
		require.NoError(t, store.Delete(ctx, "b.png"))
		require.NoError(t, store.Delete(ctx, "never-existed.png"))

		_, err := store.Get(ctx, "b.png")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("put replaces the whole record", func(t *testing.T) {
		first := domain.NewStoredItem("c.png", []byte("old value"), "image/png")
		require.NoError(t, store.Put(ctx, first))
		second := domain.NewStoredItem("c.png", []byte("new"), "image/png")
		require.NoError(t, store.Put(ctx, second))

		got, err := store.Get(ctx, "c.png")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), got.Blob)
		assert.Equal(t, int64(3), got.Size)
	})

	t.Run("get all returns metadata for every record", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, domain.NewStoredItem("d.png", []byte("dddd"), "image/png")))

		items, err := store.GetAll(ctx)
		require.NoError(t, err)

		var found bool
		for _, it := range items {
			if it.Filename == "d.png" {
				found = true
				assert.Equal(t, int64(4), it.Size)
				assert.Equal(t, "image/png", it.Type)
			}
		}
		assert.True(t, found)
	})

	t.Run("mutating value should not affect stored pairs", func(t *testing.T) {
		blob := []byte("old value")
		require.NoError(t, store.Put(ctx, domain.NewStoredItem("e.png", blob, "")))
		copy(blob, "new")

		got, err := store.Get(ctx, "e.png")
		require.NoError(t, err)
		assert.Equal(t, []byte("old value"), got.Blob)
	})
}

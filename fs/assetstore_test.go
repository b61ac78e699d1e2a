package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/prodimg/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetStore_Save(t *testing.T) {
	t.Parallel()

	t.Run("writes file and returns root-relative path", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		store := fs.NewAssetStore(dir)

		relPath, err := store.Save(context.Background(), 42, []byte("image-bytes"))
		require.NoError(t, err)
		assert.Equal(t, "/machines/42.jpg", relPath)

		data, err := os.ReadFile(filepath.Join(dir, "42.jpg"))
		require.NoError(t, err)
		assert.Equal(t, "image-bytes", string(data))
	})

	t.Run("overwrites existing asset", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		store := fs.NewAssetStore(dir)
		ctx := context.Background()

		_, err := store.Save(ctx, 1, []byte("old"))
		require.NoError(t, err)
		_, err = store.Save(ctx, 1, []byte("new"))
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, "1.jpg"))
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("creates missing base directory", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "public", "machines")
		store := fs.NewAssetStore(dir)

		_, err := store.Save(context.Background(), 7, []byte("x"))
		require.NoError(t, err)
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		store := fs.NewAssetStore(dir)

		_, err := store.Save(context.Background(), 3, []byte("x"))
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "3.jpg", entries[0].Name())
	})
}

func TestAssetStore_Exists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := fs.NewAssetStore(dir)

	relPath, err := store.Save(context.Background(), 5, []byte("x"))
	require.NoError(t, err)

	assert.True(t, store.Exists(relPath))
	assert.False(t, store.Exists("/machines/6.jpg"))
	assert.False(t, store.Exists("/elsewhere/5.jpg"))
	assert.False(t, store.Exists("/machines/../5.jpg"))
	assert.False(t, store.Exists(""))
}

func TestAssetStore_RemoveAll(t *testing.T) {
	t.Parallel()

	t.Run("removes stored assets", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		store := fs.NewAssetStore(dir)
		ctx := context.Background()

		_, err := store.Save(ctx, 1, []byte("a"))
		require.NoError(t, err)
		_, err = store.Save(ctx, 2, []byte("b"))
		require.NoError(t, err)

		require.NoError(t, store.RemoveAll())
		assert.False(t, store.Exists("/machines/1.jpg"))
		assert.False(t, store.Exists("/machines/2.jpg"))
	})

	t.Run("missing directory is fine", func(t *testing.T) {
		t.Parallel()
		store := fs.NewAssetStore(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, store.RemoveAll())
	})

	t.Run("leaves unrelated files alone", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("keep"), 0o644))
		store := fs.NewAssetStore(dir)

		_, err := store.Save(context.Background(), 1, []byte("a"))
		require.NoError(t, err)
		require.NoError(t, store.RemoveAll())

		_, err = os.Stat(filepath.Join(dir, "README.md"))
		require.NoError(t, err)
	})
}

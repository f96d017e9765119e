package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestLocalBlobStore_Put(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalBlobStore(dir)
	require.NoError(t, err)

	ref, err := store.Put(context.Background(), "Seat.PNG", strings.NewReader("image-bytes"))

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".png"))
	data, err := os.ReadFile(filepath.Join(dir, ref))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))

	other, err := store.Put(context.Background(), "Seat.PNG", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.NotEqual(t, ref, other)
}

func TestLocalBlobStore_PutFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalBlobStore(dir)
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "a.jpg", failingReader{})

	require.Error(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalBlobStore_Delete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalBlobStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := store.Put(ctx, "a.jpg", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(dir, ref))
	assert.True(t, os.IsNotExist(err))

	// 已刪除的檔案再刪一次不算錯誤
	assert.NoError(t, store.Delete(ctx, ref))
	assert.Error(t, store.Delete(ctx, "../etc/passwd"))
}

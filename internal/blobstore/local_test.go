package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PathIsDeterministic(t *testing.T) {
	s := NewLocalStore("/data/attachments")

	assert.Equal(t, "/data/attachments/c1/a1", s.Path("c1", "a1"))
	assert.Equal(t, s.Path("c1", "a1"), s.Path("c1", "a1"))
}

func TestLocalStore_PathCleansTrailingSlash(t *testing.T) {
	s := NewLocalStore("/data/attachments/")

	assert.Equal(t, "/data/attachments/c1/a1", s.Path("c1", "a1"))
}

func TestLocalStore_PutAndRemove(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())
	p := s.Path("c1", "a1")

	require.NoError(t, s.Put(ctx, p, strings.NewReader("ciphertext")))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "ciphertext", string(b))

	require.NoError(t, s.Put(ctx, p, strings.NewReader("v2")))
	b, err = os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(b))

	require.NoError(t, s.Remove(ctx, p))
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_RemoveMissingFails(t *testing.T) {
	s := NewLocalStore(t.TempDir())

	err := s.Remove(context.Background(), s.Path("c1", "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalStore_PutFailsWhenCipherDirIsAFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "c1"), []byte("x"), 0o660))

	s := NewLocalStore(root)
	err := s.Put(context.Background(), s.Path("c1", "a1"), strings.NewReader("data"))
	require.Error(t, err)
}

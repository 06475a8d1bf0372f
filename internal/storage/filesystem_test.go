package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreWriteReadList(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key, err := s.Write(ctx, "./transactions/2024/log.csv", []byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, "transactions/2024/log.csv", key)

	_, err = s.Write(ctx, "transactions/older.csv", []byte("x"))
	require.NoError(t, err)

	data, err := s.Read(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	keys, err := s.List(ctx, "transactions")
	require.NoError(t, err)
	assert.Equal(t, []string{"transactions/2024/log.csv", "transactions/older.csv"}, keys)

	keys, err = s.List(ctx, "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	for _, key := range []string{"", "  ", "../escape.csv", "a/../../b", ".."} {
		_, err := s.Write(context.Background(), key, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestFileStoreReadMissing(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	_, err = s.Read(context.Background(), "missing.csv")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileStoreCancelledContext(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Write(ctx, "a.csv", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	_, err := NewFileStore(" ")
	require.Error(t, err)
}

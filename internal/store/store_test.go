package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_InMemory(t *testing.T) {
	s := openTestStore(t)

	n, err := s.RecordCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestOpen_FileIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaults.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.PutRecord(context.Background(), "h1", []byte{1, 2, 3}, 1))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	img, ok, err := s2.GetRecord(context.Background(), "h1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, img)
}

func TestClose_NilSafe(t *testing.T) {
	var s Store
	assert.NoError(t, s.Close())
}

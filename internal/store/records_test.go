package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutRecord_InsertAndUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutRecord(ctx, "h1", []byte{1, 2, 3, 4}, 1))

	img, ok, err := s.GetRecord(ctx, "h1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, img)

	// Same-size update replaces the image.
	require.NoError(t, s.PutRecord(ctx, "h1", []byte{9, 9, 9, 9}, 2))
	img, ok, err = s.GetRecord(ctx, "h1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{9, 9, 9, 9}, img)
}

func TestPutRecord_SizeIsFixedAtCreation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutRecord(ctx, "h1", []byte{1, 2, 3, 4}, 1))

	err := s.PutRecord(ctx, "h1", []byte{1, 2, 3, 4, 5}, 2)
	assert.ErrorIs(t, err, ErrSizeChanged)

	img, ok, getErr := s.GetRecord(ctx, "h1")
	require.NoError(t, getErr)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, img, "rejected resize leaves the image untouched")
}

func TestGetRecord_Missing(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.GetRecord(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutRecord(ctx, "h1", []byte{1}, 1))
	require.NoError(t, s.PutRecord(ctx, "h2", []byte{2}, 2))
	require.NoError(t, s.PutRecord(ctx, "h1", []byte{3}, 3))

	n, err := s.RecordCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

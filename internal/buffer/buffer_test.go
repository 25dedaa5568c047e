package buffer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strongbox/internal/fault"
)

func TestNew_RejectsNonPositiveCapacity(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)

	_, err = New(-1)
	assert.Error(t, err)
}

func TestWrite_FillsExactCapacity(t *testing.T) {
	b, err := New(64)
	require.NoError(t, err)

	data := bytes.Repeat([]byte{0xAB}, 64)
	require.NoError(t, b.Write(0, data))
	assert.Equal(t, 64, b.Len())

	got, err := b.Read(0, 64)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestWrite_OneBytePastCapacity(t *testing.T) {
	b, err := New(64)
	require.NoError(t, err)
	require.NoError(t, b.Write(0, bytes.Repeat([]byte{1}, 64)))

	err = b.Write(64, []byte{2})
	assert.True(t, fault.Is(err, fault.CodeCapacityExceeded))
	assert.Equal(t, 64, b.Len(), "length unchanged after rejected write")
}

func TestWrite_RejectedBeforeAnyCopy(t *testing.T) {
	b, err := New(8)
	require.NoError(t, err)
	require.NoError(t, b.Write(0, []byte{1, 2, 3, 4}))

	// Would fit partially: first 4 bytes in range, last 6 out. Nothing
	// may be copied.
	err = b.Write(4, bytes.Repeat([]byte{9}, 10))
	assert.True(t, fault.Is(err, fault.CodeCapacityExceeded))

	got, readErr := b.Read(0, 4)
	require.NoError(t, readErr)
	assert.Equal(t, []byte{1, 2, 3, 4}, got, "no partial copy executed")
	assert.Equal(t, 4, b.Len())
}

func TestWrite_NegativeOffset(t *testing.T) {
	b, err := New(8)
	require.NoError(t, err)

	err = b.Write(-1, []byte{1})
	assert.True(t, fault.Is(err, fault.CodeCapacityExceeded))
}

func TestWrite_EmptyDoesNotExtendLength(t *testing.T) {
	b, err := New(8)
	require.NoError(t, err)

	require.NoError(t, b.Write(8, nil))
	assert.Equal(t, 0, b.Len())
}

func TestWrite_LengthIsHighWaterMark(t *testing.T) {
	b, err := New(16)
	require.NoError(t, err)

	require.NoError(t, b.Write(0, bytes.Repeat([]byte{1}, 10)))
	assert.Equal(t, 10, b.Len())

	// Overwrite inside the written region: length stays at the high mark.
	require.NoError(t, b.Write(2, []byte{7, 7}))
	assert.Equal(t, 10, b.Len())

	require.NoError(t, b.Write(8, bytes.Repeat([]byte{2}, 4)))
	assert.Equal(t, 12, b.Len())
}

func TestRead_PastLength(t *testing.T) {
	b, err := New(16)
	require.NoError(t, err)
	require.NoError(t, b.Write(0, []byte{1, 2, 3}))

	_, err = b.Read(0, 4)
	assert.True(t, fault.Is(err, fault.CodeOutOfRange))

	_, err = b.Read(3, 1)
	assert.True(t, fault.Is(err, fault.CodeOutOfRange))

	_, err = b.Read(-1, 1)
	assert.True(t, fault.Is(err, fault.CodeOutOfRange))
}

func TestRead_ReturnsCopy(t *testing.T) {
	b, err := New(4)
	require.NoError(t, err)
	require.NoError(t, b.Write(0, []byte{1, 2, 3, 4}))

	got, err := b.Read(0, 4)
	require.NoError(t, err)
	got[0] = 99

	again, err := b.Read(0, 1)
	require.NoError(t, err)
	assert.Equal(t, byte(1), again[0], "callers must not alias internal storage")
}

func TestRestore_RoundTrip(t *testing.T) {
	b, err := Restore(8, []byte{5, 6, 7})
	require.NoError(t, err)
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, 8, b.Capacity())
	assert.Equal(t, []byte{5, 6, 7}, b.Bytes())
}

func TestRestore_LengthBeyondCapacity(t *testing.T) {
	_, err := Restore(2, []byte{1, 2, 3})
	assert.Error(t, err)
}

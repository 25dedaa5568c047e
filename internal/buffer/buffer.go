// Package buffer implements a fixed-capacity byte container with checked,
// all-or-nothing writes.
//
// Every overflow bug in the vulnerability corpus this kernel hardens against
// stems from performing a raw copy before checking length. Buffer makes the
// check-then-copy ordering structural: validation is total before any byte
// moves, so a partial or overflowing copy is unrepresentable rather than a
// call-site discipline.
package buffer

import (
	"fmt"

	"github.com/roach88/strongbox/internal/fault"
)

// Buffer is a byte container whose capacity is fixed at construction.
//
// INVARIANT: length <= capacity at all times. A write that would violate
// this is rejected before any copy occurs.
type Buffer struct {
	capacity int
	length   int
	bytes    []byte
}

// New creates an empty buffer with the given capacity.
// Capacity must be positive; it can never be resized afterwards.
func New(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("buffer capacity must be positive, got %d", capacity)
	}
	return &Buffer{
		capacity: capacity,
		bytes:    make([]byte, capacity),
	}, nil
}

// Restore reconstructs a buffer from a persisted image. The image length
// becomes the buffer length and must not exceed capacity.
func Restore(capacity int, data []byte) (*Buffer, error) {
	b, err := New(capacity)
	if err != nil {
		return nil, err
	}
	if len(data) > capacity {
		return nil, fmt.Errorf("restored length %d exceeds capacity %d", len(data), capacity)
	}
	copy(b.bytes, data)
	b.length = len(data)
	return b, nil
}

// Capacity returns the fixed capacity.
func (b *Buffer) Capacity() int { return b.capacity }

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int { return b.length }

// Write copies data into the buffer starting at offset.
//
// Validation is total before any mutation: if offset+len(data) exceeds
// capacity the write fails with CAPACITY_EXCEEDED and the buffer is
// untouched - no partial copy ever executes. On success the length becomes
// max(length, offset+len(data)).
func (b *Buffer) Write(offset int, data []byte) error {
	if offset < 0 {
		return fault.Newf(fault.CodeCapacityExceeded, "negative offset %d", offset)
	}
	if len(data) == 0 {
		// An empty write must not extend the readable length.
		return nil
	}
	// offset > capacity - len(data) avoids int overflow on offset+len(data).
	if offset > b.capacity-len(data) {
		return fault.Newf(fault.CodeCapacityExceeded,
			"write of %d bytes at offset %d exceeds capacity %d",
			len(data), offset, b.capacity)
	}

	copy(b.bytes[offset:], data)
	if end := offset + len(data); end > b.length {
		b.length = end
	}
	return nil
}

// Read returns a copy of count bytes starting at offset.
//
// Fails with OUT_OF_RANGE if the range extends past the written length;
// it can therefore never read past capacity, and never exposes bytes that
// were not explicitly written.
func (b *Buffer) Read(offset, count int) ([]byte, error) {
	if offset < 0 || count < 0 {
		return nil, fault.Newf(fault.CodeOutOfRange, "negative range [%d, +%d)", offset, count)
	}
	if offset > b.length-count {
		return nil, fault.Newf(fault.CodeOutOfRange,
			"read of %d bytes at offset %d exceeds length %d",
			count, offset, b.length)
	}

	out := make([]byte, count)
	copy(out, b.bytes[offset:offset+count])
	return out, nil
}

// Bytes returns a copy of the written region.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, b.length)
	copy(out, b.bytes[:b.length])
	return out
}

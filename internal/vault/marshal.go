package vault

import (
	"encoding/binary"
	"fmt"

	"github.com/roach88/strongbox/internal/buffer"
	"github.com/roach88/strongbox/internal/identity"
	"github.com/roach88/strongbox/internal/lifecycle"
)

// Record wire layout, little-endian:
//
//	offset  size      field
//	0       1         layout version (currently 1)
//	1       1         lifecycle state
//	2       32        owner identity
//	34      8         balance
//	42      4         payload capacity
//	46      4         payload length
//	50      capacity  payload bytes (zero padded past length)
//
// The image size is headerSize + capacity and is fixed when the record is
// created; the storage provider enforces that updates never change it.

const (
	layoutVersion = 1
	headerSize    = 50
)

// ImageSize returns the persisted image size for a given payload capacity.
func ImageSize(capacity int) int {
	return headerSize + capacity
}

// MarshalBinary encodes the record into its fixed-size image.
func (r *Record) MarshalBinary() ([]byte, error) {
	capacity := r.payload.Capacity()
	img := make([]byte, ImageSize(capacity))

	img[0] = layoutVersion
	img[1] = byte(r.life.State())
	copy(img[2:34], r.owner[:])
	binary.LittleEndian.PutUint64(img[34:42], r.balance)
	binary.LittleEndian.PutUint32(img[42:46], uint32(capacity))
	binary.LittleEndian.PutUint32(img[46:50], uint32(r.payload.Len()))
	copy(img[headerSize:], r.payload.Bytes())

	return img, nil
}

// UnmarshalRecord decodes a persisted image back into a Record.
//
// Every field is validated before the record is handed out: an image that
// claims a length beyond its capacity, an unknown state, or a truncated
// payload region is rejected rather than partially decoded.
func UnmarshalRecord(img []byte) (*Record, error) {
	if len(img) < headerSize {
		return nil, fmt.Errorf("unmarshal record: image too short (%d bytes)", len(img))
	}
	if img[0] != layoutVersion {
		return nil, fmt.Errorf("unmarshal record: unsupported layout version %d", img[0])
	}

	life, err := lifecycle.Restore(lifecycle.State(img[1]))
	if err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}

	owner, err := identity.FromBytes(img[2:34])
	if err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}

	balance := binary.LittleEndian.Uint64(img[34:42])
	capacity := int(binary.LittleEndian.Uint32(img[42:46]))
	length := int(binary.LittleEndian.Uint32(img[46:50]))

	if capacity <= 0 || capacity > MaxCapacity {
		return nil, fmt.Errorf("unmarshal record: capacity %d outside (0, %d]", capacity, MaxCapacity)
	}
	if len(img) != ImageSize(capacity) {
		return nil, fmt.Errorf("unmarshal record: image size %d, want %d", len(img), ImageSize(capacity))
	}
	if length < 0 || length > capacity {
		return nil, fmt.Errorf("unmarshal record: length %d exceeds capacity %d", length, capacity)
	}

	payload, err := buffer.Restore(capacity, img[headerSize:headerSize+length])
	if err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}

	return &Record{
		life:    life,
		owner:   owner,
		balance: balance,
		payload: payload,
	}, nil
}

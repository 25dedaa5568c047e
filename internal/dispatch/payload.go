package dispatch

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/roach88/strongbox/internal/fault"
)

// Payload wire formats, little-endian. Every payload opens with the
// 16-byte record handle; OpInitializeVault accepts an all-zero handle to
// mean "assign one".
//
//	initialize_vault:  handle[16] capacity[u32]
//	deposit, withdraw: handle[16] amount[u64]
//	close_vault:       handle[16]
//	recover_vault:     handle[16]
//	balance:           handle[16]
//	write_data:        handle[16] offset[u32] data[...]
//	read_data:         handle[16] offset[u32] count[u32]
//
// A payload that cannot be decoded is INVALID_OPERATION: the dispatcher
// refuses it before any record is loaded.

const handleLen = 16

func decodeHandle(payload []byte) (uuid.UUID, []byte, error) {
	if len(payload) < handleLen {
		return uuid.Nil, nil, fault.Newf(fault.CodeInvalidOperation,
			"payload too short for handle: %d bytes", len(payload))
	}
	h, err := uuid.FromBytes(payload[:handleLen])
	if err != nil {
		return uuid.Nil, nil, fault.Newf(fault.CodeInvalidOperation, "malformed handle: %v", err)
	}
	return h, payload[handleLen:], nil
}

type initPayload struct {
	Handle   uuid.UUID
	Capacity uint32
}

// EncodeInitPayload builds an initialize_vault payload. A Nil handle asks
// the dispatcher to assign one; capacity 0 uses the configured default.
func EncodeInitPayload(handle uuid.UUID, capacity uint32) []byte {
	buf := make([]byte, handleLen+4)
	copy(buf, handle[:])
	binary.LittleEndian.PutUint32(buf[handleLen:], capacity)
	return buf
}

func decodeInitPayload(payload []byte) (initPayload, error) {
	h, rest, err := decodeHandle(payload)
	if err != nil {
		return initPayload{}, err
	}
	if len(rest) != 4 {
		return initPayload{}, fault.Newf(fault.CodeInvalidOperation,
			"initialize_vault payload: want 4 trailing bytes, got %d", len(rest))
	}
	return initPayload{Handle: h, Capacity: binary.LittleEndian.Uint32(rest)}, nil
}

type amountPayload struct {
	Handle uuid.UUID
	Amount uint64
}

// EncodeAmountPayload builds a deposit or withdraw payload.
func EncodeAmountPayload(handle uuid.UUID, amount uint64) []byte {
	buf := make([]byte, handleLen+8)
	copy(buf, handle[:])
	binary.LittleEndian.PutUint64(buf[handleLen:], amount)
	return buf
}

func decodeAmountPayload(payload []byte) (amountPayload, error) {
	h, rest, err := decodeHandle(payload)
	if err != nil {
		return amountPayload{}, err
	}
	if len(rest) != 8 {
		return amountPayload{}, fault.Newf(fault.CodeInvalidOperation,
			"amount payload: want 8 trailing bytes, got %d", len(rest))
	}
	return amountPayload{Handle: h, Amount: binary.LittleEndian.Uint64(rest)}, nil
}

// EncodeHandlePayload builds a close_vault, recover_vault, or balance
// payload.
func EncodeHandlePayload(handle uuid.UUID) []byte {
	buf := make([]byte, handleLen)
	copy(buf, handle[:])
	return buf
}

func decodeHandlePayload(payload []byte) (uuid.UUID, error) {
	h, rest, err := decodeHandle(payload)
	if err != nil {
		return uuid.Nil, err
	}
	if len(rest) != 0 {
		return uuid.Nil, fault.Newf(fault.CodeInvalidOperation,
			"handle payload: %d unexpected trailing bytes", len(rest))
	}
	return h, nil
}

type writePayload struct {
	Handle uuid.UUID
	Offset uint32
	Data   []byte
}

// EncodeWritePayload builds a write_data payload.
func EncodeWritePayload(handle uuid.UUID, offset uint32, data []byte) []byte {
	buf := make([]byte, handleLen+4, handleLen+4+len(data))
	copy(buf, handle[:])
	binary.LittleEndian.PutUint32(buf[handleLen:], offset)
	return append(buf, data...)
}

func decodeWritePayload(payload []byte) (writePayload, error) {
	h, rest, err := decodeHandle(payload)
	if err != nil {
		return writePayload{}, err
	}
	if len(rest) < 4 {
		return writePayload{}, fault.Newf(fault.CodeInvalidOperation,
			"write_data payload: want offset, got %d bytes", len(rest))
	}
	return writePayload{
		Handle: h,
		Offset: binary.LittleEndian.Uint32(rest[:4]),
		Data:   rest[4:],
	}, nil
}

type readPayload struct {
	Handle uuid.UUID
	Offset uint32
	Count  uint32
}

// EncodeReadPayload builds a read_data payload.
func EncodeReadPayload(handle uuid.UUID, offset, count uint32) []byte {
	buf := make([]byte, handleLen+8)
	copy(buf, handle[:])
	binary.LittleEndian.PutUint32(buf[handleLen:], offset)
	binary.LittleEndian.PutUint32(buf[handleLen+4:], count)
	return buf
}

func decodeReadPayload(payload []byte) (readPayload, error) {
	h, rest, err := decodeHandle(payload)
	if err != nil {
		return readPayload{}, err
	}
	if len(rest) != 8 {
		return readPayload{}, fault.Newf(fault.CodeInvalidOperation,
			"read_data payload: want 8 trailing bytes, got %d", len(rest))
	}
	return readPayload{
		Handle: h,
		Offset: binary.LittleEndian.Uint32(rest[:4]),
		Count:  binary.LittleEndian.Uint32(rest[4:]),
	}, nil
}

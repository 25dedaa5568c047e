package dispatch

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strongbox/internal/fault"
)

func TestOpCode_String(t *testing.T) {
	assert.Equal(t, "initialize_vault", OpInitializeVault.String())
	assert.Equal(t, "recover_vault", OpRecoverVault.String())
	assert.Equal(t, "op(99)", OpCode(99).String())
}

func TestOpCode_Mutating(t *testing.T) {
	// Persistence at the dispatch chokepoint keys off this mapping:
	// read paths must never write a record image back.
	for _, op := range []OpCode{OpInitializeVault, OpDeposit, OpWithdraw, OpCloseVault, OpRecoverVault, OpWriteData} {
		assert.True(t, op.mutating(), op.String())
	}
	for _, op := range []OpCode{OpReadData, OpBalance, OpCode(99)} {
		assert.False(t, op.mutating(), op.String())
	}
}

func TestParseOpCode(t *testing.T) {
	op, err := ParseOpCode("withdraw")
	require.NoError(t, err)
	assert.Equal(t, OpWithdraw, op)

	_, err = ParseOpCode("teleport")
	code, ok := fault.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, fault.CodeInvalidOperation, code)
}

func TestPayload_RoundTrips(t *testing.T) {
	handle := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	p, err := decodeInitPayload(EncodeInitPayload(handle, 128))
	require.NoError(t, err)
	assert.Equal(t, handle, p.Handle)
	assert.Equal(t, uint32(128), p.Capacity)

	a, err := decodeAmountPayload(EncodeAmountPayload(handle, 1<<40))
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), a.Amount)

	w, err := decodeWritePayload(EncodeWritePayload(handle, 7, []byte("abc")))
	require.NoError(t, err)
	assert.Equal(t, uint32(7), w.Offset)
	assert.Equal(t, []byte("abc"), w.Data)

	r, err := decodeReadPayload(EncodeReadPayload(handle, 7, 3))
	require.NoError(t, err)
	assert.Equal(t, uint32(3), r.Count)
}

func TestPayload_DecodeRejectsWrongLength(t *testing.T) {
	handle := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	cases := map[string]func() error{
		"short handle":   func() error { _, err := decodeHandlePayload([]byte{1, 2, 3}); return err },
		"trailing bytes": func() error { _, err := decodeHandlePayload(append(handle[:], 0)); return err },
		"truncated init": func() error { _, err := decodeInitPayload(handle[:]); return err },
		"short amount":   func() error { _, err := decodeAmountPayload(append(handle[:], 1, 2)); return err },
		"missing offset": func() error { _, err := decodeWritePayload(append(handle[:], 1)); return err },
		"truncated read": func() error { _, err := decodeReadPayload(append(handle[:], 1, 2, 3, 4)); return err },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			code, ok := fault.CodeOf(fn())
			require.True(t, ok)
			assert.Equal(t, fault.CodeInvalidOperation, code)
		})
	}
}

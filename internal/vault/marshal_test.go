package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strongbox/internal/auth"
	"github.com/roach88/strongbox/internal/lifecycle"
)

func marshaledVault(t *testing.T) ([]byte, *Record) {
	t.Helper()
	l := newTestLedger(t)
	rec := newActiveVault(t, l)
	require.NoError(t, l.Deposit(rec, alice.Credential(opMsg), 42))
	require.NoError(t, l.WriteData(rec, alice.Credential(opMsg), 0, []byte("abc")))

	img, err := rec.MarshalBinary()
	require.NoError(t, err)
	return img, rec
}

func TestMarshal_RoundTrip(t *testing.T) {
	img, orig := marshaledVault(t)
	assert.Len(t, img, ImageSize(64))

	rec, err := UnmarshalRecord(img)
	require.NoError(t, err)

	assert.Equal(t, lifecycle.Active, rec.State())
	assert.True(t, rec.Owner().Equal(orig.Owner()))
	assert.Equal(t, 64, rec.Capacity())

	bal, err := rec.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), bal)

	n, err := rec.PayloadLen()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMarshal_ImageSizeIsFixedAcrossStates(t *testing.T) {
	l := newTestLedger(t)
	rec := newActiveVault(t, l)

	before, err := rec.MarshalBinary()
	require.NoError(t, err)

	require.NoError(t, l.CloseVault(rec, alice.Credential(opMsg)))
	after, err := rec.MarshalBinary()
	require.NoError(t, err)

	assert.Equal(t, len(before), len(after))
}

func TestUnmarshal_RejectsDamagedImages(t *testing.T) {
	img, _ := marshaledVault(t)

	t.Run("truncated header", func(t *testing.T) {
		_, err := UnmarshalRecord(img[:10])
		assert.Error(t, err)
	})

	t.Run("unknown layout version", func(t *testing.T) {
		bad := append([]byte(nil), img...)
		bad[0] = 9
		_, err := UnmarshalRecord(bad)
		assert.Error(t, err)
	})

	t.Run("unknown state", func(t *testing.T) {
		bad := append([]byte(nil), img...)
		bad[1] = 7
		_, err := UnmarshalRecord(bad)
		assert.Error(t, err)
	})

	t.Run("length beyond capacity", func(t *testing.T) {
		bad := append([]byte(nil), img...)
		bad[46], bad[47] = 0xFF, 0xFF // length = 65535 > capacity 64
		_, err := UnmarshalRecord(bad)
		assert.Error(t, err)
	})

	t.Run("capacity mismatch with image size", func(t *testing.T) {
		bad := append([]byte(nil), img...)
		bad[42] = 128 // claims capacity 128 but image holds 64
		_, err := UnmarshalRecord(bad)
		assert.Error(t, err)
	})

	t.Run("zero capacity", func(t *testing.T) {
		bad := append([]byte(nil), img[:headerSize]...)
		bad[42], bad[43], bad[44], bad[45] = 0, 0, 0, 0
		bad[46], bad[47], bad[48], bad[49] = 0, 0, 0, 0
		_, err := UnmarshalRecord(bad)
		assert.Error(t, err)
	})
}

func TestUnmarshal_ClosedRecordStaysGuarded(t *testing.T) {
	l := newTestLedger(t)
	rec := newActiveVault(t, l)
	require.NoError(t, l.CloseVault(rec, alice.Credential(opMsg)))

	img, err := rec.MarshalBinary()
	require.NoError(t, err)

	restored, err := UnmarshalRecord(img)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Closed, restored.State())

	// Guards survive the round trip: a restored closed record is still
	// closed for every accessor.
	_, err = restored.Balance()
	assert.Error(t, err)

	gate := auth.NewGate(auth.Ed25519Verifier{})
	l2, err := NewLedger(gate, warden.ID)
	require.NoError(t, err)
	err = l2.Deposit(restored, alice.Credential(opMsg), 1)
	assert.Error(t, err)
}

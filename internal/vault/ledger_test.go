package vault

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strongbox/internal/auth"
	"github.com/roach88/strongbox/internal/fault"
	"github.com/roach88/strongbox/internal/lifecycle"
	"github.com/roach88/strongbox/internal/testutil"
)

var (
	alice  = testutil.NewParty("alice")
	mallet = testutil.NewParty("mallet")
	warden = testutil.NewParty("warden")
)

// opMsg stands in for the dispatcher's signing message. The ledger never
// interprets it; only the verifier does.
var opMsg = []byte("test-op")

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := NewLedger(auth.NewGate(auth.Ed25519Verifier{}), warden.ID)
	require.NoError(t, err)
	return l
}

func newActiveVault(t *testing.T, l *Ledger) *Record {
	t.Helper()
	rec, err := l.InitializeVault(alice.Credential(opMsg), 64)
	require.NoError(t, err)
	return rec
}

func TestNewLedger_Validation(t *testing.T) {
	gate := auth.NewGate(auth.Ed25519Verifier{})

	_, err := NewLedger(nil, warden.ID)
	assert.Error(t, err)

	_, err = NewLedger(gate, testutil.NewParty("").ID)
	assert.NoError(t, err, "any non-zero identity is acceptable")
}

func TestInitializeVault(t *testing.T) {
	l := newTestLedger(t)

	rec := newActiveVault(t, l)
	assert.Equal(t, lifecycle.Active, rec.State())
	assert.True(t, rec.Owner().Equal(alice.ID))
	assert.Equal(t, 64, rec.Capacity())

	bal, err := rec.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bal)
}

func TestInitializeVault_RequiresProofOfControl(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.InitializeVault(alice.BareCredential(opMsg), 64)
	assert.True(t, fault.Is(err, fault.CodeMissingAuthorization))

	_, err = l.InitializeVault(alice.ForgedCredential(opMsg, mallet), 64)
	assert.True(t, fault.Is(err, fault.CodeMissingAuthorization))
}

func TestInitializeVault_InvalidCapacity(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.InitializeVault(alice.Credential(opMsg), 0)
	assert.True(t, fault.Is(err, fault.CodeInvalidOperation))

	_, err = l.InitializeVault(alice.Credential(opMsg), MaxCapacity+1)
	assert.True(t, fault.Is(err, fault.CodeInvalidOperation))
}

func TestInitializeVault_RecoveryAuthorityCannotOwn(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.InitializeVault(warden.Credential(opMsg), 64)
	assert.True(t, fault.Is(err, fault.CodeInvalidOperation))
}

func TestDeposit(t *testing.T) {
	l := newTestLedger(t)
	rec := newActiveVault(t, l)

	require.NoError(t, l.Deposit(rec, alice.Credential(opMsg), 100))

	bal, err := rec.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), bal)
}

func TestDeposit_Overflow(t *testing.T) {
	l := newTestLedger(t)
	rec := newActiveVault(t, l)

	require.NoError(t, l.Deposit(rec, alice.Credential(opMsg), math.MaxUint64))

	err := l.Deposit(rec, alice.Credential(opMsg), 1)
	assert.True(t, fault.Is(err, fault.CodeArithmeticOverflow))

	bal, readErr := rec.Balance()
	require.NoError(t, readErr)
	assert.Equal(t, uint64(math.MaxUint64), bal, "balance unchanged after overflow fault")
}

func TestWithdraw_SignerCheck(t *testing.T) {
	l := newTestLedger(t)
	rec := newActiveVault(t, l)
	require.NoError(t, l.Deposit(rec, alice.Credential(opMsg), 100))

	// Wrong identity, validly proven.
	err := l.Withdraw(rec, mallet.Credential(opMsg), 50)
	assert.True(t, fault.Is(err, fault.CodeMissingAuthorization))

	// Right identity, no proof of control.
	err = l.Withdraw(rec, alice.BareCredential(opMsg), 50)
	assert.True(t, fault.Is(err, fault.CodeMissingAuthorization))

	// Right identity, proof signed by someone else.
	err = l.Withdraw(rec, alice.ForgedCredential(opMsg, mallet), 50)
	assert.True(t, fault.Is(err, fault.CodeMissingAuthorization))

	bal, readErr := rec.Balance()
	require.NoError(t, readErr)
	assert.Equal(t, uint64(100), bal, "balance untouched by rejected withdrawals")
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	l := newTestLedger(t)
	rec := newActiveVault(t, l)
	require.NoError(t, l.Deposit(rec, alice.Credential(opMsg), 100))

	err := l.Withdraw(rec, alice.Credential(opMsg), 150)
	assert.True(t, fault.Is(err, fault.CodeInsufficientFunds))

	bal, readErr := rec.Balance()
	require.NoError(t, readErr)
	assert.Equal(t, uint64(100), bal)

	require.NoError(t, l.Withdraw(rec, alice.Credential(opMsg), 100))
	bal, readErr = rec.Balance()
	require.NoError(t, readErr)
	assert.Equal(t, uint64(0), bal)
}

func TestCloseVault(t *testing.T) {
	l := newTestLedger(t)
	rec := newActiveVault(t, l)
	require.NoError(t, l.Deposit(rec, alice.Credential(opMsg), 25))

	err := l.CloseVault(rec, alice.Credential(opMsg))
	assert.True(t, fault.Is(err, fault.CodeNonZeroBalance))
	assert.Equal(t, lifecycle.Active, rec.State(), "refused close leaves the record active")

	require.NoError(t, l.Withdraw(rec, alice.Credential(opMsg), 25))
	require.NoError(t, l.CloseVault(rec, alice.Credential(opMsg)))
	assert.Equal(t, lifecycle.Closed, rec.State())

	// Second close is the double-free class: reported, not repeated.
	err = l.CloseVault(rec, alice.Credential(opMsg))
	assert.True(t, fault.Is(err, fault.CodeAlreadyClosed))
}

func TestClosedVault_RejectsEverything(t *testing.T) {
	l := newTestLedger(t)
	rec := newActiveVault(t, l)
	require.NoError(t, l.CloseVault(rec, alice.Credential(opMsg)))

	err := l.Deposit(rec, alice.Credential(opMsg), 1)
	assert.True(t, fault.Is(err, fault.CodeNotActive))

	err = l.Withdraw(rec, alice.Credential(opMsg), 1)
	assert.True(t, fault.Is(err, fault.CodeNotActive))

	err = l.WriteData(rec, alice.Credential(opMsg), 0, []byte{1})
	assert.True(t, fault.Is(err, fault.CodeNotActive))

	_, err = rec.Balance()
	assert.True(t, fault.Is(err, fault.CodeUseAfterClose))

	_, err = l.ReadData(rec, alice.Credential(opMsg), 0, 1)
	assert.True(t, fault.Is(err, fault.CodeUseAfterClose))
}

func TestRecoverVault(t *testing.T) {
	l := newTestLedger(t)
	rec := newActiveVault(t, l)

	// Recover on an active record is NOT_CLOSED and a no-op.
	err := l.RecoverVault(rec, warden.Credential(opMsg))
	assert.True(t, fault.Is(err, fault.CodeNotClosed))
	assert.Equal(t, lifecycle.Active, rec.State())

	require.NoError(t, l.CloseVault(rec, alice.Credential(opMsg)))

	// The owner is not the recovery authority.
	err = l.RecoverVault(rec, alice.Credential(opMsg))
	assert.True(t, fault.Is(err, fault.CodeUnauthorized))

	// The authority must prove control.
	err = l.RecoverVault(rec, warden.BareCredential(opMsg))
	assert.True(t, fault.Is(err, fault.CodeMissingAuthorization))

	require.NoError(t, l.RecoverVault(rec, warden.Credential(opMsg)))
	assert.Equal(t, lifecycle.Active, rec.State())

	require.NoError(t, l.Deposit(rec, alice.Credential(opMsg), 5))
	bal, readErr := rec.Balance()
	require.NoError(t, readErr)
	assert.Equal(t, uint64(5), bal)
}

func TestWriteReadData(t *testing.T) {
	l := newTestLedger(t)
	rec := newActiveVault(t, l)

	require.NoError(t, l.WriteData(rec, alice.Credential(opMsg), 0, []byte("sealed")))

	got, err := l.ReadData(rec, alice.Credential(opMsg), 0, 6)
	require.NoError(t, err)
	assert.Equal(t, []byte("sealed"), got)

	// Payload is sensitive: reads demand the owner's signature.
	_, err = l.ReadData(rec, mallet.Credential(opMsg), 0, 6)
	assert.True(t, fault.Is(err, fault.CodeMissingAuthorization))

	err = l.WriteData(rec, alice.Credential(opMsg), 60, []byte("overrun"))
	assert.True(t, fault.Is(err, fault.CodeCapacityExceeded))

	_, err = l.ReadData(rec, alice.Credential(opMsg), 0, 7)
	assert.True(t, fault.Is(err, fault.CodeOutOfRange))
}

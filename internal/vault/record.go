// Package vault composes the bounded buffer, record lifecycle, and
// authorization gate into the account type the kernel manages: a record
// holding a balance, an owner identity, and a fixed-capacity payload.
//
// All record state lives in the Record instance; the package holds no
// mutable process-wide state, so independent records can be processed
// concurrently by the host as long as each record has at most one
// operation in flight - the host ledger's call convention guarantees that.
package vault

import (
	"math"

	"github.com/roach88/strongbox/internal/auth"
	"github.com/roach88/strongbox/internal/buffer"
	"github.com/roach88/strongbox/internal/fault"
	"github.com/roach88/strongbox/internal/identity"
	"github.com/roach88/strongbox/internal/lifecycle"
)

// MaxCapacity bounds the payload size a record may be created with.
const MaxCapacity = 1 << 16

// Record is a single vault account.
//
// INVARIANTS:
//   - state Uninitialized => balance and payload are not readable
//     (accessors fault, they never return garbage)
//   - state Closed => balance == 0 and no mutation except an authorized
//     recover
//
// The zero balance on close is forced by the ledger: CloseVault refuses
// while funds remain.
type Record struct {
	life    *lifecycle.Lifecycle
	owner   identity.Identity
	balance uint64
	payload *buffer.Buffer
}

// State returns the lifecycle state.
func (r *Record) State() lifecycle.State { return r.life.State() }

// Owner returns the owning identity. The owner field itself is not
// state-gated: the dispatcher needs it to run the signer check before any
// state decision is revealed.
func (r *Record) Owner() identity.Identity { return r.owner }

// Capacity returns the fixed payload capacity.
func (r *Record) Capacity() int { return r.payload.Capacity() }

// Balance returns the balance, gated by lifecycle state.
func (r *Record) Balance() (uint64, error) {
	if err := r.life.EnsureReadable(); err != nil {
		return 0, err
	}
	return r.balance, nil
}

// PayloadLen returns the written payload length, gated by lifecycle state.
func (r *Record) PayloadLen() (int, error) {
	if err := r.life.EnsureReadable(); err != nil {
		return 0, err
	}
	return r.payload.Len(), nil
}

// credit adds to the balance. Requires a grant covering the owner, an
// Active record, and a sum that does not wrap.
func (r *Record) credit(g auth.Grant, amount uint64) error {
	if !g.Covers(r.owner) {
		return fault.New(fault.CodeMissingAuthorization, "grant does not cover the record owner")
	}
	if err := r.life.EnsureActive(); err != nil {
		return err
	}
	if amount > math.MaxUint64-r.balance {
		return fault.Newf(fault.CodeArithmeticOverflow,
			"deposit of %d would overflow balance %d", amount, r.balance)
	}
	r.balance += amount
	return nil
}

// debit removes from the balance. Requires a grant covering the owner, an
// Active record, and sufficient funds.
func (r *Record) debit(g auth.Grant, amount uint64) error {
	if !g.Covers(r.owner) {
		return fault.New(fault.CodeMissingAuthorization, "grant does not cover the record owner")
	}
	if err := r.life.EnsureActive(); err != nil {
		return err
	}
	if amount > r.balance {
		return fault.Newf(fault.CodeInsufficientFunds,
			"withdrawal of %d exceeds balance %d", amount, r.balance)
	}
	r.balance -= amount
	return nil
}

// close transitions the record to Closed. Funds must be withdrawn first:
// closing with a balance strands it, so a non-zero balance is refused and
// the record stays Active.
func (r *Record) close(g auth.Grant) error {
	if !g.Covers(r.owner) {
		return fault.New(fault.CodeMissingAuthorization, "grant does not cover the record owner")
	}
	if r.life.State() == lifecycle.Active && r.balance != 0 {
		return fault.Newf(fault.CodeNonZeroBalance,
			"close requires zero balance, have %d", r.balance)
	}
	return r.life.Close()
}

// writePayload writes into the bounded payload buffer.
func (r *Record) writePayload(g auth.Grant, offset int, data []byte) error {
	if !g.Covers(r.owner) {
		return fault.New(fault.CodeMissingAuthorization, "grant does not cover the record owner")
	}
	if err := r.life.EnsureActive(); err != nil {
		return err
	}
	return r.payload.Write(offset, data)
}

// readPayload reads from the payload buffer. Payload contents are
// sensitive, so reads carry the same grant requirement as writes.
func (r *Record) readPayload(g auth.Grant, offset, count int) ([]byte, error) {
	if !g.Covers(r.owner) {
		return nil, fault.New(fault.CodeMissingAuthorization, "grant does not cover the record owner")
	}
	if err := r.life.EnsureReadable(); err != nil {
		return nil, err
	}
	return r.payload.Read(offset, count)
}

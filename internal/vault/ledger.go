package vault

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/strongbox/internal/auth"
	"github.com/roach88/strongbox/internal/buffer"
	"github.com/roach88/strongbox/internal/fault"
	"github.com/roach88/strongbox/internal/identity"
	"github.com/roach88/strongbox/internal/lifecycle"
)

// Ledger exposes the vault operations. Every mutating operation runs the
// authorization gate before touching record state; there is no path around
// it because the record mutators demand the resulting Grant.
//
// The recovery authority is supplied at construction (externally configured,
// never a compiled-in literal) and must be distinct from any record owner.
type Ledger struct {
	gate     *auth.Gate
	recovery identity.Identity
	log      *slog.Logger
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(log *slog.Logger) LedgerOption {
	return func(l *Ledger) {
		l.log = log
	}
}

// NewLedger creates a Ledger with the given gate and designated recovery
// authority. The recovery authority must be a real identity: a zero value
// would make every recover attempt unanswerable.
func NewLedger(gate *auth.Gate, recovery identity.Identity, opts ...LedgerOption) (*Ledger, error) {
	if gate == nil {
		return nil, fmt.Errorf("new ledger: gate is required")
	}
	if recovery.IsZero() {
		return nil, fmt.Errorf("new ledger: recovery authority is required")
	}
	l := &Ledger{
		gate:     gate,
		recovery: recovery,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// RecoveryAuthority returns the designated recovery authority.
func (l *Ledger) RecoveryAuthority() identity.Identity { return l.recovery }

// InitializeVault creates a new Active record owned by the caller.
//
// The caller must prove control of the owner identity: an attacker may not
// initialize a vault in someone else's name. The payload capacity is fixed
// here and never resized.
func (l *Ledger) InitializeVault(cred auth.Credential, capacity int) (*Record, error) {
	grant, err := l.gate.Attest(cred)
	if err != nil {
		return nil, err
	}
	owner := grant.Signer()
	if owner.Equal(l.recovery) {
		return nil, fault.New(fault.CodeInvalidOperation,
			"recovery authority may not own a vault")
	}
	if capacity <= 0 || capacity > MaxCapacity {
		return nil, fault.Newf(fault.CodeInvalidOperation,
			"capacity %d outside (0, %d]", capacity, MaxCapacity)
	}

	payload, err := buffer.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("initialize vault: %w", err)
	}

	rec := &Record{
		life:    lifecycle.New(),
		owner:   owner,
		payload: payload,
	}
	if err := rec.life.Initialize(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Deposit credits the record balance. Overflow is a reported fault, never
// silent wraparound.
func (l *Ledger) Deposit(rec *Record, cred auth.Credential, amount uint64) error {
	grant, err := l.gate.RequireSigner(cred, rec.Owner())
	if err != nil {
		return err
	}
	return rec.credit(grant, amount)
}

// Withdraw debits the record balance.
func (l *Ledger) Withdraw(rec *Record, cred auth.Credential, amount uint64) error {
	grant, err := l.gate.RequireSigner(cred, rec.Owner())
	if err != nil {
		return err
	}
	return rec.debit(grant, amount)
}

// CloseVault closes the record. Refused with NON_ZERO_BALANCE while funds
// remain, so funds can never be stranded behind a closed record.
func (l *Ledger) CloseVault(rec *Record, cred auth.Credential) error {
	grant, err := l.gate.RequireSigner(cred, rec.Owner())
	if err != nil {
		return err
	}
	return rec.close(grant)
}

// RecoverVault reactivates a closed record. Restricted to the designated
// recovery authority, which must be distinct from the owner, and always
// logged: recovery is an exceptional, audited path, not a routine one.
func (l *Ledger) RecoverVault(rec *Record, cred auth.Credential) error {
	grant, err := l.gate.Attest(cred)
	if err != nil {
		return err
	}
	if l.recovery.Equal(rec.Owner()) {
		return fault.New(fault.CodeUnauthorized,
			"recovery authority must be distinct from the record owner")
	}
	if err := rec.life.Recover(grant.Signer(), l.recovery); err != nil {
		return err
	}
	l.log.Info("vault recovered",
		"owner", rec.Owner().String(),
		"authority", grant.Signer().String())
	return nil
}

// WriteData writes owner-supplied bytes into the record payload.
func (l *Ledger) WriteData(rec *Record, cred auth.Credential, offset int, data []byte) error {
	grant, err := l.gate.RequireSigner(cred, rec.Owner())
	if err != nil {
		return err
	}
	return rec.writePayload(grant, offset, data)
}

// ReadData reads from the record payload. Payload contents are sensitive,
// so the read carries the same signer requirement as a write.
func (l *Ledger) ReadData(rec *Record, cred auth.Credential, offset, count int) ([]byte, error) {
	grant, err := l.gate.RequireSigner(cred, rec.Owner())
	if err != nil {
		return nil, err
	}
	return rec.readPayload(grant, offset, count)
}

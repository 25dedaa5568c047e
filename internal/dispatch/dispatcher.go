package dispatch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/roach88/strongbox/internal/auth"
	"github.com/roach88/strongbox/internal/fault"
	"github.com/roach88/strongbox/internal/identity"
	"github.com/roach88/strongbox/internal/store"
	"github.com/roach88/strongbox/internal/trace"
	"github.com/roach88/strongbox/internal/vault"
)

// signingDomain separates operation signatures from any other use of the
// same keys.
const signingDomain = "strongbox/op/v1"

// Request is one incoming operation.
type Request struct {
	Op      OpCode
	Payload []byte
	Caller  identity.Identity
	Proof   identity.Proof
}

// SigningMessage returns the digest a caller's proof must cover: a
// domain-separated SHA-256 over the opcode and payload. Binding the proof
// to the exact operation prevents replaying a signature against a
// different op or different arguments.
func SigningMessage(op OpCode, payload []byte) []byte {
	h := sha256.New()
	h.Write([]byte(signingDomain))
	h.Write([]byte{byte(op)})
	h.Write(payload)
	return h.Sum(nil)
}

func (r Request) credential() auth.Credential {
	return auth.Credential{
		ID:      r.Caller,
		Message: SigningMessage(r.Op, r.Payload),
		Proof:   r.Proof,
	}
}

// Outcome is the success result of a dispatched operation. Which fields
// are meaningful depends on the operation.
type Outcome struct {
	Op       string `json:"op"`
	Handle   string `json:"handle"`
	State    string `json:"state,omitempty"`
	Balance  uint64 `json:"balance"`
	Capacity int    `json:"capacity,omitempty"`
	Length   int    `json:"length,omitempty"`
	Data     string `json:"data,omitempty"` // hex
}

// HandleGenerator assigns handles when an initialize request leaves the
// handle field zero.
type HandleGenerator func() uuid.UUID

// Dispatcher routes operation requests to the vault ledger, persists the
// mutated record image, and appends one audit entry per dispatch.
type Dispatcher struct {
	store           *store.Store
	ledger          *vault.Ledger
	clock           *Clock
	ids             IDGenerator
	newHandle       HandleGenerator
	defaultCapacity int
	log             *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock sets the logical clock, typically NewClockAt(store.LastSeq)
// so sequence numbers keep increasing across restarts.
func WithClock(c *Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// WithIDGenerator sets the audit-entry ID generator.
// Defaults to UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(d *Dispatcher) { d.ids = g }
}

// WithHandleGenerator sets the generator for host-unassigned handles.
func WithHandleGenerator(g HandleGenerator) Option {
	return func(d *Dispatcher) { d.newHandle = g }
}

// WithDefaultCapacity sets the payload capacity used when an initialize
// request passes capacity 0.
func WithDefaultCapacity(capacity int) Option {
	return func(d *Dispatcher) { d.defaultCapacity = capacity }
}

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// DefaultCapacity is the payload capacity assigned when neither the
// request nor the configuration names one.
const DefaultCapacity = 64

// New creates a Dispatcher over the given store and ledger.
func New(st *store.Store, ledger *vault.Ledger, opts ...Option) (*Dispatcher, error) {
	if st == nil || ledger == nil {
		return nil, fmt.Errorf("new dispatcher: store and ledger are required")
	}
	d := &Dispatcher{
		store:           st,
		ledger:          ledger,
		clock:           NewClock(),
		ids:             UUIDv7Generator{},
		newHandle:       func() uuid.UUID { return uuid.Must(uuid.NewV7()) },
		defaultCapacity: DefaultCapacity,
		log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// applyResult carries the per-operation result back to Dispatch, which
// owns persistence, audit writing, and fault annotation. rec is the
// record image to write back for mutating operations.
type applyResult struct {
	outcome *Outcome
	handle  string
	rec     *vault.Record
	detail  map[string]string
	err     error
}

// Dispatch executes one operation request.
//
// Faults are appended to the audit log with their specific code and
// returned to the caller verbatim. Infrastructure failures (storage,
// corrupt images) are returned as plain errors and produce no audit
// entry - they are host problems, not operation outcomes.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Outcome, error) {
	seq := d.clock.Next()
	res := d.apply(ctx, req, seq)

	var f *fault.Fault
	if res.err != nil && !errors.As(res.err, &f) {
		return nil, res.err
	}

	// Only the chokepoint writes record state back, and only for
	// operations declared mutating. Faults leave the stored image
	// untouched, so operations are all-or-nothing from the host's view.
	if f == nil && req.Op.mutating() {
		if err := d.persist(ctx, res.handle, res.rec, seq); err != nil {
			return nil, err
		}
	}

	event := trace.Event{
		Seq:     seq,
		ID:      d.ids.Generate(),
		Handle:  res.handle,
		Op:      req.Op.String(),
		Caller:  req.Caller.String(),
		Outcome: trace.OutcomeOK,
		Detail:  res.detail,
	}
	if f != nil {
		event.Outcome = string(f.Code)
	}
	if err := d.store.AppendAudit(ctx, event); err != nil {
		return nil, err
	}

	if f != nil {
		d.log.Warn("operation faulted",
			"op", event.Op, "code", f.Code, "handle", res.handle, "seq", seq)
		return nil, f.WithOp(event.Op).WithHandle(res.handle).WithDetails(res.detail)
	}

	d.log.Debug("operation applied", "op", event.Op, "handle", res.handle, "seq", seq)
	return res.outcome, nil
}

func (d *Dispatcher) apply(ctx context.Context, req Request, seq int64) applyResult {
	switch req.Op {
	case OpInitializeVault:
		return d.applyInitialize(ctx, req)
	case OpDeposit, OpWithdraw:
		return d.applyAmountOp(ctx, req)
	case OpCloseVault:
		return d.applyClose(ctx, req)
	case OpRecoverVault:
		return d.applyRecover(ctx, req, seq)
	case OpWriteData:
		return d.applyWriteData(ctx, req)
	case OpReadData:
		return d.applyReadData(ctx, req)
	case OpBalance:
		return d.applyBalance(ctx, req)
	default:
		return applyResult{err: fault.Newf(fault.CodeInvalidOperation,
			"unknown operation code %d", uint8(req.Op))}
	}
}

func (d *Dispatcher) applyInitialize(ctx context.Context, req Request) applyResult {
	p, err := decodeInitPayload(req.Payload)
	if err != nil {
		return applyResult{err: err}
	}

	handle := p.Handle
	if handle == uuid.Nil {
		handle = d.newHandle()
	}
	capacity := int(p.Capacity)
	if capacity == 0 {
		capacity = d.defaultCapacity
	}
	res := applyResult{
		handle: handle.String(),
		detail: map[string]string{"capacity": strconv.Itoa(capacity)},
	}

	// A host-assigned handle may already exist; re-initializing it would
	// wipe an account.
	_, exists, err := d.store.GetRecord(ctx, handle.String())
	if err != nil {
		res.err = err
		return res
	}
	if exists {
		res.err = fault.New(fault.CodeAlreadyInitialized, "handle already holds a record")
		return res
	}

	rec, err := d.ledger.InitializeVault(req.credential(), capacity)
	if err != nil {
		res.err = err
		return res
	}

	res.rec = rec
	res.outcome = &Outcome{
		Op:       req.Op.String(),
		Handle:   handle.String(),
		State:    rec.State().String(),
		Capacity: rec.Capacity(),
	}
	return res
}

func (d *Dispatcher) applyAmountOp(ctx context.Context, req Request) applyResult {
	p, err := decodeAmountPayload(req.Payload)
	if err != nil {
		return applyResult{err: err}
	}
	res := applyResult{
		handle: p.Handle.String(),
		detail: map[string]string{"amount": strconv.FormatUint(p.Amount, 10)},
	}

	rec, err := d.load(ctx, p.Handle.String())
	if err != nil {
		res.err = err
		return res
	}

	if req.Op == OpDeposit {
		err = d.ledger.Deposit(rec, req.credential(), p.Amount)
	} else {
		err = d.ledger.Withdraw(rec, req.credential(), p.Amount)
	}
	if err != nil {
		res.err = err
		return res
	}

	balance, err := rec.Balance()
	if err != nil {
		res.err = err
		return res
	}
	res.rec = rec
	res.outcome = &Outcome{
		Op:      req.Op.String(),
		Handle:  res.handle,
		State:   rec.State().String(),
		Balance: balance,
	}
	return res
}

func (d *Dispatcher) applyClose(ctx context.Context, req Request) applyResult {
	handle, err := decodeHandlePayload(req.Payload)
	if err != nil {
		return applyResult{err: err}
	}
	res := applyResult{handle: handle.String()}

	rec, err := d.load(ctx, res.handle)
	if err != nil {
		res.err = err
		return res
	}
	if err := d.ledger.CloseVault(rec, req.credential()); err != nil {
		res.err = err
		return res
	}

	res.rec = rec
	res.outcome = &Outcome{
		Op:     req.Op.String(),
		Handle: res.handle,
		State:  rec.State().String(),
	}
	return res
}

func (d *Dispatcher) applyRecover(ctx context.Context, req Request, seq int64) applyResult {
	handle, err := decodeHandlePayload(req.Payload)
	if err != nil {
		return applyResult{err: err}
	}
	res := applyResult{handle: handle.String()}

	rec, err := d.load(ctx, res.handle)
	if err != nil {
		res.err = err
		return res
	}
	if err := d.ledger.RecoverVault(rec, req.credential()); err != nil {
		res.err = err
		return res
	}

	d.log.Info("vault recovered", "handle", res.handle, "authority", req.Caller.String(), "seq", seq)

	balance, err := rec.Balance()
	if err != nil {
		res.err = err
		return res
	}
	res.rec = rec
	res.outcome = &Outcome{
		Op:      req.Op.String(),
		Handle:  res.handle,
		State:   rec.State().String(),
		Balance: balance,
	}
	return res
}

func (d *Dispatcher) applyWriteData(ctx context.Context, req Request) applyResult {
	p, err := decodeWritePayload(req.Payload)
	if err != nil {
		return applyResult{err: err}
	}
	res := applyResult{
		handle: p.Handle.String(),
		detail: map[string]string{
			"offset": strconv.FormatUint(uint64(p.Offset), 10),
			"bytes":  strconv.Itoa(len(p.Data)),
		},
	}

	rec, err := d.load(ctx, res.handle)
	if err != nil {
		res.err = err
		return res
	}
	if err := d.ledger.WriteData(rec, req.credential(), int(p.Offset), p.Data); err != nil {
		res.err = err
		return res
	}

	length, err := rec.PayloadLen()
	if err != nil {
		res.err = err
		return res
	}
	res.rec = rec
	res.outcome = &Outcome{
		Op:     req.Op.String(),
		Handle: res.handle,
		State:  rec.State().String(),
		Length: length,
	}
	return res
}

func (d *Dispatcher) applyReadData(ctx context.Context, req Request) applyResult {
	p, err := decodeReadPayload(req.Payload)
	if err != nil {
		return applyResult{err: err}
	}
	res := applyResult{
		handle: p.Handle.String(),
		detail: map[string]string{
			"offset": strconv.FormatUint(uint64(p.Offset), 10),
			"count":  strconv.FormatUint(uint64(p.Count), 10),
		},
	}

	rec, err := d.load(ctx, res.handle)
	if err != nil {
		res.err = err
		return res
	}
	data, err := d.ledger.ReadData(rec, req.credential(), int(p.Offset), int(p.Count))
	if err != nil {
		res.err = err
		return res
	}

	res.outcome = &Outcome{
		Op:     req.Op.String(),
		Handle: res.handle,
		State:  rec.State().String(),
		Length: len(data),
		Data:   hex.EncodeToString(data),
	}
	return res
}

func (d *Dispatcher) applyBalance(ctx context.Context, req Request) applyResult {
	handle, err := decodeHandlePayload(req.Payload)
	if err != nil {
		return applyResult{err: err}
	}
	res := applyResult{handle: handle.String()}

	rec, err := d.load(ctx, res.handle)
	if err != nil {
		res.err = err
		return res
	}
	balance, err := rec.Balance()
	if err != nil {
		res.err = err
		return res
	}

	res.outcome = &Outcome{
		Op:      req.Op.String(),
		Handle:  res.handle,
		State:   rec.State().String(),
		Balance: balance,
	}
	return res
}

// load fetches and decodes a record image. A missing handle is
// NOT_INITIALIZED: from the caller's view the record was never created.
func (d *Dispatcher) load(ctx context.Context, handle string) (*vault.Record, error) {
	img, ok, err := d.store.GetRecord(ctx, handle)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fault.New(fault.CodeNotInitialized, "no record for handle")
	}
	rec, err := vault.UnmarshalRecord(img)
	if err != nil {
		return nil, fmt.Errorf("load record %s: %w", handle, err)
	}
	return rec, nil
}

// persist writes the record image back under the dispatch sequence number.
func (d *Dispatcher) persist(ctx context.Context, handle string, rec *vault.Record, seq int64) error {
	img, err := rec.MarshalBinary()
	if err != nil {
		return fmt.Errorf("persist record %s: %w", handle, err)
	}
	if err := d.store.PutRecord(ctx, handle, img, seq); err != nil {
		return fmt.Errorf("persist record %s: %w", handle, err)
	}
	return nil
}

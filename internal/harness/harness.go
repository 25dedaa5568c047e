package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/strongbox/internal/auth"
	"github.com/roach88/strongbox/internal/dispatch"
	"github.com/roach88/strongbox/internal/fault"
	"github.com/roach88/strongbox/internal/identity"
	"github.com/roach88/strongbox/internal/store"
	"github.com/roach88/strongbox/internal/testutil"
	"github.com/roach88/strongbox/internal/trace"
	"github.com/roach88/strongbox/internal/vault"
)

// defaultRecoveryAuthority is the party holding recovery rights when a
// scenario does not name one.
const defaultRecoveryAuthority = "warden"

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step produced its expected outcome and
	// every assertion held.
	Pass bool

	// Trace is the full audit trail, with callers rendered as party
	// names so traces are stable and legible.
	Trace []trace.Event

	// Errors lists every expectation or assertion that failed.
	Errors []string
}

func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Harness wires a scenario's parties and vault labels to a live
// dispatcher. One harness serves one scenario run.
type Harness struct {
	store      *store.Store
	dispatcher *dispatch.Dispatcher

	parties map[string]testutil.Party
	names   map[identity.Identity]string
	vaults  map[string]uuid.UUID
}

// Run executes a scenario in a fresh in-memory store.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("open scenario store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:   st,
		parties: map[string]testutil.Party{},
		names:   map[identity.Identity]string{},
		vaults:  map[string]uuid.UUID{},
	}

	authority := scenario.RecoveryAuthority
	if authority == "" {
		authority = defaultRecoveryAuthority
	}

	ledger, err := vault.NewLedger(auth.NewGate(auth.Ed25519Verifier{}), h.party(authority).ID,
		vault.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		return nil, fmt.Errorf("build scenario ledger: %w", err)
	}
	h.dispatcher, err = dispatch.New(st, ledger,
		dispatch.WithIDGenerator(dispatch.NewSequenceGenerator("entry")))
	if err != nil {
		return nil, fmt.Errorf("build scenario dispatcher: %w", err)
	}

	ctx := context.Background()
	result := &Result{Pass: true}

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, err
		}
	}

	events, err := st.ReadAudit(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("read scenario trace: %w", err)
	}
	for i := range events {
		if name, ok := h.nameFor(events[i].Caller); ok {
			events[i].Caller = name
		}
	}
	result.Trace = events

	h.evaluateAssertions(ctx, scenario.Assertions, result)
	return result, nil
}

// party returns the named party, deriving its key pair on first use.
func (h *Harness) party(name string) testutil.Party {
	p, ok := h.parties[name]
	if !ok {
		p = testutil.NewParty(name)
		h.parties[name] = p
		h.names[p.ID] = name
	}
	return p
}

func (h *Harness) nameFor(callerHex string) (string, bool) {
	id, err := identity.Parse(callerHex)
	if err != nil {
		return "", false
	}
	name, ok := h.names[id]
	return name, ok
}

// handle maps a vault label to its fixed handle, assigned in order of
// first use so a scenario's handles never depend on anything external.
func (h *Harness) handle(label string) uuid.UUID {
	if handle, ok := h.vaults[label]; ok {
		return handle
	}
	handle := uuid.MustParse(fmt.Sprintf("00000000-0000-4000-8000-%012d", len(h.vaults)+1))
	h.vaults[label] = handle
	return handle
}

func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	op, err := dispatch.ParseOpCode(step.Op)
	if err != nil {
		return fmt.Errorf("steps[%d]: %w", index, err)
	}

	handle := h.handle(step.Vault)
	var payload []byte
	switch op {
	case dispatch.OpInitializeVault:
		payload = dispatch.EncodeInitPayload(handle, step.Capacity)
	case dispatch.OpDeposit, dispatch.OpWithdraw:
		payload = dispatch.EncodeAmountPayload(handle, step.Amount)
	case dispatch.OpWriteData:
		payload = dispatch.EncodeWritePayload(handle, step.Offset, []byte(step.Data))
	case dispatch.OpReadData:
		payload = dispatch.EncodeReadPayload(handle, step.Offset, step.Count)
	default:
		payload = dispatch.EncodeHandlePayload(handle)
	}

	caller := h.party(step.Caller)
	message := dispatch.SigningMessage(op, payload)
	var cred auth.Credential
	switch {
	case step.Unsigned:
		cred = caller.BareCredential(message)
	case step.SignedBy != "":
		cred = caller.ForgedCredential(message, h.party(step.SignedBy))
	default:
		cred = caller.Credential(message)
	}

	req := dispatch.Request{Op: op, Payload: payload, Caller: cred.ID, Proof: cred.Proof}
	_, err = h.dispatcher.Dispatch(ctx, req)

	outcome := trace.OutcomeOK
	if err != nil {
		var f *fault.Fault
		if !errors.As(err, &f) {
			return fmt.Errorf("steps[%d] %s: %w", index, step.Op, err)
		}
		outcome = string(f.Code)
	}

	expected := step.Expect
	if expected == "" {
		expected = trace.OutcomeOK
	}
	if outcome != expected {
		result.addError("steps[%d] %s: expected outcome %s, got %s",
			index, step.Op, expected, outcome)
	}
	return nil
}

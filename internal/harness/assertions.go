package harness

import (
	"context"

	"github.com/roach88/strongbox/internal/vault"
)

// evaluateAssertions checks every assertion against the final store state
// and the collected trace, recording failures instead of stopping at the
// first one.
func (h *Harness) evaluateAssertions(ctx context.Context, assertions []Assertion, result *Result) {
	for i, a := range assertions {
		switch a.Type {
		case AssertBalance:
			h.assertBalance(ctx, i, a, result)
		case AssertState:
			h.assertState(ctx, i, a, result)
		case AssertAuditCount:
			h.assertAuditCount(i, a, result)
		}
	}
}

// loadRecord reads a vault's persisted image. The harness inspects records
// through the same marshaled form the dispatcher persists, so assertions see
// exactly what a restarted host would.
func (h *Harness) loadRecord(ctx context.Context, index int, label string, result *Result) *vault.Record {
	handle, ok := h.vaults[label]
	if !ok {
		result.addError("assertions[%d]: vault %q never appeared in any step", index, label)
		return nil
	}
	img, found, err := h.store.GetRecord(ctx, handle.String())
	if err != nil {
		result.addError("assertions[%d]: load vault %q: %v", index, label, err)
		return nil
	}
	if !found {
		result.addError("assertions[%d]: vault %q has no stored record", index, label)
		return nil
	}
	rec, err := vault.UnmarshalRecord(img)
	if err != nil {
		result.addError("assertions[%d]: decode vault %q: %v", index, label, err)
		return nil
	}
	return rec
}

func (h *Harness) assertBalance(ctx context.Context, index int, a Assertion, result *Result) {
	rec := h.loadRecord(ctx, index, a.Vault, result)
	if rec == nil {
		return
	}
	balance, err := rec.Balance()
	if err != nil {
		result.addError("assertions[%d]: balance of vault %q unreadable in state %s",
			index, a.Vault, rec.State())
		return
	}
	if balance != a.Balance {
		result.addError("assertions[%d]: vault %q balance = %d, want %d",
			index, a.Vault, balance, a.Balance)
	}
}

func (h *Harness) assertState(ctx context.Context, index int, a Assertion, result *Result) {
	rec := h.loadRecord(ctx, index, a.Vault, result)
	if rec == nil {
		return
	}
	if rec.State().String() != a.State {
		result.addError("assertions[%d]: vault %q state = %s, want %s",
			index, a.Vault, rec.State(), a.State)
	}
}

func (h *Harness) assertAuditCount(index int, a Assertion, result *Result) {
	count := 0
	for _, e := range result.Trace {
		if a.Outcome == "" || e.Outcome == a.Outcome {
			count++
		}
	}
	if count != a.Count {
		result.addError("assertions[%d]: %d audit entries with outcome %q, want %d",
			index, count, a.Outcome, a.Count)
	}
}

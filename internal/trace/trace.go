// Package trace defines the audit-trail event model and its canonical
// serialized form.
//
// Every dispatched operation - successful or faulted - produces exactly one
// Event. The outcome field records the specific fault code verbatim; the
// audit trail never degrades a known fault into a generic failure, because
// the specific code is what a safety review depends on.
package trace

// OutcomeOK is the outcome value for operations that completed without a
// fault. Any other outcome value is a fault code.
const OutcomeOK = "OK"

// Event is one audit-trail entry.
type Event struct {
	// Seq is the logical-clock position of the operation. Ordering is by
	// seq, never by wall clock.
	Seq int64 `json:"seq"`

	// ID uniquely identifies the entry.
	ID string `json:"id"`

	// Handle identifies the affected record, empty when the operation
	// never resolved one.
	Handle string `json:"handle,omitempty"`

	// Op is the operation name, or the raw code for unknown operations.
	Op string `json:"op"`

	// Caller is the hex encoding of the claimed caller identity.
	Caller string `json:"caller"`

	// Outcome is OutcomeOK or the fault code.
	Outcome string `json:"outcome"`

	// Detail carries op-specific context (amounts, offsets, lengths).
	// Values are strings so the canonical form round-trips exactly.
	Detail map[string]string `json:"detail,omitempty"`
}

// canonicalMap renders the event for canonical JSON serialization.
// Empty optional fields are omitted entirely to keep the form minimal.
func (e Event) canonicalMap() map[string]any {
	m := map[string]any{
		"seq":     e.Seq,
		"id":      e.ID,
		"op":      e.Op,
		"caller":  e.Caller,
		"outcome": e.Outcome,
	}
	if e.Handle != "" {
		m["handle"] = e.Handle
	}
	if len(e.Detail) > 0 {
		m["detail"] = e.Detail
	}
	return m
}

// MarshalDetail returns the canonical JSON form of the detail map, "{}"
// when empty. This is the form the store persists.
func (e Event) MarshalDetail() (string, error) {
	if len(e.Detail) == 0 {
		return "{}", nil
	}
	b, err := MarshalCanonical(e.Detail)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Snapshot is a full trace rendered for golden comparison.
type Snapshot struct {
	Scenario string
	Events   []Event
}

// MarshalCanonical returns the byte-deterministic form of the snapshot.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	events := make([]any, len(s.Events))
	for i, e := range s.Events {
		events[i] = e.canonicalMap()
	}
	return MarshalCanonical(map[string]any{
		"scenario": s.Scenario,
		"events":   events,
	})
}

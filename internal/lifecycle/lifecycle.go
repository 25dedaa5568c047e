// Package lifecycle implements the guarded three-state record lifecycle.
//
// States: Uninitialized -> Active -> Closed -> Active (recover only).
//
// Every state-gated accessor must consult the lifecycle before touching
// record data. This replaces the "boolean active flag" pattern, where a
// forgotten check silently reads freed or uninitialized data, with a state
// machine whose transitions are the only way to change state:
//
//   - a second close is a reported ALREADY_CLOSED fault, never a repeated
//     mutation (the double-free class);
//   - reading a closed record is USE_AFTER_CLOSE (the use-after-free class);
//   - reading an uninitialized record is NOT_INITIALIZED, never garbage
//     (the uninitialized-read class).
package lifecycle

import (
	"fmt"

	"github.com/roach88/strongbox/internal/fault"
	"github.com/roach88/strongbox/internal/identity"
)

// State is the lifecycle position of a record.
type State uint8

const (
	// Uninitialized is the creation state. No record data is readable.
	Uninitialized State = iota

	// Active permits reads and mutations.
	Active

	// Closed permits nothing except an authorized recover.
	Closed
)

// String returns the stable state name used in audit output and scenarios.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "UNINITIALIZED"
	case Active:
		return "ACTIVE"
	case Closed:
		return "CLOSED"
	default:
		return fmt.Sprintf("STATE(%d)", uint8(s))
	}
}

// ParseState is the inverse of String.
func ParseState(name string) (State, error) {
	switch name {
	case "UNINITIALIZED":
		return Uninitialized, nil
	case "ACTIVE":
		return Active, nil
	case "CLOSED":
		return Closed, nil
	default:
		return Uninitialized, fmt.Errorf("unknown state %q", name)
	}
}

// Lifecycle holds a record's current state. State changes only through the
// transition methods below; there is no setter.
type Lifecycle struct {
	state State
}

// New returns a lifecycle in the Uninitialized state.
func New() *Lifecycle {
	return &Lifecycle{state: Uninitialized}
}

// Restore reconstructs a lifecycle from a persisted state value.
// Unknown values are rejected rather than defaulted.
func Restore(s State) (*Lifecycle, error) {
	switch s {
	case Uninitialized, Active, Closed:
		return &Lifecycle{state: s}, nil
	default:
		return nil, fmt.Errorf("restore lifecycle: unknown state %d", uint8(s))
	}
}

// State returns the current state.
func (l *Lifecycle) State() State { return l.state }

// Initialize transitions Uninitialized -> Active.
// Any other starting state is ALREADY_INITIALIZED.
func (l *Lifecycle) Initialize() error {
	if l.state != Uninitialized {
		return fault.Newf(fault.CodeAlreadyInitialized,
			"record is %s, initialize requires %s", l.state, Uninitialized)
	}
	l.state = Active
	return nil
}

// Close transitions Active -> Closed.
//
// Closing a closed record is ALREADY_CLOSED - a reported fault, not a
// silent no-op. Closing an uninitialized record is NOT_INITIALIZED.
func (l *Lifecycle) Close() error {
	switch l.state {
	case Closed:
		return fault.New(fault.CodeAlreadyClosed, "record is already closed")
	case Uninitialized:
		return fault.New(fault.CodeNotInitialized, "record was never initialized")
	}
	l.state = Closed
	return nil
}

// Recover transitions Closed -> Active for the designated authority.
//
// The authority check runs first so that an unauthorized caller learns
// nothing about the record's state. An authorized recover on a record that
// is not closed is NOT_CLOSED and leaves the state untouched.
func (l *Lifecycle) Recover(authority, expected identity.Identity) error {
	if expected.IsZero() || !authority.Equal(expected) {
		return fault.New(fault.CodeUnauthorized, "recovery requires the designated authority")
	}
	if l.state != Closed {
		return fault.Newf(fault.CodeNotClosed, "record is %s, recover requires %s", l.state, Closed)
	}
	l.state = Active
	return nil
}

// EnsureReadable gates access to record data (balance, payload).
//
// Uninitialized records fail NOT_INITIALIZED: their contents are never
// surfaced as meaningful data. Closed records fail USE_AFTER_CLOSE.
func (l *Lifecycle) EnsureReadable() error {
	switch l.state {
	case Uninitialized:
		return fault.New(fault.CodeNotInitialized, "record was never initialized")
	case Closed:
		return fault.New(fault.CodeUseAfterClose, "record is closed")
	}
	return nil
}

// EnsureActive gates mutations. Anything but Active is NOT_ACTIVE.
func (l *Lifecycle) EnsureActive() error {
	if l.state != Active {
		return fault.Newf(fault.CodeNotActive, "record is %s", l.state)
	}
	return nil
}

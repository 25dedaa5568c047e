// Package fault defines the typed error taxonomy shared by every kernel
// component.
//
// Faults are the only error kind the operation surface reports. Each fault
// carries a stable string code that the audit trail records verbatim; the
// dispatcher never collapses a known fault into a generic error, because the
// specific code is what a safety audit depends on.
//
// Faults are returned, never recovered by retry: record mutations are not
// idempotent-retry-safe without caller re-validation. No fault is fatal to
// the process - the kernel stays usable for subsequent independent records
// after any single operation fails.
package fault

import (
	"errors"
	"fmt"
)

// Code categorizes a fault. Codes are stable identifiers: they are stored
// in the audit log and compared by conformance scenarios.
type Code string

const (
	// CodeCapacityExceeded indicates a buffer write that would pass the
	// fixed capacity. No bytes were copied.
	CodeCapacityExceeded Code = "CAPACITY_EXCEEDED"

	// CodeOutOfRange indicates a buffer read past the written length.
	CodeOutOfRange Code = "OUT_OF_RANGE"

	// CodeNotInitialized indicates access to a record that was never
	// initialized. Uninitialized data is never readable.
	CodeNotInitialized Code = "NOT_INITIALIZED"

	// CodeAlreadyInitialized indicates a second initialize on the same
	// record.
	CodeAlreadyInitialized Code = "ALREADY_INITIALIZED"

	// CodeUseAfterClose indicates a read of state-gated data on a closed
	// record.
	CodeUseAfterClose Code = "USE_AFTER_CLOSE"

	// CodeAlreadyClosed indicates a close of an already-closed record.
	// The second close is a reported fault, never a silent no-op.
	CodeAlreadyClosed Code = "ALREADY_CLOSED"

	// CodeNotClosed indicates a recover attempt on a record that is not
	// closed.
	CodeNotClosed Code = "NOT_CLOSED"

	// CodeNotActive indicates a mutation attempt on a record that is not
	// in the Active state.
	CodeNotActive Code = "NOT_ACTIVE"

	// CodeMissingAuthorization indicates the caller's identity did not
	// match the required authority, or the caller presented an identity
	// without proof of control.
	CodeMissingAuthorization Code = "MISSING_AUTHORIZATION"

	// CodeUnauthorized indicates a recovery attempt by an identity other
	// than the designated recovery authority.
	CodeUnauthorized Code = "UNAUTHORIZED"

	// CodeInsufficientFunds indicates a withdrawal larger than the balance.
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"

	// CodeArithmeticOverflow indicates a balance update that would wrap
	// around. The balance is unchanged.
	CodeArithmeticOverflow Code = "ARITHMETIC_OVERFLOW"

	// CodeNonZeroBalance indicates a close attempt while funds remain.
	CodeNonZeroBalance Code = "NON_ZERO_BALANCE"

	// CodeInvalidOperation indicates an unknown opcode or a payload the
	// dispatcher could not decode.
	CodeInvalidOperation Code = "INVALID_OPERATION"
)

// Fault is the typed result of a rejected kernel operation.
//
// Op and Handle are filled in by the dispatcher where known; component-level
// constructors leave them empty.
type Fault struct {
	// Code identifies the fault category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Op names the operation that faulted, when known.
	Op string

	// Handle identifies the affected record, when known.
	Handle string

	// Details contains additional context for diagnostics.
	Details map[string]string
}

// Error implements the error interface.
func (f *Fault) Error() string {
	switch {
	case f.Op != "" && f.Handle != "":
		return fmt.Sprintf("%s: %s (op=%s, handle=%s)", f.Code, f.Message, f.Op, f.Handle)
	case f.Op != "":
		return fmt.Sprintf("%s: %s (op=%s)", f.Code, f.Message, f.Op)
	case f.Handle != "":
		return fmt.Sprintf("%s: %s (handle=%s)", f.Code, f.Message, f.Handle)
	default:
		return fmt.Sprintf("%s: %s", f.Code, f.Message)
	}
}

// New creates a Fault with the given code and message.
func New(code Code, message string) *Fault {
	return &Fault{Code: code, Message: message}
}

// Newf creates a Fault with a formatted message.
func Newf(code Code, format string, args ...any) *Fault {
	return &Fault{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the fault code from an error chain.
// Returns ("", false) if the error is not a Fault.
func CodeOf(err error) (Code, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code, true
	}
	return "", false
}

// Is reports whether the error chain contains a Fault with the given code.
func Is(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// WithOp returns a copy of the fault annotated with the operation name.
// The original fault is not modified.
func (f *Fault) WithOp(op string) *Fault {
	c := *f
	c.Op = op
	return &c
}

// WithHandle returns a copy of the fault annotated with the record handle.
// The original fault is not modified.
func (f *Fault) WithHandle(handle string) *Fault {
	c := *f
	c.Handle = handle
	return &c
}

// WithDetails returns a copy of the fault annotated with diagnostic
// context. A nil map leaves the fault unchanged.
func (f *Fault) WithDetails(details map[string]string) *Fault {
	if len(details) == 0 {
		return f
	}
	c := *f
	c.Details = details
	return &c
}

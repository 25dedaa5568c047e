// Package dispatch implements the kernel's sole operation entry surface.
//
// A host integrates against exactly one method: Dispatcher.Dispatch, which
// takes (operation code, payload bytes, caller identity, proof) and returns
// an Outcome or a typed fault. No ledger, lifecycle, or buffer method is
// reachable from outside the kernel, so every mutating path passes through
// the authorization gate and the lifecycle guards uniformly - an operation
// cannot bypass them by calling internals directly.
//
// Dispatch is synchronous: each call completes or faults before returning,
// and the host guarantees at most one in-flight operation per record. The
// dispatcher itself holds no record state; everything lives in the stored
// record image loaded for the duration of the call.
//
// Every dispatch - faulted or not - appends one audit entry stamped with a
// monotonic logical sequence number. Ordering is by that seq counter, never
// wall-clock time, so audit reads and replays are deterministic.
package dispatch

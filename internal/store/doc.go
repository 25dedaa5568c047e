// Package store provides SQLite-backed durable storage for vault records
// and the operation audit log.
//
// The store plays the "account storage provider" role: it persists each
// record's fixed-size byte image across invocations. The allocation size is
// negotiated when the record is created and never resized - PutRecord
// rejects any update whose image length differs from the original
// allocation.
//
// The audit log is an append-only table with one row per dispatched
// operation, ordered by a logical sequence number rather than wall time.
// All reads order by seq ASC, id ASC COLLATE BINARY so results are
// identical across replays and golden comparisons.
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store

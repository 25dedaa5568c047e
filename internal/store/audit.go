package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/strongbox/internal/trace"
)

// AppendAudit inserts one audit entry. The entry's detail map is stored as
// canonical JSON so identical traces are byte-identical in the database.
//
// The audit log is append-only; there is no update or delete path.
func (s *Store) AppendAudit(ctx context.Context, e trace.Event) error {
	detail, err := e.MarshalDetail()
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, seq, handle, op, caller, outcome, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Seq, e.Handle, e.Op, e.Caller, e.Outcome, detail)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// ReadAudit returns audit entries, optionally filtered by handle.
// Results are ordered deterministically: seq ASC, id ASC with binary
// collation, so replays and golden comparisons see identical output.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) ReadAudit(ctx context.Context, handle string) ([]trace.Event, error) {
	query := `
		SELECT id, seq, handle, op, caller, outcome, detail
		FROM audit_log
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`
	args := []any{}
	if handle != "" {
		query = `
			SELECT id, seq, handle, op, caller, outcome, detail
			FROM audit_log
			WHERE handle = ?
			ORDER BY seq ASC, id COLLATE BINARY ASC
		`
		args = append(args, handle)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	events := []trace.Event{}
	for rows.Next() {
		var e trace.Event
		var detail string
		if err := rows.Scan(&e.ID, &e.Seq, &e.Handle, &e.Op, &e.Caller, &e.Outcome, &detail); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if detail != "" && detail != "{}" {
			if err := json.Unmarshal([]byte(detail), &e.Detail); err != nil {
				return nil, fmt.Errorf("unmarshal audit detail: %w", err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit log: %w", err)
	}

	return events, nil
}

// LastSeq returns the highest sequence number in the audit log, 0 when the
// log is empty. The dispatcher resumes its clock from here so sequence
// numbers stay strictly increasing across process restarts.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM audit_log`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}

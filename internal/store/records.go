package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrSizeChanged is returned when an update would change a record's
// allocated image size. Capacity is negotiated at creation and never
// resized; a resize reaching the store means a kernel bug, not a caller
// mistake, so it is an error rather than a fault.
var ErrSizeChanged = errors.New("record image size is fixed at creation")

// PutRecord inserts or updates a record image.
//
// On insert the image size becomes the record's fixed allocation. On
// update the size must match exactly or ErrSizeChanged is returned and the
// stored image is untouched.
func (s *Store) PutRecord(ctx context.Context, handle string, image []byte, seq int64) error {
	var size int
	err := s.db.QueryRowContext(ctx,
		`SELECT size FROM records WHERE handle = ?`, handle).Scan(&size)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO records (handle, image, size, created_seq, updated_seq)
			VALUES (?, ?, ?, ?, ?)
		`, handle, image, len(image), seq, seq)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("lookup record size: %w", err)
	}

	if size != len(image) {
		return fmt.Errorf("update record %s: image is %d bytes, allocation is %d: %w",
			handle, len(image), size, ErrSizeChanged)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE records SET image = ?, updated_seq = ? WHERE handle = ?
	`, image, seq, handle)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return nil
}

// GetRecord returns the stored image for a handle.
// The second return value reports whether the handle exists.
func (s *Store) GetRecord(ctx context.Context, handle string) ([]byte, bool, error) {
	var image []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT image FROM records WHERE handle = ?`, handle).Scan(&image)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("get record: %w", err)
	}
	return image, true, nil
}

// RecordCount returns the number of stored records.
func (s *Store) RecordCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Put inserts an encoded record blob. When address is empty a UUIDv7
// address is generated, so insertion order remains recoverable from the
// address ordering. Writing an existing address replaces the blob;
// records model current state, not an event log.
//
// Returns the address the blob was stored under.
func (s *Store) Put(ctx context.Context, address, recordName string, data []byte) (string, error) {
	if recordName == "" {
		return "", fmt.Errorf("put record: empty record name")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("put record: empty blob")
	}
	if address == "" {
		address = uuid.Must(uuid.NewV7()).String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (address, record_name, data)
		VALUES (?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			record_name = excluded.record_name,
			data = excluded.data
	`, address, recordName, data)
	if err != nil {
		return "", fmt.Errorf("put record: %w", err)
	}
	return address, nil
}

// Delete removes a record by address. Deleting an absent address is not
// an error.
func (s *Store) Delete(ctx context.Context, address string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE address = ?`, address); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

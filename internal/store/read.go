package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Record is one stored blob.
type Record struct {
	Address    string
	RecordName string
	Data       []byte
	WrittenAt  string
}

// ErrNotFound is returned by Get for an absent address.
var ErrNotFound = errors.New("record not found")

// Get returns the record stored at an address, or ErrNotFound.
func (s *Store) Get(ctx context.Context, address string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT address, record_name, data, written_at
		FROM records
		WHERE address = ?
	`, address)

	var rec Record
	err := row.Scan(&rec.Address, &rec.RecordName, &rec.Data, &rec.WrittenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get %q: %w", address, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %q: %w", address, err)
	}
	return rec, nil
}

// List returns every record for a record name in deterministic order.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) List(ctx context.Context, recordName string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT address, record_name, data, written_at
		FROM records
		WHERE record_name = ?
		ORDER BY address COLLATE BINARY ASC
	`, recordName)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", recordName, err)
	}
	defer rows.Close()

	return collect(rows)
}

func collect(rows *sql.Rows) ([]Record, error) {
	records := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Address, &rec.RecordName, &rec.Data, &rec.WrittenAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/roach88/sigil/internal/codec"
)

// Scan returns every record whose blob matches the filter: the bytes at
// filter.Offset must equal filter.Pattern. This is the consumer side of
// codec.PrefixFilter - a bare discriminator filter selects every blob of
// one record type regardless of how it was labeled on write.
//
// Results are ordered by address for deterministic output. All values
// are parameterized, never interpolated; SQLite's substr is 1-based,
// hence the offset shift.
func (s *Store) Scan(ctx context.Context, filter codec.Filter) ([]Record, error) {
	if len(filter.Pattern) == 0 {
		return nil, fmt.Errorf("scan: empty filter pattern")
	}
	if filter.Offset < 0 {
		return nil, fmt.Errorf("scan: negative filter offset")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT address, record_name, data, written_at
		FROM records
		WHERE substr(data, ?, ?) = CAST(? AS BLOB)
		ORDER BY address COLLATE BINARY ASC
	`, filter.Offset+1, len(filter.Pattern), filter.Pattern)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

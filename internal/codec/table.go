package codec

import (
	"bytes"

	"github.com/roach88/sigil/internal/layout"
	"github.com/roach88/sigil/internal/schema"
)

// Entry pairs a record's discriminator bytes with its compiled layout.
type Entry struct {
	Name          string
	Discriminator []byte
	Layout        layout.Layout
}

// Table maps record names to (discriminator, layout) pairs, built once
// from a schema and read-only thereafter. Entries keep their declaration
// order; prefix matching scans them in that order, so when two
// discriminators share a prefix the earlier declaration deterministically
// wins.
type Table struct {
	entries []Entry
	byName  map[string]int
}

// NewTable compiles a layout for every record declaration. Returns a
// *schema.SchemaError if a record's named type cannot be resolved or its
// definition cannot be laid out; no partial table is returned.
func NewTable(s *schema.Schema) (*Table, error) {
	compiler := layout.NewCompiler(s)
	t := &Table{
		entries: make([]Entry, 0, len(s.Records)),
		byName:  make(map[string]int, len(s.Records)),
	}
	for _, rec := range s.Records {
		if len(rec.Discriminator) == 0 {
			return nil, &schema.SchemaError{Record: rec.Name, Message: "empty discriminator"}
		}
		lay, err := compiler.Named(rec.Name)
		if err != nil {
			return nil, err
		}
		disc := make([]byte, len(rec.Discriminator))
		copy(disc, rec.Discriminator)
		t.byName[rec.Name] = len(t.entries)
		t.entries = append(t.entries, Entry{
			Name:          rec.Name,
			Discriminator: disc,
			Layout:        lay,
		})
	}
	return t, nil
}

// Len returns the number of records in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns the table entries in declaration order. The slice is
// shared; callers must not modify it.
func (t *Table) Entries() []Entry {
	return t.entries
}

// Lookup returns the entry for a record name, or an *UnknownRecordError.
func (t *Table) Lookup(name string) (*Entry, error) {
	i, ok := t.byName[name]
	if !ok {
		return nil, &UnknownRecordError{Record: name}
	}
	return &t.entries[i], nil
}

// Match scans entries in declaration order and returns the first whose
// discriminator bytes exactly match the buffer's leading bytes, or a
// *RecordNotFoundError. A linear probe is deliberate: record counts are
// small and discriminators are short.
func (t *Table) Match(buf []byte) (*Entry, error) {
	for i := range t.entries {
		if bytes.HasPrefix(buf, t.entries[i].Discriminator) {
			return &t.entries[i], nil
		}
	}
	prefix := buf
	if len(prefix) > 16 {
		prefix = prefix[:16]
	}
	sample := make([]byte, len(prefix))
	copy(sample, prefix)
	return nil, &RecordNotFoundError{Prefix: sample}
}

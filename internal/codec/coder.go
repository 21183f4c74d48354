package codec

import (
	"bytes"
	"encoding/hex"
	"encoding/json"

	"github.com/roach88/sigil/internal/layout"
	"github.com/roach88/sigil/internal/schema"
)

// Filter is a byte-prefix match descriptor for an external lookup
// collaborator: select blobs whose bytes at Offset equal Pattern. The
// offset is always zero for a bare discriminator match; appended bytes
// extend the pattern without moving it.
type Filter struct {
	Offset  int    `json:"offset"`
	Pattern []byte `json:"-"`
}

// MarshalJSON renders the pattern as lowercase hex.
func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Offset  int    `json:"offset"`
		Pattern string `json:"pattern"`
	}{Offset: f.Offset, Pattern: hex.EncodeToString(f.Pattern)})
}

// Coder encodes and decodes discriminator-prefixed records. Construction
// compiles every record layout; afterwards the coder is read-only and
// safe for concurrent use.
type Coder struct {
	table *Table
}

// NewCoder builds a coder from a schema. Returns a *schema.SchemaError
// if the schema is structurally inconsistent.
func NewCoder(s *schema.Schema) (*Coder, error) {
	table, err := NewTable(s)
	if err != nil {
		return nil, err
	}
	return &Coder{table: table}, nil
}

// Table exposes the discriminator table for inspection tooling.
func (c *Coder) Table() *Table {
	return c.table
}

// Encode writes v as record name: discriminator bytes followed by the
// encoded body. The destination is sized by walking the value first, so
// variable-length values never truncate. Fails with *UnknownRecordError
// or, for values that do not match the layout, a *layout.ValueError.
func (c *Coder) Encode(name string, v schema.Value) ([]byte, error) {
	entry, err := c.table.Lookup(name)
	if err != nil {
		return nil, err
	}
	body, err := entry.Layout.SizeOf(v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(entry.Discriminator)+body)
	copy(out, entry.Discriminator)
	n, err := entry.Layout.Put(v, out, len(entry.Discriminator))
	if err != nil {
		return nil, err
	}
	return out[:len(entry.Discriminator)+n], nil
}

// Decode validates data's leading bytes against the record's
// discriminator, then decodes the remainder. A wrong or truncated prefix
// fails with *DiscriminatorMismatchError.
func (c *Coder) Decode(name string, data []byte) (schema.Value, error) {
	entry, err := c.table.Lookup(name)
	if err != nil {
		return nil, err
	}
	disc := entry.Discriminator
	if len(data) < len(disc) || !bytes.Equal(data[:len(disc)], disc) {
		got := data
		if len(got) > len(disc) {
			got = got[:len(disc)]
		}
		return nil, &DiscriminatorMismatchError{Record: name, Want: disc, Got: got}
	}
	return c.decodeBody(entry, data)
}

// DecodeUnchecked skips discriminator validation: exactly the
// discriminator's length is stripped without inspecting its content, and
// the remainder is decoded. For callers that already validated context
// by external means. It never reports a discriminator mismatch; a
// foreign prefix either mis-decodes or fails at the layout level.
func (c *Coder) DecodeUnchecked(name string, data []byte) (schema.Value, error) {
	entry, err := c.table.Lookup(name)
	if err != nil {
		return nil, err
	}
	return c.decodeBody(entry, data)
}

// DecodeAny identifies an unknown buffer: the table is scanned in
// declaration order and the first record whose discriminator matches the
// buffer's prefix decodes it. Fails with *RecordNotFoundError when
// nothing matches. When two discriminators share a prefix the
// first-declared record wins on every call.
func (c *Coder) DecodeAny(data []byte) (string, schema.Value, error) {
	entry, err := c.table.Match(data)
	if err != nil {
		return "", nil, err
	}
	v, err := c.decodeBody(entry, data)
	if err != nil {
		return "", nil, err
	}
	return entry.Name, v, nil
}

func (c *Coder) decodeBody(entry *Entry, data []byte) (schema.Value, error) {
	skip := len(entry.Discriminator)
	if len(data) < skip {
		return nil, &layout.DecodeError{
			Path:    entry.Name,
			Offset:  0,
			Message: "buffer shorter than discriminator",
		}
	}
	v, _, err := entry.Layout.Get(data, skip)
	if err != nil {
		return nil, err
	}
	// Trailing bytes beyond the decoded body are ignored; stores may
	// over-allocate record space.
	return v, nil
}

// Size returns the discriminator length plus the record layout's static
// size. The result is exact only for fully fixed-width layouts; when any
// field is variable-length the minimum encoded size is returned and
// callers must not rely on it for sizing real data - use SizeOf with a
// concrete value instead.
func (c *Coder) Size(name string) (int, error) {
	entry, err := c.table.Lookup(name)
	if err != nil {
		return 0, err
	}
	if n, ok := entry.Layout.FixedSize(); ok {
		return len(entry.Discriminator) + n, nil
	}
	return len(entry.Discriminator) + entry.Layout.MinSize(), nil
}

// SizeOf returns the exact encoded length of v as record name, including
// the discriminator, by walking the value.
func (c *Coder) SizeOf(name string, v schema.Value) (int, error) {
	entry, err := c.table.Lookup(name)
	if err != nil {
		return 0, err
	}
	body, err := entry.Layout.SizeOf(v)
	if err != nil {
		return 0, err
	}
	return len(entry.Discriminator) + body, nil
}

// PrefixFilter builds a filter descriptor for the record: offset zero,
// pattern equal to the discriminator bytes followed by any extra bytes
// the caller appends. Pure function, no I/O.
func (c *Coder) PrefixFilter(name string, extra ...byte) (Filter, error) {
	entry, err := c.table.Lookup(name)
	if err != nil {
		return Filter{}, err
	}
	pattern := make([]byte, 0, len(entry.Discriminator)+len(extra))
	pattern = append(pattern, entry.Discriminator...)
	pattern = append(pattern, extra...)
	return Filter{Offset: 0, Pattern: pattern}, nil
}

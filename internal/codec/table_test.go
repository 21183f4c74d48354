package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sigil/internal/codec"
	"github.com/roach88/sigil/internal/schema"
	"github.com/roach88/sigil/internal/testutil"
)

func TestNewTable(t *testing.T) {
	table, err := codec.NewTable(testutil.GameSchema(t))
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())

	entries := table.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Player", entries[0].Name)
	assert.Equal(t, []byte{0x50}, entries[0].Discriminator)
	assert.Equal(t, "Event", entries[1].Name)
	assert.Equal(t, []byte{0x45, 0x01}, entries[1].Discriminator)
}

func TestNewTableRejectsBadSchema(t *testing.T) {
	// Value-recursive record type fails table construction, not use.
	s, err := schema.New(
		[]schema.TypeDef{
			{Name: "Loop", Shape: schema.StructShape{Fields: []schema.Field{
				{Name: "next", Type: schema.DefinedType{Name: "Loop"}},
			}}},
		},
		[]schema.RecordDecl{{Name: "Loop", Discriminator: []byte{1}}},
	)
	require.NoError(t, err)

	_, err = codec.NewTable(s)
	require.Error(t, err)
	assert.True(t, schema.IsSchemaError(err))
}

func TestTableLookup(t *testing.T) {
	table, err := codec.NewTable(testutil.GameSchema(t))
	require.NoError(t, err)

	entry, err := table.Lookup("Player")
	require.NoError(t, err)
	assert.Equal(t, "Player", entry.Name)

	_, err = table.Lookup("Ghost")
	require.Error(t, err)
	assert.True(t, codec.IsUnknownRecord(err))
	assert.Contains(t, err.Error(), "Ghost")
}

func TestTableMatch(t *testing.T) {
	table, err := codec.NewTable(testutil.GameSchema(t))
	require.NoError(t, err)

	entry, err := table.Match([]byte{0x45, 0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, "Event", entry.Name)

	// A one-byte buffer cannot match the two-byte Event discriminator.
	_, err = table.Match([]byte{0x45})
	require.Error(t, err)
	assert.True(t, codec.IsRecordNotFound(err))
}

func TestTableMatchErrorSamplesPrefix(t *testing.T) {
	table, err := codec.NewTable(testutil.CounterSchema(t))
	require.NoError(t, err)

	long := make([]byte, 64)
	for i := range long {
		long[i] = 0xee
	}
	_, err = table.Match(long)
	require.Error(t, err)

	var nf *codec.RecordNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Len(t, nf.Prefix, 16)
}

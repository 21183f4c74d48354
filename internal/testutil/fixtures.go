// Package testutil provides shared schema fixtures for codec tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sigil/internal/codec"
	"github.com/roach88/sigil/internal/schema"
)

// CounterSchema returns the smallest useful schema: one fixed-size
// record with a four-byte discriminator.
//
//	Counter { count: u32 }, discriminator [1 2 3 4]
func CounterSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New(
		[]schema.TypeDef{
			{
				Name: "Counter",
				Shape: schema.StructShape{Fields: []schema.Field{
					{Name: "count", Type: schema.ScalarType{Kind: schema.KindU32}},
				}},
			},
		},
		[]schema.RecordDecl{
			{Name: "Counter", Discriminator: []byte{1, 2, 3, 4}},
		},
	)
	require.NoError(t, err)
	return s
}

// GameSchema returns a schema exercising nested structs, vectors,
// options, enums and defined-type references across two records.
func GameSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New(
		[]schema.TypeDef{
			{
				Name: "Item",
				Shape: schema.StructShape{Fields: []schema.Field{
					{Name: "id", Type: schema.ScalarType{Kind: schema.KindU32}},
					{Name: "qty", Type: schema.ScalarType{Kind: schema.KindU16}},
				}},
			},
			{
				Name: "Player",
				Shape: schema.StructShape{Fields: []schema.Field{
					{Name: "name", Type: schema.StringType{}},
					{Name: "health", Type: schema.ScalarType{Kind: schema.KindU16}},
					{Name: "inventory", Type: schema.VectorType{Elem: schema.DefinedType{Name: "Item"}}},
					{Name: "guild", Type: schema.OptionType{Elem: schema.StringType{}}},
				}},
			},
			{
				Name: "Event",
				Shape: schema.EnumShape{Variants: []schema.VariantDef{
					{Name: "Spawn"},
					{Name: "Damage", Fields: []schema.Field{
						{Name: "amount", Type: schema.ScalarType{Kind: schema.KindU16}},
					}},
				}},
			},
		},
		[]schema.RecordDecl{
			{Name: "Player", Discriminator: []byte{0x50}},
			{Name: "Event", Discriminator: []byte{0x45, 0x01}},
		},
	)
	require.NoError(t, err)
	return s
}

// MustCoder builds a coder over s, failing the test on error.
func MustCoder(t *testing.T, s *schema.Schema) *codec.Coder {
	t.Helper()
	coder, err := codec.NewCoder(s)
	require.NoError(t, err)
	return coder
}

// CounterCUE is the CUE source equivalent of CounterSchema, for tests
// that go through the schema front end.
const CounterCUE = `
types: [
	{name: "Counter", struct: {fields: [{name: "count", type: "u32"}]}},
]
records: [
	{name: "Counter", discriminator: [1, 2, 3, 4]},
]
`

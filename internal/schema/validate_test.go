package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterDefs() []TypeDef {
	return []TypeDef{
		{
			Name: "Counter",
			Shape: StructShape{Fields: []Field{
				{Name: "count", Type: ScalarType{Kind: KindU32}},
			}},
		},
	}
}

func TestNewValidSchema(t *testing.T) {
	s, err := New(counterDefs(), []RecordDecl{
		{Name: "Counter", Discriminator: []byte{1, 2, 3, 4}},
	})
	require.NoError(t, err)

	def, ok := s.Def("Counter")
	require.True(t, ok)
	assert.Equal(t, "Counter", def.Name)

	rec, ok := s.Record("Counter")
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, rec.Discriminator)

	_, ok = s.Def("Missing")
	assert.False(t, ok)
	_, ok = s.Record("Missing")
	assert.False(t, ok)
}

func TestNewDuplicateTypeDefinition(t *testing.T) {
	defs := append(counterDefs(), counterDefs()...)
	_, err := New(defs, nil)
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
	assert.Contains(t, err.Error(), "duplicate type definition")
}

func TestNewDuplicateRecord(t *testing.T) {
	_, err := New(counterDefs(), []RecordDecl{
		{Name: "Counter", Discriminator: []byte{1}},
		{Name: "Counter", Discriminator: []byte{2}},
	})
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
}

func TestNewEmptyDiscriminator(t *testing.T) {
	_, err := New(counterDefs(), []RecordDecl{
		{Name: "Counter", Discriminator: nil},
	})
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
	assert.Contains(t, err.Error(), "discriminator")
}

func TestNewRecordNamesUndefinedType(t *testing.T) {
	_, err := New(counterDefs(), []RecordDecl{
		{Name: "Ghost", Discriminator: []byte{9}},
	})
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
}

func TestNewUnresolvedReference(t *testing.T) {
	defs := []TypeDef{
		{
			Name: "Wrapper",
			Shape: StructShape{Fields: []Field{
				{Name: "inner", Type: DefinedType{Name: "Missing"}},
			}},
		},
	}
	_, err := New(defs, nil)
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
}

func TestNewTransitiveUnresolvedReference(t *testing.T) {
	// The dangling reference sits inside a vector of an option; resolution
	// still has to find it.
	defs := []TypeDef{
		{
			Name: "Outer",
			Shape: StructShape{Fields: []Field{
				{Name: "items", Type: VectorType{Elem: OptionType{Elem: DefinedType{Name: "Missing"}}}},
			}},
		},
	}
	_, err := New(defs, nil)
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
}

func TestNewEnumTooManyVariants(t *testing.T) {
	variants := make([]VariantDef, 257)
	for i := range variants {
		variants[i] = VariantDef{Name: variantName(i)}
	}
	_, err := New([]TypeDef{{Name: "Big", Shape: EnumShape{Variants: variants}}}, nil)
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
}

func variantName(i int) string {
	name := []byte{'V'}
	for i > 0 || len(name) == 1 {
		name = append(name, byte('a'+i%26))
		i /= 26
	}
	return string(name)
}

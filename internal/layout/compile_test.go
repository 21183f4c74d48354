package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sigil/internal/schema"
)

func mustSchema(t *testing.T, defs []schema.TypeDef) *schema.Schema {
	t.Helper()
	s, err := schema.New(defs, nil)
	require.NoError(t, err)
	return s
}

func structDef(name string, fields ...schema.Field) schema.TypeDef {
	return schema.TypeDef{Name: name, Shape: schema.StructShape{Fields: fields}}
}

func TestCompileFixedStruct(t *testing.T) {
	s := mustSchema(t, []schema.TypeDef{
		structDef("Point",
			schema.Field{Name: "x", Type: schema.ScalarType{Kind: schema.KindI32}},
			schema.Field{Name: "y", Type: schema.ScalarType{Kind: schema.KindI32}},
			schema.Field{Name: "tag", Type: schema.ArrayType{Elem: schema.ScalarType{Kind: schema.KindU8}, Len: 8}},
		),
	})

	lay, err := NewCompiler(s).Named("Point")
	require.NoError(t, err)

	n, ok := lay.FixedSize()
	assert.True(t, ok)
	assert.Equal(t, 16, n)
	assert.Equal(t, 16, lay.MinSize())
}

func TestCompileVariableStruct(t *testing.T) {
	s := mustSchema(t, []schema.TypeDef{
		structDef("Blob",
			schema.Field{Name: "id", Type: schema.ScalarType{Kind: schema.KindU64}},
			schema.Field{Name: "data", Type: schema.BytesType{}},
			schema.Field{Name: "note", Type: schema.OptionType{Elem: schema.StringType{}}},
		),
	})

	lay, err := NewCompiler(s).Named("Blob")
	require.NoError(t, err)

	_, ok := lay.FixedSize()
	assert.False(t, ok)
	// 8 (id) + 4 (empty bytes prefix) + 1 (absent option flag)
	assert.Equal(t, 13, lay.MinSize())
}

func TestCompileAlias(t *testing.T) {
	s := mustSchema(t, []schema.TypeDef{
		{Name: "Lamports", Shape: schema.AliasShape{Of: schema.ScalarType{Kind: schema.KindU64}}},
		structDef("Account",
			schema.Field{Name: "balance", Type: schema.DefinedType{Name: "Lamports"}},
		),
	})

	lay, err := NewCompiler(s).Named("Account")
	require.NoError(t, err)

	n, ok := lay.FixedSize()
	assert.True(t, ok)
	assert.Equal(t, 8, n)
}

func TestCompileUndefinedName(t *testing.T) {
	s := mustSchema(t, []schema.TypeDef{structDef("Empty")})
	_, err := NewCompiler(s).Named("Missing")
	require.Error(t, err)
	assert.True(t, schema.IsSchemaError(err))
}

func TestCompileValueRecursionRejected(t *testing.T) {
	tests := []struct {
		name string
		defs []schema.TypeDef
	}{
		{
			"direct",
			[]schema.TypeDef{
				structDef("Node", schema.Field{Name: "next", Type: schema.DefinedType{Name: "Node"}}),
			},
		},
		{
			"through array",
			[]schema.TypeDef{
				structDef("Node", schema.Field{Name: "next", Type: schema.ArrayType{Elem: schema.DefinedType{Name: "Node"}, Len: 2}}),
			},
		},
		{
			"mutual",
			[]schema.TypeDef{
				structDef("A", schema.Field{Name: "b", Type: schema.DefinedType{Name: "B"}}),
				structDef("B", schema.Field{Name: "a", Type: schema.DefinedType{Name: "A"}}),
			},
		},
		{
			"through alias",
			[]schema.TypeDef{
				{Name: "Loop", Shape: schema.AliasShape{Of: schema.DefinedType{Name: "Loop"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustSchema(t, tt.defs)
			_, err := NewCompiler(s).Named(tt.defs[0].Name)
			require.Error(t, err)
			assert.True(t, schema.IsSchemaError(err))
			assert.Contains(t, err.Error(), "recursive")
		})
	}
}

func TestCompileGuardedRecursion(t *testing.T) {
	// Recursion through an option terminates, so the list layout compiles
	// and round-trips.
	s := mustSchema(t, []schema.TypeDef{
		structDef("Node",
			schema.Field{Name: "val", Type: schema.ScalarType{Kind: schema.KindU32}},
			schema.Field{Name: "next", Type: schema.OptionType{Elem: schema.DefinedType{Name: "Node"}}},
		),
	})

	lay, err := NewCompiler(s).Named("Node")
	require.NoError(t, err)

	_, ok := lay.FixedSize()
	assert.False(t, ok)
	assert.Equal(t, 5, lay.MinSize())

	list := schema.Struct{
		"val": schema.Uint(1),
		"next": schema.Some(schema.Struct{
			"val":  schema.Uint(2),
			"next": schema.None(),
		}),
	}
	size, err := lay.SizeOf(list)
	require.NoError(t, err)
	assert.Equal(t, 10, size)

	buf := make([]byte, size)
	n, err := lay.Put(list, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, size, n)

	back, read, err := lay.Get(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, size, read)
	assert.Equal(t, list, back)
}

func TestCompileMutualGuardedRecursion(t *testing.T) {
	s := mustSchema(t, []schema.TypeDef{
		structDef("Tree",
			schema.Field{Name: "label", Type: schema.ScalarType{Kind: schema.KindU8}},
			schema.Field{Name: "children", Type: schema.DefinedType{Name: "Forest"}},
		),
		{Name: "Forest", Shape: schema.AliasShape{Of: schema.VectorType{Elem: schema.DefinedType{Name: "Tree"}}}},
	})

	c := NewCompiler(s)
	lay, err := c.Named("Tree")
	require.NoError(t, err)

	tree := schema.Struct{
		"label": schema.Uint(1),
		"children": schema.Array{
			schema.Struct{"label": schema.Uint(2), "children": schema.Array{}},
		},
	}
	size, err := lay.SizeOf(tree)
	require.NoError(t, err)

	buf := make([]byte, size)
	_, err = lay.Put(tree, buf, 0)
	require.NoError(t, err)

	back, _, err := lay.Get(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, tree, back)

	// The second resolution hits the memoized entry.
	again, err := c.Named("Tree")
	require.NoError(t, err)
	n, err := again.SizeOf(tree)
	require.NoError(t, err)
	assert.Equal(t, size, n)
}

func TestCompileBareDescriptor(t *testing.T) {
	s := mustSchema(t, nil)
	lay, err := NewCompiler(s).Compile(schema.VectorType{Elem: schema.ScalarType{Kind: schema.KindU16}})
	require.NoError(t, err)
	assert.Equal(t, 4, lay.MinSize())
}

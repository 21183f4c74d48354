package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindTestSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := New([]TypeDef{
		{
			Name: "Item",
			Shape: StructShape{Fields: []Field{
				{Name: "id", Type: ScalarType{Kind: KindU32}},
				{Name: "qty", Type: ScalarType{Kind: KindI16}},
			}},
		},
		{
			Name: "Bag",
			Shape: StructShape{Fields: []Field{
				{Name: "label", Type: StringType{}},
				{Name: "seal", Type: BytesType{}},
				{Name: "items", Type: VectorType{Elem: DefinedType{Name: "Item"}}},
				{Name: "owner", Type: OptionType{Elem: StringType{}}},
				{Name: "total", Type: ScalarType{Kind: KindU128}},
			}},
		},
		{
			Name: "Mode",
			Shape: EnumShape{Variants: []VariantDef{
				{Name: "Off"},
				{Name: "On", Fields: []Field{
					{Name: "level", Type: ScalarType{Kind: KindU8}},
				}},
			}},
		},
	}, nil)
	require.NoError(t, err)
	return s
}

// fromJSON parses with UseNumber, the same shape CLI input takes.
func fromJSON(t *testing.T, text string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var raw any
	require.NoError(t, dec.Decode(&raw))
	return raw
}

func TestBindValueStruct(t *testing.T) {
	s := bindTestSchema(t)
	raw := fromJSON(t, `{
		"label": "loot",
		"seal": "cafe",
		"items": [{"id": 1, "qty": -3}],
		"owner": null,
		"total": "18446744073709551616"
	}`)

	v, err := BindValue(s, DefinedType{Name: "Bag"}, raw)
	require.NoError(t, err)

	want := Struct{
		"label": String("loot"),
		"seal":  Bytes{0xca, 0xfe},
		"items": Array{Struct{"id": Uint(1), "qty": Int(-3)}},
		"owner": None(),
		"total": Uint128{Hi: 1},
	}
	assert.Equal(t, want, v)
}

func TestBindValuePresentOption(t *testing.T) {
	s := bindTestSchema(t)
	raw := fromJSON(t, `{"label": "x", "seal": "", "items": [], "owner": "ana", "total": 9}`)

	v, err := BindValue(s, DefinedType{Name: "Bag"}, raw)
	require.NoError(t, err)
	assert.Equal(t, Some(String("ana")), v.(Struct)["owner"])
}

func TestBindValueVariants(t *testing.T) {
	s := bindTestSchema(t)

	v, err := BindValue(s, DefinedType{Name: "Mode"}, "Off")
	require.NoError(t, err)
	assert.Equal(t, Variant{Name: "Off"}, v)

	v, err = BindValue(s, DefinedType{Name: "Mode"}, fromJSON(t, `{"On": {"level": 3}}`))
	require.NoError(t, err)
	assert.Equal(t, Variant{Name: "On", Fields: Struct{"level": Uint(3)}}, v)
}

func TestBindValueVariantErrors(t *testing.T) {
	s := bindTestSchema(t)

	_, err := BindValue(s, DefinedType{Name: "Mode"}, "Blink")
	assert.ErrorContains(t, err, "unknown variant")

	// A payload variant cannot be named bare.
	_, err = BindValue(s, DefinedType{Name: "Mode"}, "On")
	assert.ErrorContains(t, err, "requires fields")
}

func TestBindValueBytesForms(t *testing.T) {
	s := bindTestSchema(t)

	v, err := BindValue(s, BytesType{}, "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, Bytes{0xde, 0xad, 0xbe, 0xef}, v)

	v, err = BindValue(s, BytesType{}, fromJSON(t, `[1, 2, 255]`))
	require.NoError(t, err)
	assert.Equal(t, Bytes{1, 2, 255}, v)

	_, err = BindValue(s, BytesType{}, "zz")
	assert.Error(t, err)
	_, err = BindValue(s, BytesType{}, fromJSON(t, `[256]`))
	assert.Error(t, err)
}

func TestBindValueScalarErrors(t *testing.T) {
	s := bindTestSchema(t)

	_, err := BindValue(s, ScalarType{Kind: KindU32}, fromJSON(t, `-1`))
	assert.Error(t, err)
	_, err = BindValue(s, ScalarType{Kind: KindI16}, "many")
	assert.Error(t, err)
	_, err = BindValue(s, ScalarType{Kind: KindBool}, fromJSON(t, `1`))
	assert.Error(t, err)
}

func TestBindValueUnresolvedReference(t *testing.T) {
	s := bindTestSchema(t)
	_, err := BindValue(s, DefinedType{Name: "Missing"}, nil)
	assert.True(t, IsSchemaError(err))
}

func TestUnbindRoundTrip(t *testing.T) {
	v := Struct{
		"label": String("loot"),
		"seal":  Bytes{0xca, 0xfe},
		"items": Array{Struct{"id": Uint(1), "qty": Int(-3)}},
		"owner": None(),
		"total": Uint128{Hi: 1},
	}

	raw := Unbind(v)
	s := bindTestSchema(t)
	back, err := BindValue(s, DefinedType{Name: "Bag"}, raw)
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

func TestUnbindVariant(t *testing.T) {
	assert.Equal(t, "Off", Unbind(Variant{Name: "Off"}))
	assert.Equal(t,
		map[string]any{"On": map[string]any{"level": uint64(3)}},
		Unbind(Variant{Name: "On", Fields: Struct{"level": Uint(3)}}))
}

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"uint", Uint(42), "42"},
		{"max u64", Uint(18446744073709551615), "18446744073709551615"},
		{"int", Int(-100), "-100"},
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"bytes", Bytes{0xde, 0xad}, `"dead"`},
		{"empty bytes", Bytes{}, `""`},
		{"u128", Uint128{Hi: 1}, `"18446744073709551616"`},
		{"i128", Int128{Hi: 0xffffffffffffffff, Lo: 0xffffffffffffffff}, `"-1"`},
		{"empty array", Array{}, "[]"},
		{"array", Array{Uint(1), Uint(2)}, "[1,2]"},
		{"empty struct", Struct{}, "{}"},
		{"absent option", None(), "null"},
		{"present option", Some(Uint(7)), "7"},
		{"dataless variant", Variant{Name: "Off"}, `"Off"`},
		{"payload variant", Variant{Name: "On", Fields: Struct{"level": Uint(3)}}, `{"On":{"level":3}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := Struct{
		"zebra": Uint(1),
		"alpha": Uint(2),
		"beta":  Uint(3),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as the surrogate pair D83D DE00 in UTF-16, which
	// sorts before U+FF01. In UTF-8 byte order the comparison flips, so
	// this distinguishes the two orderings.
	obj := Struct{
		"\U0001F600": Uint(1),
		"！":     Uint(2),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":1,\"！\":2}", string(result))
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	result, err := MarshalCanonical(String("<a>&</a>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a>&</a>"`, string(result))
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	// "e" followed by combining acute accent normalizes to precomposed
	// U+00E9.
	result, err := MarshalCanonical(String("e\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(result))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	// U+2028 stays literal; a real backslash followed by the text "u2028"
	// does not get collapsed into the separator character.
	result, err := MarshalCanonical(String("a\u2028b"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(result))

	result, err = MarshalCanonical(String("a\\u2028b"))
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(result))
}

func TestMarshalCanonicalFloatsForbidden(t *testing.T) {
	_, err := MarshalCanonical(Float(1.5))
	assert.ErrorContains(t, err, "float")

	_, err = MarshalCanonical(Struct{"x": Float(1.5)})
	assert.Error(t, err)
}

func TestMarshalCanonicalNilValue(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)
}

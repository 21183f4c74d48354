package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sigil/internal/codec"
	"github.com/roach88/sigil/internal/layout"
	"github.com/roach88/sigil/internal/schema"
	"github.com/roach88/sigil/internal/testutil"
)

func TestEncodeCounter(t *testing.T) {
	coder := testutil.MustCoder(t, testutil.CounterSchema(t))

	encoded, err := coder.Encode("Counter", schema.Struct{"count": schema.Uint(7)})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 7, 0, 0, 0}, encoded)

	v, err := coder.Decode("Counter", encoded)
	require.NoError(t, err)
	assert.Equal(t, schema.Struct{"count": schema.Uint(7)}, v)
}

func TestEncodeUnknownRecord(t *testing.T) {
	coder := testutil.MustCoder(t, testutil.CounterSchema(t))
	_, err := coder.Encode("Ghost", schema.Struct{})
	require.Error(t, err)
	assert.True(t, codec.IsUnknownRecord(err))
}

func TestEncodeValueMismatch(t *testing.T) {
	coder := testutil.MustCoder(t, testutil.CounterSchema(t))
	_, err := coder.Encode("Counter", schema.Struct{"count": schema.String("seven")})
	require.Error(t, err)
	assert.True(t, layout.IsValueError(err))
}

func TestEncodeVariableLengthValue(t *testing.T) {
	coder := testutil.MustCoder(t, testutil.GameSchema(t))

	player := schema.Struct{
		"name":   schema.String("ana"),
		"health": schema.Uint(100),
		"inventory": schema.Array{
			schema.Struct{"id": schema.Uint(1), "qty": schema.Uint(2)},
		},
		"guild": schema.Some(schema.String("owls")),
	}

	encoded, err := coder.Encode("Player", player)
	require.NoError(t, err)

	// disc(1) + name(4+3) + health(2) + inventory(4 + 6) + guild(1 + 4+4)
	assert.Len(t, encoded, 29)

	size, err := coder.SizeOf("Player", player)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), size)

	back, err := coder.Decode("Player", encoded)
	require.NoError(t, err)
	assert.Equal(t, player, back)
}

func TestDecodeDiscriminatorMismatch(t *testing.T) {
	coder := testutil.MustCoder(t, testutil.CounterSchema(t))

	tests := []struct {
		name string
		data []byte
	}{
		{"wrong prefix", []byte{9, 9, 9, 9, 7, 0, 0, 0}},
		{"truncated prefix", []byte{1, 2}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := coder.Decode("Counter", tt.data)
			require.Error(t, err)
			assert.True(t, codec.IsDiscriminatorMismatch(err))
		})
	}
}

func TestDecodeTrailingBytesIgnored(t *testing.T) {
	coder := testutil.MustCoder(t, testutil.CounterSchema(t))
	data := []byte{1, 2, 3, 4, 7, 0, 0, 0, 0xaa, 0xbb}
	v, err := coder.Decode("Counter", data)
	require.NoError(t, err)
	assert.Equal(t, schema.Struct{"count": schema.Uint(7)}, v)
}

func TestDecodeUncheckedSkipsPrefix(t *testing.T) {
	coder := testutil.MustCoder(t, testutil.CounterSchema(t))

	// Foreign prefix, same length: decode succeeds on the body alone.
	data := []byte{9, 9, 9, 9, 7, 0, 0, 0}
	v, err := coder.DecodeUnchecked("Counter", data)
	require.NoError(t, err)
	assert.Equal(t, schema.Struct{"count": schema.Uint(7)}, v)

	// The body still has to parse.
	_, err = coder.DecodeUnchecked("Counter", []byte{9, 9, 9, 9, 7})
	require.Error(t, err)
	assert.True(t, layout.IsDecodeError(err))
}

func TestDecodeAny(t *testing.T) {
	coder := testutil.MustCoder(t, testutil.GameSchema(t))

	encoded, err := coder.Encode("Event", schema.Variant{Name: "Spawn"})
	require.NoError(t, err)

	name, v, err := coder.DecodeAny(encoded)
	require.NoError(t, err)
	assert.Equal(t, "Event", name)
	assert.Equal(t, schema.Variant{Name: "Spawn"}, v)
}

func TestDecodeAnyNoMatch(t *testing.T) {
	coder := testutil.MustCoder(t, testutil.GameSchema(t))
	_, _, err := coder.DecodeAny([]byte{0xff, 0xff})
	require.Error(t, err)
	assert.True(t, codec.IsRecordNotFound(err))
}

func TestDecodeAnyFirstDeclaredWins(t *testing.T) {
	s, err := schema.New(
		[]schema.TypeDef{
			{Name: "Short", Shape: schema.StructShape{Fields: []schema.Field{
				{Name: "a", Type: schema.ScalarType{Kind: schema.KindU8}},
			}}},
			{Name: "Long", Shape: schema.StructShape{Fields: []schema.Field{
				{Name: "b", Type: schema.ScalarType{Kind: schema.KindU8}},
			}}},
		},
		[]schema.RecordDecl{
			{Name: "Short", Discriminator: []byte{7}},
			{Name: "Long", Discriminator: []byte{7, 7}},
		},
	)
	require.NoError(t, err)
	coder, err := codec.NewCoder(s)
	require.NoError(t, err)

	// The buffer matches both discriminators; the first declaration wins
	// on every call.
	data := []byte{7, 7, 42}
	for i := 0; i < 3; i++ {
		name, v, err := coder.DecodeAny(data)
		require.NoError(t, err)
		assert.Equal(t, "Short", name)
		assert.Equal(t, schema.Struct{"a": schema.Uint(7)}, v)
	}
}

func TestSize(t *testing.T) {
	coder := testutil.MustCoder(t, testutil.GameSchema(t))

	// Counter-style fixed layouts report the exact encoded size.
	fixed := testutil.MustCoder(t, testutil.CounterSchema(t))
	n, err := fixed.Size("Counter")
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	// Variable layouts report discriminator plus minimum body size, a
	// lower bound on any real encoding.
	n, err = coder.Size("Player")
	require.NoError(t, err)
	// disc(1) + name(4) + health(2) + inventory(4) + guild(1)
	assert.Equal(t, 12, n)

	encoded, err := coder.Encode("Player", schema.Struct{
		"name":      schema.String(""),
		"health":    schema.Uint(0),
		"inventory": schema.Array{},
		"guild":     schema.None(),
	})
	require.NoError(t, err)
	assert.Equal(t, n, len(encoded))

	_, err = coder.Size("Ghost")
	assert.True(t, codec.IsUnknownRecord(err))
}

func TestPrefixFilter(t *testing.T) {
	coder := testutil.MustCoder(t, testutil.CounterSchema(t))

	f, err := coder.PrefixFilter("Counter")
	require.NoError(t, err)
	assert.Equal(t, 0, f.Offset)
	assert.Equal(t, []byte{1, 2, 3, 4}, f.Pattern)

	f, err = coder.PrefixFilter("Counter", 7, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Offset)
	assert.Equal(t, []byte{1, 2, 3, 4, 7, 0}, f.Pattern)

	_, err = coder.PrefixFilter("Ghost")
	assert.True(t, codec.IsUnknownRecord(err))
}

func TestFilterMarshalJSON(t *testing.T) {
	f := codec.Filter{Offset: 0, Pattern: []byte{0x01, 0xff}}
	data, err := f.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"offset":0,"pattern":"01ff"}`, string(data))
}

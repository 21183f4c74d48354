package schema

import (
	"fmt"
	"math/big"
)

// Value is a sealed interface over the kinds a decoded value can take.
// Only the types in this file implement it. Values are plain data: the
// codec compares and copies them but never mutates a caller's value.
//
// Canonical forms (what decode produces, and what encode round-trips):
//   - unsigned scalars up to u64 -> Uint
//   - signed scalars up to i64   -> Int
//   - u128 / i128                -> Uint128 / Int128
//   - f32 / f64                  -> Float
//   - bytes, and u8 arrays       -> Bytes
//   - string                     -> String
//   - arrays and vectors         -> Array (except u8 element type)
//   - options                    -> Option
//   - structs                    -> Struct
//   - enums                      -> Variant
type Value interface {
	value()
}

// Bool is a boolean value.
type Bool bool

// Uint is an unsigned integer value for widths up to 64 bits.
type Uint uint64

// Int is a signed integer value for widths up to 64 bits.
type Int int64

// Float is a floating-point value (both f32 and f64).
type Float float64

// Uint128 is an unsigned 128-bit integer in hi/lo halves.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// Int128 is a signed 128-bit integer in two's complement hi/lo halves.
type Int128 struct {
	Hi uint64
	Lo uint64
}

// Bytes is a byte blob value.
type Bytes []byte

// String is a UTF-8 string value.
type String string

// Array is an ordered element list, used for both fixed arrays and
// variable-length vectors.
type Array []Value

// Struct maps field names to field values.
type Struct map[string]Value

// Option is an optional value. Elem is nil when absent.
type Option struct {
	Present bool
	Elem    Value
}

// Variant is an enum value: the variant name plus its payload fields.
// Fields is nil for dataless variants.
type Variant struct {
	Name   string
	Fields Struct
}

func (Bool) value()    {}
func (Uint) value()    {}
func (Int) value()     {}
func (Float) value()   {}
func (Uint128) value() {}
func (Int128) value()  {}
func (Bytes) value()   {}
func (String) value()  {}
func (Array) value()   {}
func (Struct) value()  {}
func (Option) value()  {}
func (Variant) value() {}

// Some wraps a value in a present Option.
func Some(v Value) Option {
	return Option{Present: true, Elem: v}
}

// None is the absent Option.
func None() Option {
	return Option{}
}

var two64 = new(big.Int).Lsh(big.NewInt(1), 64)

// Big returns the value as an arbitrary-precision integer.
func (v Uint128) Big() *big.Int {
	n := new(big.Int).SetUint64(v.Hi)
	n.Mul(n, two64)
	return n.Add(n, new(big.Int).SetUint64(v.Lo))
}

// String formats the value in decimal.
func (v Uint128) String() string {
	return v.Big().String()
}

// Big returns the value as an arbitrary-precision integer, interpreting
// the halves as two's complement.
func (v Int128) Big() *big.Int {
	n := Uint128(v).Big()
	if v.Hi>>63 == 1 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	return n
}

// String formats the value in decimal.
func (v Int128) String() string {
	return v.Big().String()
}

// ParseUint128 parses a decimal string into a Uint128.
func ParseUint128(s string) (Uint128, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 || n.BitLen() > 128 {
		return Uint128{}, fmt.Errorf("invalid u128 %q", s)
	}
	return Uint128{
		Hi: new(big.Int).Rsh(n, 64).Uint64(),
		Lo: new(big.Int).And(n, new(big.Int).Sub(two64, big.NewInt(1))).Uint64(),
	}, nil
}

// ParseInt128 parses a decimal string into a two's complement Int128.
func ParseInt128(s string) (Int128, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int128{}, fmt.Errorf("invalid i128 %q", s)
	}
	bound := new(big.Int).Lsh(big.NewInt(1), 127)
	if n.Cmp(bound) >= 0 || n.Cmp(new(big.Int).Neg(bound)) < 0 {
		return Int128{}, fmt.Errorf("i128 out of range: %s", s)
	}
	if n.Sign() < 0 {
		n = new(big.Int).Add(n, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	u, err := ParseUint128(n.String())
	if err != nil {
		return Int128{}, err
	}
	return Int128(u), nil
}

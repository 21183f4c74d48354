package schema

import "fmt"

// ScalarKind identifies a fixed-width primitive scalar.
type ScalarKind string

const (
	KindBool ScalarKind = "bool"
	KindU8   ScalarKind = "u8"
	KindU16  ScalarKind = "u16"
	KindU32  ScalarKind = "u32"
	KindU64  ScalarKind = "u64"
	KindU128 ScalarKind = "u128"
	KindI8   ScalarKind = "i8"
	KindI16  ScalarKind = "i16"
	KindI32  ScalarKind = "i32"
	KindI64  ScalarKind = "i64"
	KindI128 ScalarKind = "i128"
	KindF32  ScalarKind = "f32"
	KindF64  ScalarKind = "f64"
)

// scalarWidths maps each scalar kind to its encoded byte width.
// Widths are part of the binary contract and never vary.
var scalarWidths = map[ScalarKind]int{
	KindBool: 1,
	KindU8:   1, KindI8: 1,
	KindU16: 2, KindI16: 2,
	KindU32: 4, KindI32: 4,
	KindU64: 8, KindI64: 8,
	KindU128: 16, KindI128: 16,
	KindF32: 4, KindF64: 8,
}

// Valid reports whether k is a recognized scalar kind.
func (k ScalarKind) Valid() bool {
	_, ok := scalarWidths[k]
	return ok
}

// Width returns the encoded byte width of the scalar.
// Panics on an unrecognized kind; descriptors are validated at load time.
func (k ScalarKind) Width() int {
	w, ok := scalarWidths[k]
	if !ok {
		panic(fmt.Sprintf("schema: unknown scalar kind %q", k))
	}
	return w
}

// Signed reports whether k is a signed integer kind.
func (k ScalarKind) Signed() bool {
	switch k {
	case KindI8, KindI16, KindI32, KindI64, KindI128:
		return true
	}
	return false
}

// Float reports whether k is a floating-point kind.
func (k ScalarKind) Float() bool {
	return k == KindF32 || k == KindF64
}

// TypeDesc describes the shape of an encodable type.
// Sealed - only the *Type structs in this package implement it.
// Descriptors are immutable once parsed from a schema.
type TypeDesc interface {
	typeDesc()
}

// ScalarType is a fixed-width primitive (bool, sized ints, floats).
type ScalarType struct {
	Kind ScalarKind
}

// BytesType is a variable-length byte blob: u32 little-endian length
// prefix followed by the raw bytes.
type BytesType struct{}

// StringType is a variable-length UTF-8 string: u32 little-endian length
// prefix followed by the raw bytes. No normalization is applied on the
// wire - the bytes round-trip exactly.
type StringType struct{}

// ArrayType is a fixed-size array: Len elements encoded in order with no
// length prefix.
type ArrayType struct {
	Elem TypeDesc
	Len  int
}

// VectorType is a variable-length sequence: u32 little-endian length
// prefix followed by that many elements.
type VectorType struct {
	Elem TypeDesc
}

// OptionType is an optional value: a one-byte presence flag (0 = absent,
// 1 = present) followed by the inner encoding only when present.
type OptionType struct {
	Elem TypeDesc
}

// DefinedType is a reference to a named type definition. References may
// be mutually recursive as long as every cycle passes through an option
// or vector.
type DefinedType struct {
	Name string
}

func (ScalarType) typeDesc()  {}
func (BytesType) typeDesc()   {}
func (StringType) typeDesc()  {}
func (ArrayType) typeDesc()   {}
func (VectorType) typeDesc()  {}
func (OptionType) typeDesc()  {}
func (DefinedType) typeDesc() {}

// Shape is the body of a named type definition.
// Sealed - only StructShape, EnumShape and AliasShape implement it.
type Shape interface {
	shape()
}

// Field is a named struct or variant payload field.
type Field struct {
	Name string
	Type TypeDesc
}

// StructShape is an ordered field list. Field order is part of the
// binary contract: fields encode strictly in declaration order with no
// padding.
type StructShape struct {
	Fields []Field
}

// VariantDef is one enum variant. Fields is nil for dataless variants.
type VariantDef struct {
	Name   string
	Fields []Field
}

// EnumShape is an ordered variant list. The variant index is the wire
// tag, so variant order is part of the binary contract.
type EnumShape struct {
	Variants []VariantDef
}

// AliasShape names a bare type descriptor.
type AliasShape struct {
	Of TypeDesc
}

func (StructShape) shape() {}
func (EnumShape) shape()   {}
func (AliasShape) shape()  {}

// TypeDef is a named type definition, unique within a schema.
type TypeDef struct {
	Name  string
	Shape Shape
}

// RecordDecl pairs a record name with its externally supplied
// discriminator. The discriminator is opaque: it is compared
// byte-for-byte as a prefix and carries no structural meaning here.
// Discriminator length is per-record, not globally fixed.
type RecordDecl struct {
	Name          string
	Discriminator []byte
}

// Schema is the full set of named type definitions plus the record
// declarations. Immutable for the lifetime of any coder built from it.
type Schema struct {
	Defs    []TypeDef
	Records []RecordDecl

	byName map[string]int // def name -> index into Defs
}

// New builds a Schema from definitions and record declarations and
// validates it. Returns a *SchemaError if definitions collide, a record
// names an undefined type, or any type reference cannot be resolved
// (including transitively).
func New(defs []TypeDef, records []RecordDecl) (*Schema, error) {
	s := &Schema{
		Defs:    defs,
		Records: records,
		byName:  make(map[string]int, len(defs)),
	}
	for i, def := range defs {
		if _, dup := s.byName[def.Name]; dup {
			return nil, &SchemaError{Type: def.Name, Message: "duplicate type definition"}
		}
		s.byName[def.Name] = i
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Def returns the named type definition, if present.
func (s *Schema) Def(name string) (*TypeDef, bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return &s.Defs[i], true
}

// Record returns the record declaration, if present. Lookup is by first
// declaration; duplicate record names are rejected by Validate.
func (s *Schema) Record(name string) (*RecordDecl, bool) {
	for i := range s.Records {
		if s.Records[i].Name == name {
			return &s.Records[i], true
		}
	}
	return nil, false
}

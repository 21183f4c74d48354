package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/sigil/internal/schema"
)

// CompileSchema parses a CUE value holding a schema document into a
// validated schema.Schema. Uses the CUE SDK's Go API directly (not a
// CLI subprocess).
//
// The CUE value is the document root, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`types: [...], records: [...]`)
//	s, err := CompileSchema(v)
//
// Structural inconsistencies (unresolved references, records naming
// undefined types) surface as *schema.SchemaError; malformed documents
// surface as *CompileError with position info.
func CompileSchema(v cue.Value) (*schema.Schema, error) {
	defs, records, err := ParseSchema(v)
	if err != nil {
		return nil, err
	}
	return schema.New(defs, records)
}

// ParseSchema parses the document without cross-checking it, so callers
// that want to collect every structural finding (see Validate) can parse
// schemas that schema.New would reject.
func ParseSchema(v cue.Value) ([]schema.TypeDef, []schema.RecordDecl, error) {
	if err := v.Err(); err != nil {
		return nil, nil, formatCUEError(err)
	}

	var defs []schema.TypeDef
	typesVal := v.LookupPath(cue.ParsePath("types"))
	if typesVal.Exists() {
		iter, err := typesVal.List()
		if err != nil {
			return nil, nil, formatCUEError(err)
		}
		for iter.Next() {
			def, err := parseTypeDef(iter.Value())
			if err != nil {
				return nil, nil, err
			}
			defs = append(defs, def)
		}
	}

	var records []schema.RecordDecl
	recordsVal := v.LookupPath(cue.ParsePath("records"))
	if recordsVal.Exists() {
		iter, err := recordsVal.List()
		if err != nil {
			return nil, nil, formatCUEError(err)
		}
		for iter.Next() {
			rec, err := parseRecord(iter.Value())
			if err != nil {
				return nil, nil, err
			}
			records = append(records, rec)
		}
	}

	return defs, records, nil
}

func parseTypeDef(v cue.Value) (schema.TypeDef, error) {
	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return schema.TypeDef{}, &CompileError{
			Field:   "types.name",
			Message: "type definition requires a name",
			Pos:     v.Pos(),
		}
	}

	if sv := v.LookupPath(cue.ParsePath("struct")); sv.Exists() {
		fields, err := parseFields(sv.LookupPath(cue.ParsePath("fields")), name)
		if err != nil {
			return schema.TypeDef{}, err
		}
		return schema.TypeDef{Name: name, Shape: schema.StructShape{Fields: fields}}, nil
	}

	if ev := v.LookupPath(cue.ParsePath("enum")); ev.Exists() {
		variants, err := parseVariants(ev.LookupPath(cue.ParsePath("variants")), name)
		if err != nil {
			return schema.TypeDef{}, err
		}
		return schema.TypeDef{Name: name, Shape: schema.EnumShape{Variants: variants}}, nil
	}

	if av := v.LookupPath(cue.ParsePath("alias")); av.Exists() {
		of, err := parseTypeDesc(av, name+".alias")
		if err != nil {
			return schema.TypeDef{}, err
		}
		return schema.TypeDef{Name: name, Shape: schema.AliasShape{Of: of}}, nil
	}

	return schema.TypeDef{}, &CompileError{
		Field:   "types." + name,
		Message: "definition requires a struct, enum or alias body",
		Pos:     v.Pos(),
	}
}

func parseFields(v cue.Value, owner string) ([]schema.Field, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var fields []schema.Field
	for iter.Next() {
		fv := iter.Value()
		name, err := fv.LookupPath(cue.ParsePath("name")).String()
		if err != nil {
			return nil, &CompileError{
				Field:   owner + ".fields",
				Message: "field requires a name",
				Pos:     fv.Pos(),
			}
		}
		desc, err := parseTypeDesc(fv.LookupPath(cue.ParsePath("type")), owner+"."+name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, schema.Field{Name: name, Type: desc})
	}
	return fields, nil
}

func parseVariants(v cue.Value, owner string) ([]schema.VariantDef, error) {
	if !v.Exists() {
		return nil, &CompileError{
			Field:   owner + ".variants",
			Message: "enum requires variants",
			Pos:     v.Pos(),
		}
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var variants []schema.VariantDef
	for iter.Next() {
		vv := iter.Value()
		name, err := vv.LookupPath(cue.ParsePath("name")).String()
		if err != nil {
			return nil, &CompileError{
				Field:   owner + ".variants",
				Message: "variant requires a name",
				Pos:     vv.Pos(),
			}
		}
		fields, err := parseFields(vv.LookupPath(cue.ParsePath("fields")), owner+"."+name)
		if err != nil {
			return nil, err
		}
		variants = append(variants, schema.VariantDef{Name: name, Fields: fields})
	}
	return variants, nil
}

func parseRecord(v cue.Value) (schema.RecordDecl, error) {
	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return schema.RecordDecl{}, &CompileError{
			Field:   "records.name",
			Message: "record declaration requires a name",
			Pos:     v.Pos(),
		}
	}

	discVal := v.LookupPath(cue.ParsePath("discriminator"))
	if !discVal.Exists() {
		return schema.RecordDecl{}, &CompileError{
			Field:   "records." + name,
			Message: "record requires discriminator bytes",
			Pos:     v.Pos(),
		}
	}
	iter, err := discVal.List()
	if err != nil {
		return schema.RecordDecl{}, formatCUEError(err)
	}
	var disc []byte
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil {
			return schema.RecordDecl{}, formatCUEError(err)
		}
		if n < 0 || n > 0xff {
			return schema.RecordDecl{}, &CompileError{
				Field:   "records." + name,
				Message: fmt.Sprintf("discriminator byte %d out of range", n),
				Pos:     discVal.Pos(),
			}
		}
		disc = append(disc, byte(n))
	}
	return schema.RecordDecl{Name: name, Discriminator: disc}, nil
}

func parseTypeDesc(v cue.Value, field string) (schema.TypeDesc, error) {
	if !v.Exists() {
		return nil, &CompileError{
			Field:   field,
			Message: "missing type descriptor",
			Pos:     v.Pos(),
		}
	}

	// Primitive names are bare strings.
	if s, err := v.String(); err == nil {
		switch s {
		case "bytes":
			return schema.BytesType{}, nil
		case "string":
			return schema.StringType{}, nil
		default:
			kind := schema.ScalarKind(s)
			if !kind.Valid() {
				return nil, &CompileError{
					Field:   field,
					Message: fmt.Sprintf("unknown primitive %q (defined types use {defined: name})", s),
					Pos:     v.Pos(),
				}
			}
			return schema.ScalarType{Kind: kind}, nil
		}
	}

	if d := v.LookupPath(cue.ParsePath("vec")); d.Exists() {
		elem, err := parseTypeDesc(d, field+".vec")
		if err != nil {
			return nil, err
		}
		return schema.VectorType{Elem: elem}, nil
	}

	if d := v.LookupPath(cue.ParsePath("option")); d.Exists() {
		elem, err := parseTypeDesc(d, field+".option")
		if err != nil {
			return nil, err
		}
		return schema.OptionType{Elem: elem}, nil
	}

	if d := v.LookupPath(cue.ParsePath("array")); d.Exists() {
		elem, err := parseTypeDesc(d.LookupPath(cue.ParsePath("elem")), field+".array.elem")
		if err != nil {
			return nil, err
		}
		n, err := d.LookupPath(cue.ParsePath("len")).Int64()
		if err != nil {
			return nil, &CompileError{
				Field:   field + ".array",
				Message: "array requires an integer len",
				Pos:     d.Pos(),
			}
		}
		if n < 0 {
			return nil, &CompileError{
				Field:   field + ".array",
				Message: "array len must not be negative",
				Pos:     d.Pos(),
			}
		}
		return schema.ArrayType{Elem: elem, Len: int(n)}, nil
	}

	if d := v.LookupPath(cue.ParsePath("defined")); d.Exists() {
		name, err := d.String()
		if err != nil {
			return nil, &CompileError{
				Field:   field + ".defined",
				Message: "defined reference must be a type name",
				Pos:     d.Pos(),
			}
		}
		return schema.DefinedType{Name: name}, nil
	}

	return nil, &CompileError{
		Field:   field,
		Message: "unrecognized type descriptor",
		Pos:     v.Pos(),
	}
}

package schema

// Validate checks structural consistency: every record declaration must
// resolve to exactly one type definition, record names must not collide,
// and every defined-type reference must resolve, transitively through
// struct fields, enum payloads, aliases, and composite element types.
//
// Validate does not reject value-recursive definitions; that requires
// layout knowledge and is enforced when layouts are compiled.
func (s *Schema) Validate() error {
	seen := make(map[string]bool, len(s.Records))
	for _, rec := range s.Records {
		if seen[rec.Name] {
			return &SchemaError{Record: rec.Name, Message: "duplicate record declaration"}
		}
		seen[rec.Name] = true
		if len(rec.Discriminator) == 0 {
			return &SchemaError{Record: rec.Name, Message: "empty discriminator"}
		}
		if _, ok := s.Def(rec.Name); !ok {
			return &SchemaError{Record: rec.Name, Message: "record names undefined type"}
		}
	}
	for _, def := range s.Defs {
		if err := s.checkShape(def.Name, def.Shape); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) checkShape(owner string, sh Shape) error {
	switch v := sh.(type) {
	case StructShape:
		return s.checkFields(owner, v.Fields)
	case EnumShape:
		if len(v.Variants) == 0 {
			return &SchemaError{Type: owner, Message: "enum has no variants"}
		}
		if len(v.Variants) > 256 {
			return &SchemaError{Type: owner, Message: "enum exceeds 256 variants"}
		}
		for _, variant := range v.Variants {
			if err := s.checkFields(owner, variant.Fields); err != nil {
				return err
			}
		}
		return nil
	case AliasShape:
		return s.checkDesc(owner, v.Of)
	case nil:
		return &SchemaError{Type: owner, Message: "definition has no shape"}
	default:
		return &SchemaError{Type: owner, Message: "unrecognized shape"}
	}
}

func (s *Schema) checkFields(owner string, fields []Field) error {
	names := make(map[string]bool, len(fields))
	for _, f := range fields {
		if names[f.Name] {
			return &SchemaError{Type: owner, Message: "duplicate field " + f.Name}
		}
		names[f.Name] = true
		if err := s.checkDesc(owner, f.Type); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) checkDesc(owner string, t TypeDesc) error {
	switch v := t.(type) {
	case ScalarType:
		if !v.Kind.Valid() {
			return &SchemaError{Type: owner, Message: "unknown scalar kind " + string(v.Kind)}
		}
		return nil
	case BytesType, StringType:
		return nil
	case ArrayType:
		if v.Len < 0 {
			return &SchemaError{Type: owner, Message: "negative array length"}
		}
		return s.checkDesc(owner, v.Elem)
	case VectorType:
		return s.checkDesc(owner, v.Elem)
	case OptionType:
		return s.checkDesc(owner, v.Elem)
	case DefinedType:
		if _, ok := s.Def(v.Name); !ok {
			return &SchemaError{Type: v.Name, Message: "unresolved type reference"}
		}
		return nil
	case nil:
		return &SchemaError{Type: owner, Message: "missing type descriptor"}
	default:
		return &SchemaError{Type: owner, Message: "unrecognized type descriptor"}
	}
}

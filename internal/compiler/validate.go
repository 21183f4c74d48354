package compiler

import (
	"bytes"
	"fmt"

	"github.com/roach88/sigil/internal/layout"
	"github.com/roach88/sigil/internal/schema"
)

// Validate collects every structural problem in a parsed (but not yet
// schema.New-validated) definition/record set. Unlike schema.Validate it
// does not fail fast; the CLI uses it to report all findings at once.
func Validate(defs []schema.TypeDef, records []schema.RecordDecl) []ValidationError {
	var findings []ValidationError

	defined := make(map[string]bool, len(defs))
	for _, def := range defs {
		if defined[def.Name] {
			findings = append(findings, ValidationError{
				Field:   "types." + def.Name,
				Message: "duplicate type definition",
				Code:    ErrDuplicateType,
			})
		}
		defined[def.Name] = true
	}

	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if seen[rec.Name] {
			findings = append(findings, ValidationError{
				Field:   "records." + rec.Name,
				Message: "duplicate record declaration",
				Code:    ErrDuplicateRecord,
			})
		}
		seen[rec.Name] = true
		if len(rec.Discriminator) == 0 {
			findings = append(findings, ValidationError{
				Field:   "records." + rec.Name,
				Message: "empty discriminator",
				Code:    ErrEmptyDiscriminator,
			})
		}
		if !defined[rec.Name] {
			findings = append(findings, ValidationError{
				Field:   "records." + rec.Name,
				Message: "record names undefined type",
				Code:    ErrRecordUndefined,
			})
		}
	}

	for _, def := range defs {
		findings = append(findings, checkRefs(def, defined)...)
	}

	// Value-recursion needs a consistent schema to detect; skip the
	// layout pass when structural findings already exist.
	if len(findings) > 0 {
		return findings
	}
	s, err := schema.New(defs, records)
	if err != nil {
		findings = append(findings, ValidationError{
			Field:   "schema",
			Message: err.Error(),
			Code:    ErrUnresolvedType,
		})
		return findings
	}
	compiler := layout.NewCompiler(s)
	for _, def := range defs {
		if _, err := compiler.Named(def.Name); err != nil {
			findings = append(findings, ValidationError{
				Field:   "types." + def.Name,
				Message: err.Error(),
				Code:    ErrValueRecursive,
			})
		}
	}
	return findings
}

func checkRefs(def schema.TypeDef, defined map[string]bool) []ValidationError {
	var findings []ValidationError
	walk := func(owner string, t schema.TypeDesc) {
		for _, name := range referencedNames(t) {
			if !defined[name] {
				findings = append(findings, ValidationError{
					Field:   owner,
					Message: fmt.Sprintf("reference to undefined type %q", name),
					Code:    ErrUnresolvedType,
				})
			}
		}
	}
	switch sh := def.Shape.(type) {
	case schema.StructShape:
		for _, f := range sh.Fields {
			walk("types."+def.Name+"."+f.Name, f.Type)
		}
	case schema.EnumShape:
		for _, v := range sh.Variants {
			for _, f := range v.Fields {
				walk("types."+def.Name+"."+v.Name+"."+f.Name, f.Type)
			}
		}
	case schema.AliasShape:
		walk("types."+def.Name, sh.Of)
	}
	return findings
}

// referencedNames collects defined-type names reachable from t without
// resolving them.
func referencedNames(t schema.TypeDesc) []string {
	switch d := t.(type) {
	case schema.DefinedType:
		return []string{d.Name}
	case schema.ArrayType:
		return referencedNames(d.Elem)
	case schema.VectorType:
		return referencedNames(d.Elem)
	case schema.OptionType:
		return referencedNames(d.Elem)
	default:
		return nil
	}
}

// ShadowWarnings reports discriminator collisions between records. The
// schema does not guarantee discriminator uniqueness, and identify-by-
// discriminator resolves ties by declaration order; these findings are
// advisory so schema authors can avoid depending on that tie-break.
func ShadowWarnings(s *schema.Schema) []ValidationError {
	var findings []ValidationError
	for i := range s.Records {
		for j := i + 1; j < len(s.Records); j++ {
			earlier, later := s.Records[i], s.Records[j]
			if !bytes.HasPrefix(later.Discriminator, earlier.Discriminator) {
				continue
			}
			code := WarnShadowedDiscriminator
			msg := fmt.Sprintf("discriminator of %q is a prefix of %q; %q is unreachable via identify", earlier.Name, later.Name, later.Name)
			if bytes.Equal(later.Discriminator, earlier.Discriminator) {
				code = WarnDuplicateDiscriminator
				msg = fmt.Sprintf("records %q and %q share a discriminator; identify always resolves to %q", earlier.Name, later.Name, earlier.Name)
			}
			findings = append(findings, ValidationError{
				Field:   "records." + later.Name,
				Message: msg,
				Code:    code,
			})
		}
	}
	return findings
}

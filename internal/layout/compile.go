package layout

import (
	"fmt"

	"github.com/roach88/sigil/internal/schema"
)

// namedEntry is the compiler cache slot for one named type. body is nil
// while the type's own subtree is being compiled; refLayouts created for
// recursive references observe the final body once compilation returns.
type namedEntry struct {
	name string
	body Layout
}

// Compiler turns type descriptors into Layouts, resolving named-type
// references against a schema. Resolution is memoized by type name, so
// mutually recursive definitions compile exactly once each.
//
// A Compiler is not safe for concurrent use; compile everything up
// front, then share the resulting Layouts freely.
type Compiler struct {
	schema  *schema.Schema
	entries map[string]*namedEntry
}

// NewCompiler creates a compiler over the given schema.
func NewCompiler(s *schema.Schema) *Compiler {
	return &Compiler{
		schema:  s,
		entries: make(map[string]*namedEntry),
	}
}

// Named compiles the layout for a named type definition. Returns a
// *schema.SchemaError if the name is undefined or the definition is
// value-recursive.
func (c *Compiler) Named(name string) (Layout, error) {
	return c.named(name, map[string]bool{})
}

// Compile compiles the layout for a bare type descriptor.
func (c *Compiler) Compile(t schema.TypeDesc) (Layout, error) {
	return c.compile(t, "", map[string]bool{})
}

// named resolves a reference. path carries the set of type names on the
// current unguarded expansion path: entering an option or vector resets
// it, because those constructs break infinite by-value expansion.
func (c *Compiler) named(name string, path map[string]bool) (Layout, error) {
	if path[name] {
		return nil, &schema.SchemaError{
			Type:    name,
			Message: "value-recursive definition; recursion must pass through an option or vector",
		}
	}
	if e, ok := c.entries[name]; ok {
		return &refLayout{entry: e}, nil
	}

	def, ok := c.schema.Def(name)
	if !ok {
		return nil, &schema.SchemaError{Type: name, Message: "unresolved type reference"}
	}

	e := &namedEntry{name: name}
	c.entries[name] = e

	path[name] = true
	body, err := c.compileShape(def, path)
	delete(path, name)
	if err != nil {
		delete(c.entries, name)
		return nil, err
	}
	e.body = body
	return &refLayout{entry: e}, nil
}

func (c *Compiler) compileShape(def *schema.TypeDef, path map[string]bool) (Layout, error) {
	switch sh := def.Shape.(type) {
	case schema.StructShape:
		fields, err := c.compileFields(def.Name, sh.Fields, path)
		if err != nil {
			return nil, err
		}
		return &structLayout{path: def.Name, fields: fields}, nil
	case schema.EnumShape:
		variants := make([]variantLayout, len(sh.Variants))
		byName := make(map[string]int, len(sh.Variants))
		for i, v := range sh.Variants {
			fields, err := c.compileFields(def.Name+"."+v.Name, v.Fields, path)
			if err != nil {
				return nil, err
			}
			variants[i] = variantLayout{name: v.Name, fields: fields}
			byName[v.Name] = i
		}
		return &enumLayout{path: def.Name, variants: variants, byName: byName}, nil
	case schema.AliasShape:
		return c.compile(sh.Of, def.Name, path)
	default:
		return nil, &schema.SchemaError{Type: def.Name, Message: "unrecognized shape"}
	}
}

func (c *Compiler) compileFields(owner string, defs []schema.Field, path map[string]bool) ([]fieldLayout, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	fields := make([]fieldLayout, len(defs))
	for i, f := range defs {
		lay, err := c.compile(f.Type, owner+"."+f.Name, path)
		if err != nil {
			return nil, err
		}
		fields[i] = fieldLayout{name: f.Name, lay: lay}
	}
	return fields, nil
}

func (c *Compiler) compile(t schema.TypeDesc, path string, named map[string]bool) (Layout, error) {
	switch d := t.(type) {
	case schema.ScalarType:
		if !d.Kind.Valid() {
			return nil, &schema.SchemaError{Type: path, Message: fmt.Sprintf("unknown scalar kind %q", d.Kind)}
		}
		return &scalarLayout{path: path, kind: d.Kind}, nil
	case schema.BytesType:
		return &bytesLayout{path: path}, nil
	case schema.StringType:
		return &bytesLayout{path: path, asString: true}, nil
	case schema.ArrayType:
		if sc, ok := d.Elem.(schema.ScalarType); ok && sc.Kind == schema.KindU8 {
			return &byteArrayLayout{path: path, n: d.Len}, nil
		}
		elem, err := c.compile(d.Elem, path+"[]", named)
		if err != nil {
			return nil, err
		}
		return &arrayLayout{path: path, elem: elem, n: d.Len}, nil
	case schema.VectorType:
		if sc, ok := d.Elem.(schema.ScalarType); ok && sc.Kind == schema.KindU8 {
			return &bytesLayout{path: path}, nil
		}
		elem, err := c.compile(d.Elem, path+"[]", map[string]bool{})
		if err != nil {
			return nil, err
		}
		return &vectorLayout{path: path, elem: elem}, nil
	case schema.OptionType:
		elem, err := c.compile(d.Elem, path+"?", map[string]bool{})
		if err != nil {
			return nil, err
		}
		return &optionLayout{path: path, elem: elem}, nil
	case schema.DefinedType:
		return c.named(d.Name, named)
	default:
		return nil, &schema.SchemaError{Type: path, Message: fmt.Sprintf("unrecognized type descriptor %T", t)}
	}
}

package schema

import (
	"errors"
	"fmt"
)

// SchemaError reports a malformed or structurally inconsistent schema
// detected at load or coder-construction time: an unresolved type
// reference, a record naming an undefined type, a duplicate definition,
// or a value-recursive type that would require infinite expansion.
//
// SchemaError is fatal: construction must not proceed and no partial
// artifact built from the schema is usable.
type SchemaError struct {
	// Record is the record declaration at fault, if any.
	Record string

	// Type is the type definition or reference at fault, if any.
	Type string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	switch {
	case e.Record != "" && e.Type != "":
		return fmt.Sprintf("schema: record %q: type %q: %s", e.Record, e.Type, e.Message)
	case e.Record != "":
		return fmt.Sprintf("schema: record %q: %s", e.Record, e.Message)
	case e.Type != "":
		return fmt.Sprintf("schema: type %q: %s", e.Type, e.Message)
	}
	return "schema: " + e.Message
}

// IsSchemaError reports whether err is (or wraps) a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// Package schema holds the in-memory model of an external type schema:
// named type definitions (structs, enums, aliases), the type descriptors
// that describe their shapes, and the record declarations that pair a
// named type with an opaque discriminator byte sequence.
//
// The package is pure data plus lookup and validation. It performs no
// encoding itself; binary layouts are compiled from these descriptors by
// the layout package.
//
// Decoded and encodable values are represented by the sealed Value
// interface. Values are schema-shaped generic values, not reflections of
// arbitrary Go types - the codec operates purely on the external schema.
package schema

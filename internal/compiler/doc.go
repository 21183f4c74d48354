// Package compiler parses CUE schema documents into the schema model.
// JSON is valid CUE, so raw JSON schema files load through the same
// path.
//
// A schema document has two top-level fields:
//
//	types: [
//		{name: "Counter", struct: {fields: [{name: "count", type: "u32"}]}},
//		{name: "Direction", enum: {variants: [{name: "Left"}, {name: "Right"}]}},
//		{name: "Address", alias: {array: {elem: "u8", len: 32}}},
//	]
//	records: [
//		{name: "Counter", discriminator: [1, 2, 3, 4]},
//	]
//
// Type descriptors are either a primitive name ("bool", "u8".."u128",
// "i8".."i128", "f32", "f64", "bytes", "string") or a single-key object:
// {vec: T}, {option: T}, {array: {elem: T, len: N}}, {defined: "Name"}.
//
// Discriminators are schema-supplied opaque byte lists; this compiler
// never derives them. Validation beyond structure (shadowed
// discriminator prefixes, value-recursive definitions) is advisory or
// deferred to layout compilation; see Validate and ShadowWarnings.
package compiler

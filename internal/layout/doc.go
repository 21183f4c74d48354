// Package layout compiles schema type descriptors into concrete binary
// layouts: per-kind read/write strategies with known fixed widths where
// the schema allows it.
//
// Wire rules, fixed by the external binary format:
//   - scalars are little-endian at their descriptor-defined width
//   - fixed arrays encode their elements in order with no length prefix
//   - vectors, bytes and strings carry a u32 little-endian length prefix
//   - options carry a one-byte presence flag (0 absent, 1 present)
//   - struct fields encode strictly in declaration order with no padding
//   - enums carry a one-byte variant-index tag followed by the payload
//
// Named-type references resolve lazily through a per-compiler cache, so
// mutually recursive definitions compile once each. Cycles that never
// pass through an option or vector would require infinite fixed-size
// expansion and are rejected at compile time.
package layout

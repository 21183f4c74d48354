// Package codec is the public engine over a compiled schema: encode a
// value for a named record (discriminator prefix + body), decode and
// validate a buffer against an expected record, decode without
// validation, identify an unknown buffer by scanning discriminators, and
// build prefix-match filter descriptors for external queries.
//
// The discriminator table is built once at construction and is read-only
// thereafter; a Coder may be shared freely across goroutines. Every
// operation is a pure, CPU-bound computation over caller-supplied
// buffers and values.
package codec

// Package store provides durable storage for encoded records: opaque
// discriminator-prefixed blobs keyed by address. It is the concrete
// stand-in for the external lookup collaborator that the codec's prefix
// filters target - Scan compiles a codec.Filter into a byte-prefix match
// over stored blobs.
//
// Uses SQLite with WAL mode for concurrent read access.
package store

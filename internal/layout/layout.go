package layout

import (
	"errors"
	"fmt"

	"github.com/roach88/sigil/internal/schema"
)

// Layout is the compiled encode/decode strategy for one type descriptor.
// A Layout is immutable after compilation and safe for concurrent use.
type Layout interface {
	// Put writes v into buf at off and returns the number of bytes
	// written. The caller provides a buffer at least SizeOf(v) bytes
	// long past off. A value that does not match the layout returns a
	// *ValueError.
	Put(v schema.Value, buf []byte, off int) (int, error)

	// Get reads a value from buf at off and returns it with the number
	// of bytes consumed. A short or structurally inconsistent buffer
	// returns a *DecodeError.
	Get(buf []byte, off int) (schema.Value, int, error)

	// FixedSize returns the total encoded size when it is computable in
	// closed form, which requires every field and element down the tree
	// to be fixed-width.
	FixedSize() (int, bool)

	// MinSize returns the smallest possible encoded size: fixed widths
	// plus bare length prefixes and absent-option flags.
	MinSize() int

	// SizeOf returns the exact encoded size of v by walking it.
	SizeOf(v schema.Value) (int, error)
}

// DecodeError reports a buffer too short or structurally inconsistent
// with the expected layout during field-level decode. Recoverable: the
// caller treats the data as corrupt or truncated.
type DecodeError struct {
	// Path locates the failing field, e.g. "Player.inventory[2].count".
	Path string

	// Offset is the buffer offset at which the failure was detected.
	Offset int

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("decode %s at offset %d: %s", e.Path, e.Offset, e.Message)
	}
	return fmt.Sprintf("decode at offset %d: %s", e.Offset, e.Message)
}

// IsDecodeError reports whether err is (or wraps) a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// ValueError reports a value that does not match the layout it is being
// encoded with: wrong kind, out-of-range scalar, missing struct field,
// or unknown enum variant. A ValueError is a caller bug, not corrupt
// data.
type ValueError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValueError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("value %s: %s", e.Path, e.Message)
	}
	return "value: " + e.Message
}

// IsValueError reports whether err is (or wraps) a *ValueError.
func IsValueError(err error) bool {
	var ve *ValueError
	return errors.As(err, &ve)
}

func shortBuffer(path string, off, need, have int) *DecodeError {
	return &DecodeError{
		Path:    path,
		Offset:  off,
		Message: fmt.Sprintf("buffer too short: need %d bytes, have %d", need, have),
	}
}

func valueErr(path, format string, args ...any) *ValueError {
	return &ValueError{Path: path, Message: fmt.Sprintf(format, args...)}
}

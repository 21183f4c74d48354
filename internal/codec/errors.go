package codec

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// UnknownRecordError reports a record name absent from the discriminator
// table. Recoverable by the caller; typically a programming error or a
// stale schema.
type UnknownRecordError struct {
	Record string
}

// Error implements the error interface.
func (e *UnknownRecordError) Error() string {
	return fmt.Sprintf("unknown record %q", e.Record)
}

// IsUnknownRecord reports whether err is (or wraps) an *UnknownRecordError.
func IsUnknownRecord(err error) bool {
	var ue *UnknownRecordError
	return errors.As(err, &ue)
}

// DiscriminatorMismatchError reports a buffer whose leading bytes do not
// match the expected record's discriminator in a checked decode. This is
// the expected mechanism for rejecting a buffer that does not belong to
// the claimed type; callers should try another record or treat the data
// as untyped.
type DiscriminatorMismatchError struct {
	Record string
	Want   []byte
	Got    []byte
}

// Error implements the error interface.
func (e *DiscriminatorMismatchError) Error() string {
	return fmt.Sprintf("record %q: discriminator mismatch: want %s, got %s",
		e.Record, hex.EncodeToString(e.Want), hex.EncodeToString(e.Got))
}

// IsDiscriminatorMismatch reports whether err is (or wraps) a
// *DiscriminatorMismatchError.
func IsDiscriminatorMismatch(err error) bool {
	var de *DiscriminatorMismatchError
	return errors.As(err, &de)
}

// RecordNotFoundError reports that no record in the table matches an
// unknown buffer's prefix during identify-and-decode. Recoverable: the
// caller treats the data as unrecognized.
type RecordNotFoundError struct {
	// Prefix holds the buffer's leading bytes, truncated for display.
	Prefix []byte
}

// Error implements the error interface.
func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("no record matches prefix %s", hex.EncodeToString(e.Prefix))
}

// IsRecordNotFound reports whether err is (or wraps) a *RecordNotFoundError.
func IsRecordNotFound(err error) bool {
	var ne *RecordNotFoundError
	return errors.As(err, &ne)
}

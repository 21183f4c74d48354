package compiler

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Validation error codes (E100-E129).
const (
	ErrUnresolvedType     = "E101" // reference to an undefined type
	ErrDuplicateType      = "E102" // duplicate type definition
	ErrRecordUndefined    = "E103" // record names an undefined type
	ErrDuplicateRecord    = "E104" // duplicate record declaration
	ErrEmptyDiscriminator = "E105" // record with no discriminator bytes
	ErrValueRecursive     = "E106" // definition requires infinite expansion

	// Advisory codes: a schema with these still loads, but decodeAny
	// resolution depends on declaration order.
	WarnDuplicateDiscriminator = "E121"
	WarnShadowedDiscriminator  = "E122"
)

// CompileError reports a malformed schema document with CUE position
// information when available.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError is one finding from Validate or ShadowWarnings.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return &CompileError{Field: "cue", Message: firstErr.Error()}
}

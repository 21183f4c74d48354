package harness

import (
	"github.com/roach88/sigil/internal/codec"
	"github.com/roach88/sigil/internal/layout"
	"github.com/roach88/sigil/internal/schema"
)

// Error category names used in scenario files.
const (
	CategorySchema                = "schema"
	CategoryUnknownRecord         = "unknown_record"
	CategoryDiscriminatorMismatch = "discriminator_mismatch"
	CategoryRecordNotFound        = "record_not_found"
	CategoryDecode                = "decode"
	CategoryValue                 = "value"
	categoryOther                 = "other"
)

func knownCategory(name string) bool {
	switch name {
	case CategorySchema, CategoryUnknownRecord, CategoryDiscriminatorMismatch,
		CategoryRecordNotFound, CategoryDecode, CategoryValue:
		return true
	}
	return false
}

// categorize maps a codec error to its scenario category.
func categorize(err error) string {
	switch {
	case err == nil:
		return ""
	case schema.IsSchemaError(err):
		return CategorySchema
	case codec.IsUnknownRecord(err):
		return CategoryUnknownRecord
	case codec.IsDiscriminatorMismatch(err):
		return CategoryDiscriminatorMismatch
	case codec.IsRecordNotFound(err):
		return CategoryRecordNotFound
	case layout.IsDecodeError(err):
		return CategoryDecode
	case layout.IsValueError(err):
		return CategoryValue
	default:
		return categoryOther
	}
}

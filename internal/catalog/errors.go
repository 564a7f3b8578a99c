package catalog

import (
	"errors"
	"fmt"
)

// Store errors.
var (
	// ErrNotFound is returned when no product has the requested id.
	ErrNotFound = errors.New("product not found")

	// ErrDuplicateCode is returned when a product code is already in use.
	ErrDuplicateCode = errors.New("product code already exists")
)

// ValidationError reports a required product field that is missing or empty.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("product field %q must be present and non-empty", e.Field)
}

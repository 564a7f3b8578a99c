package cart

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no cart has the requested id.
var ErrNotFound = errors.New("cart not found")

// ValidationError reports a missing cart or product id.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must be a positive id", e.Field)
}

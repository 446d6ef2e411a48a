package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRowCount is returned for negative row counts.
	ErrInvalidRowCount = errors.New("invalid row count")

	// ErrValueSpaceExhausted is returned when a unique field cannot produce
	// another distinct value.
	ErrValueSpaceExhausted = errors.New("value space exhausted")
)

// GenerationError reports why a generate call could not satisfy the schema.
// Generation never returns a partial table alongside it.
type GenerationError struct {
	Field  string
	Row    int // -1 when the failure is not tied to a row
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Field == "" {
		return "generate: " + e.Reason
	}
	if e.Row < 0 {
		return fmt.Sprintf("generate: field '%s': %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("generate: field '%s' (row %d): %s", e.Field, e.Row, e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

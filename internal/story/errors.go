package story

import (
	"errors"
	"fmt"
)

var ErrInvalidRequest = errors.New("invalid story request")

// GenerationError covers failed or empty service calls and rejected requests.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "story generation: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

// ParseError means the reply was not well-formed JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "story parse: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError means the reply was JSON but not a valid story.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string { return "story schema: " + e.Reason }

func schemaErrorf(format string, args ...any) error {
	return &SchemaError{Reason: fmt.Sprintf(format, args...)}
}

package answer

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned while the index has not been built; every
	// Answer call fails with it until MarkReady is called.
	ErrNotReady = errors.New("answering service not initialized")
	// ErrGenerationInvalid is returned when the model produced an empty or
	// too-short completion.
	ErrGenerationInvalid = errors.New("generated response was invalid or too short")
	// ErrGenerationTimeout is returned when the model call exceeded its
	// deadline.
	ErrGenerationTimeout = errors.New("generation timed out")
)

// ValidationError reports an invalid question before any retrieval happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

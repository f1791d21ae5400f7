package hours

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates a missing or malformed date or time range.
	ErrInvalidInput = errors.New("invalid session input")
	// ErrDuplicate indicates an identical session is already stored.
	ErrDuplicate = errors.New("session already exists")
	// ErrNotFound indicates the target session doesn't exist.
	ErrNotFound = errors.New("session not found")
	// ErrCorruptSession indicates a stored session has an unusable time range.
	ErrCorruptSession = errors.New("stored session is corrupt")
)

// ValidationError describes which form field was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes every ValidationError match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

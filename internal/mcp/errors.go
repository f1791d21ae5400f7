package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/learnerhours/internal/domain/hours"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Errors it does not
// recognize are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, hours.ErrInvalidInput):
		return &APIError{Code: "VALIDATION_ERROR", Message: err.Error(), RecoveryHint: "Use YYYY-MM-DD and HH:MM with start not after end"}
	case errors.Is(err, hours.ErrDuplicate):
		return &APIError{Code: "DUPLICATE", Message: "an identical session is already logged"}
	case errors.Is(err, hours.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "session not found", RecoveryHint: "Call list_sessions for current ids"}
	default:
		return err
	}
}

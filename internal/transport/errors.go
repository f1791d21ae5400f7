package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpggio/learnerhours/internal/domain/hours"
)

// Error codes carried in error bodies.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeDuplicate    = "DUPLICATE"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL_ERROR"
)

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// statusFor maps a domain error to a status, code and optional field.
func statusFor(err error) (int, string, string) {
	var verr *hours.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, CodeValidation, verr.Field
	case errors.Is(err, hours.ErrInvalidInput):
		return http.StatusBadRequest, CodeValidation, ""
	case errors.Is(err, hours.ErrDuplicate):
		return http.StatusConflict, CodeDuplicate, ""
	case errors.Is(err, hours.ErrNotFound):
		return http.StatusNotFound, CodeNotFound, ""
	default:
		return http.StatusInternalServerError, CodeInternal, ""
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorBody{Code: code, Message: message})
}

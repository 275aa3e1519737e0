package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FieldError is the wire shape for a single validation failure. LineIndex is
// set (0-based) only for line-item errors.
type FieldError struct {
	Field     string `json:"field"`
	LineIndex *int   `json:"lineIndex,omitempty"`
	Message   string `json:"message"`
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

type DuplicateCodeError struct {
	Code string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("document type with code %s already exists", e.Code)
}

type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s)", len(e.Errors))
}

type BusinessRuleError struct {
	Message string
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

type InvalidTransitionError struct {
	From    string
	To      string
	Allowed []string
}

func (e *InvalidTransitionError) Error() string {
	allowed := "none"
	if len(e.Allowed) > 0 {
		allowed = strings.Join(e.Allowed, ", ")
	}
	return fmt.Sprintf("cannot transition from %s to %s. Allowed: %s", e.From, e.To, allowed)
}

// Status maps an engine error to the HTTP status controllers respond with.
func Status(err error) int {
	var nf *NotFoundError
	var dup *DuplicateCodeError
	var val *ValidationError
	var rule *BusinessRuleError
	var trans *InvalidTransitionError

	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &dup):
		return http.StatusConflict
	case errors.As(err, &val):
		return http.StatusUnprocessableEntity
	case errors.As(err, &rule):
		return http.StatusBadRequest
	case errors.As(err, &trans):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Body builds the JSON payload for an engine error. Validation failures carry
// the complete error list, never just the first.
func Body(err error) map[string]any {
	var val *ValidationError
	if errors.As(err, &val) {
		return map[string]any{
			"error":  "validation failed",
			"errors": val.Errors,
		}
	}
	return map[string]any{"error": err.Error()}
}

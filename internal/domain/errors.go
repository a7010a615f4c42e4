package domain

import (
	"errors"
	"fmt"
	"time"
)

// Recoverable pipeline conditions surfaced as values, not panics.
var (
	// ErrClassifierUnavailable means a model artifact could not be
	// loaded or the adapter is tripped; the orchestrator falls back to
	// pattern matching.
	ErrClassifierUnavailable = errors.New("classifier unavailable")

	// ErrNoSymptoms means extraction produced nothing; the pipeline
	// degrades to a needs-more-information result instead of failing.
	ErrNoSymptoms = errors.New("no symptoms detected")

	// ErrCatalogUnavailable means no catalog snapshot has ever been
	// published. Fatal at startup, retriable on reload.
	ErrCatalogUnavailable = errors.New("reference catalog unavailable")

	// ErrEmptyInput rejects requests whose text is blank.
	ErrEmptyInput = errors.New("input text is empty")
)

// Error codes for the API boundary.
const (
	CodeInvalidInput   = "INVALID_INPUT"
	CodeCatalogError   = "CATALOG_ERROR"
	CodeStorageError   = "STORAGE_ERROR"
	CodeProcessing     = "PROCESSING_ERROR"
	CodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	CodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// TriageError is the structured error returned across the API boundary.
type TriageError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface.
func (e *TriageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewTriageError creates a TriageError stamped with the current time.
func NewTriageError(code, message, details, requestID string) *TriageError {
	return &TriageError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

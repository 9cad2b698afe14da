// Package errors provides the error taxonomy of the collection point workflow.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodePositionUnavailable  ErrorCode = "POSITION_UNAVAILABLE"
	ErrCodeDirectoryUnavailable ErrorCode = "DIRECTORY_UNAVAILABLE"
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeSubmissionFailed     ErrorCode = "SUBMISSION_FAILED"

	ErrCodeSubmissionInFlight ErrorCode = "SUBMISSION_IN_FLIGHT"
	ErrCodeSessionClosed      ErrorCode = "SESSION_CLOSED"
	ErrCodeSelectionRejected  ErrorCode = "SELECTION_REJECTED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. A *StandardError matches the sentinel of its code.
var (
	ErrPositionUnavailable  = stderrors.New(string(ErrCodePositionUnavailable))
	ErrDirectoryUnavailable = stderrors.New(string(ErrCodeDirectoryUnavailable))
	ErrValidationFailed     = stderrors.New(string(ErrCodeValidationFailed))
	ErrSubmissionFailed     = stderrors.New(string(ErrCodeSubmissionFailed))
	ErrSubmissionInFlight   = stderrors.New(string(ErrCodeSubmissionInFlight))
	ErrSessionClosed        = stderrors.New(string(ErrCodeSessionClosed))
	ErrSelectionRejected    = stderrors.New(string(ErrCodeSelectionRejected))
)

var sentinels = map[ErrorCode]error{
	ErrCodePositionUnavailable:  ErrPositionUnavailable,
	ErrCodeDirectoryUnavailable: ErrDirectoryUnavailable,
	ErrCodeValidationFailed:     ErrValidationFailed,
	ErrCodeSubmissionFailed:     ErrSubmissionFailed,
	ErrCodeSubmissionInFlight:   ErrSubmissionInFlight,
	ErrCodeSessionClosed:        ErrSessionClosed,
	ErrCodeSelectionRejected:    ErrSelectionRejected,
}

// StandardError represents a structured workflow error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// Is matches the code sentinel, so callers can write errors.Is(err, ErrValidationFailed).
func (e *StandardError) Is(target error) bool {
	if sentinel, ok := sentinels[e.Code]; ok && sentinel == target {
		return true
	}
	if other, ok := target.(*StandardError); ok {
		return other.Code == e.Code
	}
	return false
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewPositionUnavailableError reports a failed or denied geolocation query.
func NewPositionUnavailableError(err error) *StandardError {
	return newError(ErrCodePositionUnavailable, "Device position unavailable", errDetails(err), true, err)
}

// NewDirectoryUnavailableError reports a failed state, city or catalog fetch.
func NewDirectoryUnavailableError(service string, err error) *StandardError {
	return newError(ErrCodeDirectoryUnavailable,
		fmt.Sprintf("Directory service '%s' unavailable", service), errDetails(err), true, err).
		WithMetadata("service", service)
}

// NewValidationFailedError reports missing or malformed fields at submit time.
func NewValidationFailedError(fields []FieldError) *StandardError {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	return newError(ErrCodeValidationFailed, "Collection point data validation failed",
		strings.Join(names, ", "), false, nil).
		WithMetadata("fields", fields)
}

// NewSubmissionFailedError reports a creation request that was rejected or
// never reached the service.
func NewSubmissionFailedError(statusCode int, err error) *StandardError {
	e := newError(ErrCodeSubmissionFailed, "Collection point creation failed", errDetails(err), true, err)
	if statusCode > 0 {
		e.WithMetadata("statusCode", statusCode)
		// 4xx means the service rejected the content; resubmitting unchanged will not help.
		e.Retryable = statusCode >= 500
	}
	return e
}

func NewSubmissionInFlightError() *StandardError {
	return newError(ErrCodeSubmissionInFlight, "A submission is already in flight", "", true, nil)
}

func NewSessionClosedError() *StandardError {
	return newError(ErrCodeSessionClosed, "Creation session is closed", "", false, nil)
}

// NewSelectionRejectedError reports a pick that is not among the currently offered options.
func NewSelectionRejectedError(field, details string) *StandardError {
	return newError(ErrCodeSelectionRejected, fmt.Sprintf("Selection of %s rejected", field), details, false, nil).
		WithMetadata("field", field)
}

// FieldError is one failed field check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// As extracts a *StandardError from err's chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the taxonomy code of err, or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := As(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// IsRetryableErrorCode reports whether the user may usefully re-trigger the
// operation. Nothing is retried automatically.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodePositionUnavailable,
		ErrCodeDirectoryUnavailable,
		ErrCodeSubmissionFailed,
		ErrCodeSubmissionInFlight:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "POSITION"):
		return "GEOLOCATION"
	case strings.Contains(codeStr, "DIRECTORY"):
		return "DIRECTORY"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "SELECTION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "SUBMISSION"):
		return "SUBMISSION"
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	default:
		return "OTHER"
	}
}

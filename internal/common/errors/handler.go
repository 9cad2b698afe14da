package errors

import (
	"time"
)

// ErrorHandler normalizes and logs failures of workflow operations so every
// error that reaches the user carries a taxonomy code.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle returns err as a *StandardError. Errors that are not already
// standardized are wrapped with fallback, which picks the code appropriate
// to the failed operation.
func (h *ErrorHandler) Handle(operation string, err error, fallback func(error) *StandardError) *StandardError {
	if err == nil {
		return nil
	}

	stdErr := h.normalizeError(err, fallback)
	h.logError(operation, stdErr)
	return stdErr
}

func (h *ErrorHandler) normalizeError(err error, fallback func(error) *StandardError) *StandardError {
	if stdErr, ok := As(err); ok {
		return stdErr
	}
	if fallback != nil {
		return fallback(err)
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func (h *ErrorHandler) logError(operation string, stdErr *StandardError) {
	fields := map[string]interface{}{
		"operation":     operation,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	// Guard rejections and user input problems are expected; only service
	// failures are logged at error level.
	switch GetErrorCategory(stdErr.Code) {
	case "VALIDATION", "SESSION":
		h.logger.Warn("operation rejected", fields)
	default:
		if stdErr.Code == ErrCodeSubmissionInFlight {
			h.logger.Warn("operation rejected", fields)
			return
		}
		h.logger.Error("operation failed", fields)
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	errors []map[string]interface{}
	warns  []map[string]interface{}
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.errors = append(l.errors, fields)
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.warns = append(l.warns, fields)
}

func TestStandardError_IsMatchesSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"position", NewPositionUnavailableError(fmt.Errorf("denied")), ErrPositionUnavailable},
		{"directory", NewDirectoryUnavailableError("catalog", fmt.Errorf("503")), ErrDirectoryUnavailable},
		{"validation", NewValidationFailedError([]FieldError{{Field: "name"}}), ErrValidationFailed},
		{"submission", NewSubmissionFailedError(0, fmt.Errorf("refused")), ErrSubmissionFailed},
		{"in flight", NewSubmissionInFlightError(), ErrSubmissionInFlight},
		{"closed", NewSessionClosedError(), ErrSessionClosed},
		{"selection", NewSelectionRejectedError("city", "not listed"), ErrSelectionRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, stderrors.Is(tt.err, tt.sentinel))
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, stderrors.Is(wrapped, tt.sentinel))
			assert.False(t, stderrors.Is(tt.err, errUnrelated))
		})
	}
}

var errUnrelated = stderrors.New("UNKNOWN")

func TestStandardError_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewDirectoryUnavailableError("regions", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "regions", err.Metadata["service"])
	assert.Contains(t, err.Error(), "DIRECTORY_UNAVAILABLE")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewSubmissionFailedError_Retryability(t *testing.T) {
	assert.True(t, NewSubmissionFailedError(0, stderrors.New("dial tcp")).Retryable)
	assert.True(t, NewSubmissionFailedError(502, stderrors.New("bad gateway")).Retryable)

	rejected := NewSubmissionFailedError(400, stderrors.New("invalid uf"))
	assert.False(t, rejected.Retryable)
	assert.Equal(t, 400, rejected.Metadata["statusCode"])
}

func TestNewValidationFailedError_ListsFields(t *testing.T) {
	err := NewValidationFailedError([]FieldError{
		{Field: "name", Message: "required"},
		{Field: "city", Message: "required"},
	})
	assert.Equal(t, "name, city", err.Details)
	fields, ok := err.Metadata["fields"].([]FieldError)
	require.True(t, ok)
	assert.Len(t, fields, 2)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeSessionClosed, CodeOf(fmt.Errorf("x: %w", NewSessionClosedError())))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "GEOLOCATION", GetErrorCategory(ErrCodePositionUnavailable))
	assert.Equal(t, "DIRECTORY", GetErrorCategory(ErrCodeDirectoryUnavailable))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeValidationFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeSelectionRejected))
	assert.Equal(t, "SUBMISSION", GetErrorCategory(ErrCodeSubmissionFailed))
	assert.Equal(t, "SESSION", GetErrorCategory(ErrCodeSessionClosed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeDirectoryUnavailable))
	assert.True(t, IsRetryableErrorCode(ErrCodeSubmissionFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeValidationFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeSessionClosed))
}

func TestErrorHandler_Handle(t *testing.T) {
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	assert.Nil(t, h.Handle("noop", nil, nil))

	got := h.Handle("listStates", stderrors.New("timeout"), func(err error) *StandardError {
		return NewDirectoryUnavailableError("regions", err)
	})
	assert.Equal(t, ErrCodeDirectoryUnavailable, got.Code)
	require.Len(t, log.errors, 1)
	assert.Equal(t, "listStates", log.errors[0]["operation"])
	assert.Equal(t, "regions", log.errors[0]["service"])

	existing := NewValidationFailedError([]FieldError{{Field: "email"}})
	assert.Same(t, existing, h.Handle("submit", existing, nil))
	assert.Len(t, log.warns, 1)

	internal := h.Handle("other", stderrors.New("weird"), nil)
	assert.Equal(t, ErrCodeInternal, internal.Code)
}

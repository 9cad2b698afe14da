package models

// NoticeKind classifies what a user-facing notice reports.
type NoticeKind string

const (
	NoticePointCreated        NoticeKind = "point_created"
	NoticeSubmissionFailed    NoticeKind = "submission_failed"
	NoticeValidationFailed    NoticeKind = "validation_failed"
	NoticeDirectoryFailed     NoticeKind = "directory_unavailable"
	NoticePositionUnavailable NoticeKind = "position_unavailable"
)

// Notice is what the workflow asks a notifier to tell the user.
type Notice struct {
	SessionID string                 `json:"sessionId"`
	Kind      NoticeKind             `json:"kind"`
	Message   string                 `json:"message"`
	ErrorCode string                 `json:"errorCode,omitempty"`
	Recipient string                 `json:"recipient,omitempty"` // entity email, when known
	Point     *Point                 `json:"point,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt string                 `json:"createdAt"`
}

// Success reports whether the notice announces a created point.
func (n Notice) Success() bool {
	return n.Kind == NoticePointCreated
}

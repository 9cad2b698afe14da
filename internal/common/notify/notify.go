// Package notify routes workflow notices to the user-facing channels.
package notify

import (
	"context"
	stderrors "errors"

	"collection-points/internal/common/logger"
	"collection-points/internal/models"
)

type Notifier interface {
	Notify(ctx context.Context, notice models.Notice) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, notice models.Notice) error

func (f Func) Notify(ctx context.Context, notice models.Notice) error {
	return f(ctx, notice)
}

// LogNotifier writes notices to the structured log. Failures at Warn, the
// rest at Info.
type LogNotifier struct {
	logger logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

func (n *LogNotifier) Notify(ctx context.Context, notice models.Notice) error {
	fields := map[string]interface{}{
		"sessionId": notice.SessionID,
		"kind":      string(notice.Kind),
	}
	if notice.ErrorCode != "" {
		fields["errorCode"] = notice.ErrorCode
	}
	if notice.Point != nil {
		fields["pointId"] = notice.Point.ID
	}
	for k, v := range notice.Payload {
		fields[k] = v
	}

	if notice.Success() {
		n.logger.Info(notice.Message, fields)
	} else {
		n.logger.Warn(notice.Message, fields)
	}
	return nil
}

// Multi fans a notice out to every notifier. Delivery continues past
// failures; the joined error is returned.
type Multi struct {
	notifiers []Notifier
}

func NewMulti(notifiers ...Notifier) *Multi {
	filtered := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			filtered = append(filtered, n)
		}
	}
	return &Multi{notifiers: filtered}
}

func (m *Multi) Notify(ctx context.Context, notice models.Notice) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, notice); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (m *Multi) Len() int {
	return len(m.notifiers)
}

// internal/workflow/create-point/submit.go
package createpoint

import (
	"context"
	"time"

	"collection-points/internal/common/errors"
	"collection-points/internal/common/metrics"
	"collection-points/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// BuildRequest turns a snapshot into the creation request. Items are in
// ascending order.
func BuildRequest(snap Snapshot) *models.CreationRequest {
	req := &models.CreationRequest{
		Profile:    snap.Profile,
		Region:     snap.Region,
		Coordinate: snap.Coordinate,
		Items:      append([]int{}, snap.Items...),
	}
	if snap.Image != nil {
		img := *snap.Image
		req.Image = &img
	}
	return req
}

// Submit validates one consistent snapshot and sends it as a single
// creation request. At most one submission is in flight per session; a
// concurrent call fails with SUBMISSION_IN_FLIGHT without touching the
// store. On failure the form is kept for correction; on success it is
// discarded and the session closes.
func (s *Session) Submit(ctx context.Context) (*models.Point, error) {
	snap, err := s.store.beginSubmit(s.validate)
	if err != nil {
		stdErr, _ := errors.As(err)
		if stdErr != nil && stdErr.Code == errors.ErrCodeValidationFailed {
			metrics.Submissions.WithLabelValues("invalid").Inc()
			s.logger.Warn("submission rejected by validation", map[string]interface{}{
				"fields": stdErr.Details,
			})
			s.notifyFailure(models.NoticeValidationFailed, stdErr, "")
		} else {
			metrics.Submissions.WithLabelValues("refused").Inc()
		}
		return nil, err
	}

	req := BuildRequest(snap)

	ctx, span := s.deps.Telemetry.StartSpan(ctx, "points.submit",
		attribute.String("session.id", s.id),
		attribute.String("point.uf", req.Region.StateCode),
		attribute.String("point.city", req.Region.CityName),
		attribute.Int("point.items", len(req.Items)),
	)
	defer span.End()

	s.logger.Info("submitting collection point", map[string]interface{}{
		"uf":    req.Region.StateCode,
		"city":  req.Region.CityName,
		"items": req.ItemsField(),
	})

	callCtx, cancel := withTimeout(ctx, s.cfg.SubmitTimeout)
	start := time.Now()
	point, err := s.deps.Creator.CreatePoint(callCtx, req)
	elapsed := time.Since(start)
	cancel()

	if err != nil {
		stdErr := s.errors.Handle("submit", err, func(err error) *errors.StandardError {
			return errors.NewSubmissionFailedError(0, err)
		})
		span.RecordError(stdErr)
		span.SetStatus(codes.Error, string(stdErr.Code))

		s.store.failSubmit(stdErr)
		s.recordSubmission(ctx, elapsed, "failed")
		s.notifyFailure(models.NoticeSubmissionFailed, stdErr, req.Profile.Email)
		return nil, stdErr
	}

	s.store.completeSubmit(point)
	s.close()
	s.recordSubmission(ctx, elapsed, "created")

	fields := map[string]interface{}{"durationMs": elapsed.Milliseconds()}
	if point != nil {
		fields["pointId"] = point.ID
		span.SetAttributes(attribute.Int("point.id", point.ID))
	}
	s.logger.Info("collection point created", fields)

	s.notify(models.Notice{
		Kind:      models.NoticePointCreated,
		Message:   "Collection point created",
		Recipient: req.Profile.Email,
		Point:     point,
	})
	return point, nil
}

func (s *Session) recordSubmission(ctx context.Context, elapsed time.Duration, status string) {
	metrics.Submissions.WithLabelValues(status).Inc()
	metrics.SubmissionDuration.WithLabelValues(status).Observe(elapsed.Seconds())
	s.deps.Telemetry.RecordSubmission(ctx, elapsed, status)
}

// internal/workflow/create-point/session.go
package createpoint

import (
	"context"
	"fmt"
	"sync"
	"time"

	"collection-points/internal/common/errors"
	"collection-points/internal/common/logger"
	"collection-points/internal/common/metrics"
	"collection-points/internal/common/validation"
	"collection-points/internal/models"

	"github.com/google/uuid"
)

const (
	sourceStates   = "states"
	sourceCities   = "cities"
	sourceCatalog  = "catalog"
	sourceLocation = "location"

	directoryService = "region-directory"
	catalogService   = "catalog"
)

// Session is one run of the creation workflow. Input operations mutate the
// store synchronously; fetches run on their own goroutines and write back
// only their own slice of it.
type Session struct {
	id        string
	cfg       *Config
	deps      Dependencies
	store     *Store
	logger    logger.Logger
	errors    *errors.ErrorHandler
	validator *validation.Validator

	ctx    context.Context
	cancel context.CancelFunc

	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

// NewSession prepares a session. Nothing is fetched until Start.
func NewSession(ctx context.Context, deps Dependencies, cfg *Config) (*Session, error) {
	if deps.Directory == nil || deps.Catalog == nil || deps.Creator == nil {
		return nil, fmt.Errorf("directory, catalog and creator are required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}

	validator, err := newSubmissionValidator(cfg.MinItems)
	if err != nil {
		return nil, err
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	id := uuid.NewString()
	log = log.WithFields(map[string]interface{}{"sessionId": id})

	sessionCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		id:        id,
		cfg:       cfg,
		deps:      deps,
		store:     NewStore(sessionCtx, id),
		logger:    log,
		errors:    errors.NewErrorHandler(log),
		validator: validator,
		ctx:       sessionCtx,
		cancel:    cancel,
	}
	metrics.SessionsActive.Inc()
	return s, nil
}

// Start fires the three startup fetches. They are independent and resolve
// in any order. Calling Start again has no effect.
func (s *Session) Start() {
	s.startOnce.Do(func() {
		s.logger.Info("creation session started", nil)
		s.fetchLocation()
		s.fetchStates()
		s.fetchCatalog()
	})
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Snapshot() Snapshot {
	return s.store.Snapshot()
}

func (s *Session) Phase() Phase {
	return s.store.Phase()
}

// Subscribe registers an observer of store mutations.
func (s *Session) Subscribe(obs Observer) func() {
	return s.store.Subscribe(obs)
}

// Wait blocks until every fetch issued so far has been applied or dropped.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Done is closed once the session is closed by success or abandonment.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Form input

func (s *Session) SetName(name string) error {
	return s.store.SetName(name)
}

func (s *Session) SetEmail(email string) error {
	return s.store.SetEmail(email)
}

func (s *Session) SetPhone(phone string) error {
	return s.store.SetPhone(phone)
}

func (s *Session) SetProfile(profile models.EntityProfile) error {
	return s.store.SetProfile(profile)
}

// SelectState switches the state, clears city and city list, and issues
// exactly one city fetch tagged with the selection.
func (s *Session) SelectState(code string) error {
	ticket, err := s.store.selectState(code)
	if err != nil {
		return err
	}
	s.logger.Debug("state selected", map[string]interface{}{"stateCode": code})
	s.fetchCities(ticket)
	return nil
}

func (s *Session) SelectCity(name string) error {
	return s.store.SelectCity(name)
}

// ToggleItem adds or removes a catalog id and reports whether it is now selected.
func (s *Session) ToggleItem(id int) (bool, error) {
	return s.store.ToggleItem(id)
}

func (s *Session) SetImage(image models.ImageAsset) error {
	return s.store.SetImage(image)
}

func (s *Session) ClearImage() error {
	return s.store.ClearImage()
}

// Retries are user triggered. They do nothing unless the previous attempt failed.

func (s *Session) RetryStates() error {
	if err := s.store.checkOpen(); err != nil {
		return err
	}
	s.fetchStates()
	return nil
}

func (s *Session) RetryCatalog() error {
	if err := s.store.checkOpen(); err != nil {
		return err
	}
	s.fetchCatalog()
	return nil
}

// RetryLocation queries the position again unless the map was tapped.
func (s *Session) RetryLocation() error {
	if err := s.store.checkOpen(); err != nil {
		return err
	}
	s.fetchLocation()
	return nil
}

// Abandon discards the form and closes the session without submitting.
// It is rejected while a submission is in flight.
func (s *Session) Abandon() error {
	closed, err := s.store.abandon()
	if err != nil {
		return err
	}
	if closed {
		s.logger.Info("creation session abandoned", nil)
		s.close()
	}
	return nil
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.cancel()
		metrics.SessionsActive.Dec()
	})
}

// Fetches

func (s *Session) spawn(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (s *Session) recordFetch(source string, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	metrics.DirectoryFetches.WithLabelValues(source, status).Inc()
	s.deps.Telemetry.RecordFetch(s.ctx, source, status)
}

func (s *Session) fetchLocation() {
	if !s.store.beginLocation() {
		return
	}
	if s.deps.Locator == nil {
		err := errors.NewPositionUnavailableError(fmt.Errorf("no position source configured"))
		s.store.failLocation(err)
		s.logger.Debug("no position source, keeping default coordinate", nil)
		return
	}

	s.spawn(func() {
		ctx, cancel := withTimeout(s.ctx, s.cfg.LocationTimeout)
		defer cancel()

		coord, err := s.deps.Locator.CurrentCoordinate(ctx)
		s.recordFetch(sourceLocation, err)
		if err != nil {
			stdErr := s.errors.Handle("locate", err, errors.NewPositionUnavailableError)
			s.store.failLocation(stdErr)
			s.notifyFailure(models.NoticePositionUnavailable, stdErr, "")
			return
		}
		if s.store.applyDeviceCoordinate(coord) {
			s.logger.Debug("device coordinate applied", map[string]interface{}{
				"latitude":  coord.Latitude,
				"longitude": coord.Longitude,
			})
		}
	})
}

func (s *Session) fetchStates() {
	if !s.store.beginStates() {
		return
	}
	s.spawn(func() {
		ctx, cancel := withTimeout(s.ctx, s.cfg.FetchTimeout)
		defer cancel()

		states, err := s.deps.Directory.ListStates(ctx)
		s.recordFetch(sourceStates, err)
		if err != nil {
			stdErr := s.errors.Handle("list states", err, directoryFallback(directoryService))
			s.store.applyStates(nil, stdErr)
			s.notifyFailure(models.NoticeDirectoryFailed, stdErr, "")
			return
		}
		s.store.applyStates(states, nil)
	})
}

func (s *Session) fetchCities(ticket cityTicket) {
	s.spawn(func() {
		ctx, cancel := withTimeout(s.ctx, s.cfg.FetchTimeout)
		defer cancel()

		cities, err := s.deps.Directory.ListCities(ctx, ticket.stateCode)
		s.recordFetch(sourceCities, err)

		var stdErr *errors.StandardError
		if err != nil {
			stdErr = s.errors.Handle("list cities", err, directoryFallback(directoryService))
			err = stdErr
		}
		if !s.store.applyCities(ticket, cities, err) {
			metrics.StaleCityResponses.Inc()
			s.logger.Debug("discarded stale city list", map[string]interface{}{"stateCode": ticket.stateCode})
			return
		}
		if stdErr != nil {
			s.notifyFailure(models.NoticeDirectoryFailed, stdErr, "")
		}
	})
}

func (s *Session) fetchCatalog() {
	if !s.store.beginCatalog() {
		return
	}
	s.spawn(func() {
		ctx, cancel := withTimeout(s.ctx, s.cfg.CatalogTimeout)
		defer cancel()

		entries, err := s.deps.Catalog.ListCatalog(ctx)
		s.recordFetch(sourceCatalog, err)
		if err != nil {
			stdErr := s.errors.Handle("list catalog", err, directoryFallback(catalogService))
			s.store.applyCatalog(nil, stdErr)
			s.notifyFailure(models.NoticeDirectoryFailed, stdErr, "")
			return
		}
		s.store.applyCatalog(entries, nil)
	})
}

func directoryFallback(service string) func(error) *errors.StandardError {
	return func(err error) *errors.StandardError {
		return errors.NewDirectoryUnavailableError(service, err)
	}
}

// Notices

func (s *Session) notify(notice models.Notice) {
	if s.deps.Notifier == nil {
		return
	}
	notice.SessionID = s.id
	notice.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), 10*time.Second)
	defer cancel()
	if err := s.deps.Notifier.Notify(ctx, notice); err != nil {
		s.logger.Warn("notice delivery failed", map[string]interface{}{
			"kind":  string(notice.Kind),
			"error": err.Error(),
		})
	}
}

func (s *Session) notifyFailure(kind models.NoticeKind, err *errors.StandardError, recipient string) {
	notice := models.Notice{
		Kind:      kind,
		Message:   err.Message,
		ErrorCode: string(err.Code),
		Recipient: recipient,
	}
	if len(err.Metadata) > 0 {
		notice.Payload = make(map[string]interface{}, len(err.Metadata))
		for k, v := range err.Metadata {
			notice.Payload[k] = v
		}
	}
	s.notify(notice)
}

// internal/workflow/create-point/store.go
package createpoint

import (
	"context"
	"sync"
	"time"

	"collection-points/internal/common/errors"
	"collection-points/internal/models"
)

// Store is the single mutable aggregate of a creation session. Every
// mutation runs under one lock; events are delivered after it is released.
type Store struct {
	mu        sync.RWMutex
	ctx       context.Context
	sessionID string
	seq       uint64

	profile     models.EntityProfile
	coordinate  models.GeoCoordinate
	coordSource CoordinateSource
	region      models.RegionSelection
	items       *ItemSet
	image       *models.ImageAsset

	states     []string
	cities     []string
	catalog    []models.CatalogEntry
	catalogIDs map[int]struct{}
	// cityGen tags the city fetch issued by the latest state selection.
	cityGen uint64

	statesStatus   ListStatus
	citiesStatus   ListStatus
	catalogStatus  ListStatus
	locationStatus ListStatus

	phase        Phase
	observers    map[int]Observer
	nextObserver int
}

func NewStore(ctx context.Context, sessionID string) *Store {
	st := &Store{
		ctx:       context.WithoutCancel(ctx),
		sessionID: sessionID,
		observers: make(map[int]Observer),
	}
	st.resetForm()
	st.statesStatus = ListStatus{Status: FetchIdle}
	st.catalogStatus = ListStatus{Status: FetchIdle}
	st.locationStatus = ListStatus{Status: FetchIdle}
	st.phase = PhaseIdle
	return st
}

// resetForm restores every user-editable field to its default. Callers hold mu.
func (st *Store) resetForm() {
	st.profile = models.EntityProfile{}
	st.coordinate = models.GeoCoordinate{}
	st.coordSource = SourceDefault
	st.region = models.RegionSelection{}
	st.items = NewItemSet()
	st.image = nil
	st.cities = nil
	st.citiesStatus = ListStatus{Status: FetchIdle}
	st.cityGen++
}

type eventBuffer struct {
	st     *Store
	events []Event
}

func (b *eventBuffer) add(t EventType, data map[string]any) {
	b.st.seq++
	b.events = append(b.events, Event{
		Type:      t,
		Seq:       b.st.seq,
		SessionID: b.st.sessionID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// mutate runs fn under the write lock, then delivers the events it recorded.
func (st *Store) mutate(fn func(ev *eventBuffer) error) error {
	st.mu.Lock()
	buf := &eventBuffer{st: st}
	err := fn(buf)
	st.mu.Unlock()

	st.dispatch(buf.events)
	return err
}

func (st *Store) dispatch(events []Event) {
	if len(events) == 0 {
		return
	}
	st.mu.RLock()
	observers := make([]Observer, 0, len(st.observers))
	for _, obs := range st.observers {
		observers = append(observers, obs)
	}
	st.mu.RUnlock()

	for _, ev := range events {
		for _, obs := range observers {
			obs.OnEvent(st.ctx, ev)
		}
	}
}

// Subscribe registers obs and returns a function that removes it.
func (st *Store) Subscribe(obs Observer) func() {
	st.mu.Lock()
	id := st.nextObserver
	st.nextObserver++
	st.observers[id] = obs
	st.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			st.mu.Lock()
			delete(st.observers, id)
			st.mu.Unlock()
		})
	}
}

func (st *Store) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snapshotLocked()
}

func (st *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:        st.sessionID,
		Phase:            st.phase,
		Profile:          st.profile,
		Coordinate:       st.coordinate,
		CoordinateSource: st.coordSource,
		Region:           st.region,
		Items:            st.items.Sorted(),
		States:           append([]string(nil), st.states...),
		Cities:           append([]string(nil), st.cities...),
		Catalog:          append([]models.CatalogEntry(nil), st.catalog...),
		StatesStatus:     st.statesStatus,
		CitiesStatus:     st.citiesStatus,
		CatalogStatus:    st.catalogStatus,
		LocationStatus:   st.locationStatus,
	}
	if st.image != nil {
		img := *st.image
		img.Data = append([]byte(nil), st.image.Data...)
		snap.Image = &img
	}
	return snap
}

func (st *Store) Phase() Phase {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.phase
}

// checkOpen returns SESSION_CLOSED once the store is closed.
func (st *Store) checkOpen() error {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.closedErr()
}

// closedErr is checkOpen for callers holding mu.
func (st *Store) closedErr() error {
	if st.phase == PhaseClosed {
		return errors.NewSessionClosedError()
	}
	return nil
}

// Profile

func (st *Store) SetName(name string) error {
	return st.setProfileField("name", func(p *models.EntityProfile) { p.Name = name })
}

func (st *Store) SetEmail(email string) error {
	return st.setProfileField("email", func(p *models.EntityProfile) { p.Email = email })
}

func (st *Store) SetPhone(phone string) error {
	return st.setProfileField("whatsapp", func(p *models.EntityProfile) { p.Phone = phone })
}

func (st *Store) SetProfile(profile models.EntityProfile) error {
	return st.setProfileField("*", func(p *models.EntityProfile) { *p = profile })
}

func (st *Store) setProfileField(field string, set func(*models.EntityProfile)) error {
	return st.mutate(func(ev *eventBuffer) error {
		if err := st.closedErr(); err != nil {
			return err
		}
		set(&st.profile)
		ev.add(EventProfileChanged, map[string]any{"field": field})
		return nil
	})
}

// Coordinate

// applyDeviceCoordinate writes the device fix unless a coordinate was
// already placed. It reports whether the store changed.
func (st *Store) applyDeviceCoordinate(coord models.GeoCoordinate) bool {
	applied := false
	st.mutate(func(ev *eventBuffer) error {
		if st.phase == PhaseClosed {
			return nil
		}
		st.locationStatus = ListStatus{Status: FetchReady}
		if st.coordSource != SourceDefault {
			return nil
		}
		st.coordinate = coord
		st.coordSource = SourceDevice
		applied = true
		ev.add(EventCoordinateChanged, map[string]any{
			"source":    string(SourceDevice),
			"latitude":  coord.Latitude,
			"longitude": coord.Longitude,
		})
		return nil
	})
	return applied
}

func (st *Store) failLocation(err error) {
	st.mutate(func(ev *eventBuffer) error {
		if st.phase == PhaseClosed {
			return nil
		}
		st.locationStatus = ListStatus{Status: FetchFailed, Err: err}
		ev.add(EventLocationFailed, map[string]any{"error": err.Error()})
		return nil
	})
}

// beginLocation marks a position query as outstanding. It refuses when the
// session is closed, a query is already running or the coordinate no longer
// comes from the default.
func (st *Store) beginLocation() bool {
	ok := false
	st.mutate(func(ev *eventBuffer) error {
		if st.phase == PhaseClosed || st.locationStatus.Status == FetchLoading || st.coordSource != SourceDefault {
			return nil
		}
		st.locationStatus = ListStatus{Status: FetchLoading}
		ok = true
		return nil
	})
	return ok
}

// PlaceCoordinate replaces the coordinate wholesale with a manual one.
func (st *Store) PlaceCoordinate(coord models.GeoCoordinate) error {
	return st.mutate(func(ev *eventBuffer) error {
		if err := st.closedErr(); err != nil {
			return err
		}
		st.coordinate = coord
		st.coordSource = SourceManual
		ev.add(EventCoordinateChanged, map[string]any{
			"source":    string(SourceManual),
			"latitude":  coord.Latitude,
			"longitude": coord.Longitude,
		})
		return nil
	})
}

// States and catalog

func (st *Store) beginStates() bool {
	ok := false
	st.mutate(func(ev *eventBuffer) error {
		if st.phase == PhaseClosed || st.statesStatus.Status == FetchLoading || st.statesStatus.Status == FetchReady {
			return nil
		}
		st.statesStatus = ListStatus{Status: FetchLoading}
		ok = true
		ev.add(EventStatesLoading, nil)
		return nil
	})
	return ok
}

func (st *Store) applyStates(states []string, err error) {
	st.mutate(func(ev *eventBuffer) error {
		if st.phase == PhaseClosed {
			return nil
		}
		if err != nil {
			st.states = nil
			st.statesStatus = ListStatus{Status: FetchFailed, Err: err}
			ev.add(EventStatesFailed, map[string]any{"error": err.Error()})
			return nil
		}
		st.states = append([]string(nil), states...)
		st.statesStatus = ListStatus{Status: FetchReady}
		ev.add(EventStatesLoaded, map[string]any{"count": len(states)})
		return nil
	})
}

func (st *Store) beginCatalog() bool {
	ok := false
	st.mutate(func(ev *eventBuffer) error {
		if st.phase == PhaseClosed || st.catalogStatus.Status == FetchLoading || st.catalogStatus.Status == FetchReady {
			return nil
		}
		st.catalogStatus = ListStatus{Status: FetchLoading}
		ok = true
		ev.add(EventCatalogLoading, nil)
		return nil
	})
	return ok
}

func (st *Store) applyCatalog(entries []models.CatalogEntry, err error) {
	st.mutate(func(ev *eventBuffer) error {
		if st.phase == PhaseClosed {
			return nil
		}
		if err != nil {
			st.catalog = nil
			st.catalogIDs = nil
			st.catalogStatus = ListStatus{Status: FetchFailed, Err: err}
			ev.add(EventCatalogFailed, map[string]any{"error": err.Error()})
			return nil
		}
		st.catalog = append([]models.CatalogEntry(nil), entries...)
		st.catalogIDs = make(map[int]struct{}, len(entries))
		for _, e := range entries {
			st.catalogIDs[e.ID] = struct{}{}
		}
		st.catalogStatus = ListStatus{Status: FetchReady}
		ev.add(EventCatalogLoaded, map[string]any{"count": len(entries)})
		return nil
	})
}

// Items

// ToggleItem flips the membership of a catalog id and reports whether it is
// selected afterwards.
func (st *Store) ToggleItem(id int) (bool, error) {
	selected := false
	err := st.mutate(func(ev *eventBuffer) error {
		if err := st.closedErr(); err != nil {
			return err
		}
		if st.catalogStatus.Status != FetchReady {
			return errors.NewSelectionRejectedError("items", "catalog not loaded")
		}
		if _, ok := st.catalogIDs[id]; !ok {
			return errors.NewSelectionRejectedError("items", "unknown item id").WithMetadata("itemId", id)
		}
		selected = st.items.Toggle(id)
		ev.add(EventItemToggled, map[string]any{"itemId": id, "selected": selected})
		return nil
	})
	return selected, err
}

// Image

// SetImage replaces the image. The data is copied.
func (st *Store) SetImage(image models.ImageAsset) error {
	image.Data = append([]byte(nil), image.Data...)
	return st.mutate(func(ev *eventBuffer) error {
		if err := st.closedErr(); err != nil {
			return err
		}
		st.image = &image
		ev.add(EventImageChanged, map[string]any{"filename": image.Filename, "size": len(image.Data)})
		return nil
	})
}

func (st *Store) ClearImage() error {
	return st.mutate(func(ev *eventBuffer) error {
		if err := st.closedErr(); err != nil {
			return err
		}
		if st.image == nil {
			return nil
		}
		st.image = nil
		ev.add(EventImageChanged, map[string]any{"filename": "", "size": 0})
		return nil
	})
}

// Submission and lifecycle

// beginSubmit takes the snapshot, validates it and enters Submitting, all
// under one lock.
func (st *Store) beginSubmit(validate func(Snapshot) error) (Snapshot, error) {
	var snap Snapshot
	err := st.mutate(func(ev *eventBuffer) error {
		switch st.phase {
		case PhaseClosed:
			return errors.NewSessionClosedError()
		case PhaseSubmitting:
			return errors.NewSubmissionInFlightError()
		}
		snap = st.snapshotLocked()
		if err := validate(snap); err != nil {
			ev.add(EventValidationFailed, map[string]any{"error": err.Error()})
			return err
		}
		st.phase = PhaseSubmitting
		snap.Phase = PhaseSubmitting
		ev.add(EventPhaseChanged, map[string]any{"from": string(PhaseIdle), "to": string(PhaseSubmitting)})
		return nil
	})
	return snap, err
}

// failSubmit releases the single-flight guard and keeps the form as it is.
func (st *Store) failSubmit(err error) {
	st.mutate(func(ev *eventBuffer) error {
		if st.phase != PhaseSubmitting {
			return nil
		}
		st.phase = PhaseIdle
		ev.add(EventSubmitFailed, map[string]any{"error": err.Error(), "errorCode": string(errors.CodeOf(err))})
		ev.add(EventPhaseChanged, map[string]any{"from": string(PhaseSubmitting), "to": string(PhaseIdle)})
		return nil
	})
}

// completeSubmit discards the form and closes the store.
func (st *Store) completeSubmit(point *models.Point) {
	st.mutate(func(ev *eventBuffer) error {
		if st.phase != PhaseSubmitting {
			return nil
		}
		data := map[string]any{}
		if point != nil {
			data["pointId"] = point.ID
		}
		ev.add(EventSubmitted, data)
		st.closeLocked(ev, "submitted")
		return nil
	})
}

// abandon discards the form without submitting. It reports whether this
// call closed the store.
func (st *Store) abandon() (bool, error) {
	closed := false
	err := st.mutate(func(ev *eventBuffer) error {
		switch st.phase {
		case PhaseClosed:
			return nil
		case PhaseSubmitting:
			return errors.NewSubmissionInFlightError()
		}
		st.closeLocked(ev, "abandoned")
		closed = true
		return nil
	})
	return closed, err
}

func (st *Store) closeLocked(ev *eventBuffer, reason string) {
	from := st.phase
	st.resetForm()
	st.states = nil
	st.catalog = nil
	st.catalogIDs = nil
	st.phase = PhaseClosed
	ev.add(EventPhaseChanged, map[string]any{"from": string(from), "to": string(PhaseClosed)})
	ev.add(EventClosed, map[string]any{"reason": reason})
}

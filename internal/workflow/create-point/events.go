// internal/workflow/create-point/events.go
package createpoint

import (
	"context"
	"time"
)

type EventType string

const (
	EventProfileChanged    EventType = "profile.changed"
	EventCoordinateChanged EventType = "coordinate.changed"
	EventLocationFailed    EventType = "location.failed"
	EventStatesLoading     EventType = "states.loading"
	EventStatesLoaded      EventType = "states.loaded"
	EventStatesFailed      EventType = "states.failed"
	EventStateSelected     EventType = "region.state.selected"
	EventCitiesLoaded      EventType = "region.cities.loaded"
	EventCitiesFailed      EventType = "region.cities.failed"
	EventCitiesDiscarded   EventType = "region.cities.discarded"
	EventCitySelected      EventType = "region.city.selected"
	EventCatalogLoading    EventType = "catalog.loading"
	EventCatalogLoaded     EventType = "catalog.loaded"
	EventCatalogFailed     EventType = "catalog.failed"
	EventItemToggled       EventType = "items.toggled"
	EventImageChanged      EventType = "image.changed"
	EventValidationFailed  EventType = "submission.invalid"
	EventPhaseChanged      EventType = "phase.changed"
	EventSubmitFailed      EventType = "submission.failed"
	EventSubmitted         EventType = "submission.succeeded"
	EventClosed            EventType = "session.closed"
)

// Event describes one store mutation. Seq increases by one per event within
// a session; observers may be called from several goroutines, so Seq is the
// order of record.
type Event struct {
	Type      EventType
	Seq       uint64
	SessionID string
	Timestamp time.Time
	Data      map[string]any
}

// Observer is notified after the mutation is applied and the store lock
// released, so it may call Snapshot. It must not block.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

type ObserverFunc func(ctx context.Context, event Event)

func (f ObserverFunc) OnEvent(ctx context.Context, event Event) {
	f(ctx, event)
}

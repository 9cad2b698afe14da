// internal/workflow/create-point/models.go
package createpoint

import (
	"context"

	"collection-points/internal/common/logger"
	"collection-points/internal/common/observability"
	"collection-points/internal/models"
)

type Locator interface {
	CurrentCoordinate(ctx context.Context) (models.GeoCoordinate, error)
}

type RegionDirectory interface {
	ListStates(ctx context.Context) ([]string, error)
	ListCities(ctx context.Context, stateCode string) ([]string, error)
}

type Catalog interface {
	ListCatalog(ctx context.Context) ([]models.CatalogEntry, error)
}

type PointCreator interface {
	CreatePoint(ctx context.Context, req *models.CreationRequest) (*models.Point, error)
}

type Notifier interface {
	Notify(ctx context.Context, notice models.Notice) error
}

// Dependencies of a session. Directory, Catalog and Creator are required.
// A nil Locator means no position source: the coordinate stays at its
// default until the map is tapped.
type Dependencies struct {
	Locator   Locator
	Directory RegionDirectory
	Catalog   Catalog
	Creator   PointCreator
	Notifier  Notifier
	Logger    logger.Logger
	Telemetry *observability.Observability
}

// Phase is the submission state of a session.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseClosed     Phase = "closed"
)

type FetchStatus string

const (
	FetchIdle    FetchStatus = "idle"
	FetchLoading FetchStatus = "loading"
	FetchReady   FetchStatus = "ready"
	FetchFailed  FetchStatus = "failed"
)

// ListStatus is the state of one asynchronously filled slice of the store.
// Err is set only when Status is FetchFailed.
type ListStatus struct {
	Status FetchStatus
	Err    error
}

type CoordinateSource string

const (
	SourceDefault CoordinateSource = "default"
	SourceDevice  CoordinateSource = "device"
	SourceManual  CoordinateSource = "manual"
)

// Snapshot is a consistent copy of the store. It shares no memory with it.
type Snapshot struct {
	SessionID        string
	Phase            Phase
	Profile          models.EntityProfile
	Coordinate       models.GeoCoordinate
	CoordinateSource CoordinateSource
	Region           models.RegionSelection
	// Items is the selection in ascending id order.
	Items []int
	Image *models.ImageAsset

	States  []string
	Cities  []string
	Catalog []models.CatalogEntry

	StatesStatus   ListStatus
	CitiesStatus   ListStatus
	CatalogStatus  ListStatus
	LocationStatus ListStatus
}

// Selected reports whether id is in the selection.
func (s Snapshot) Selected(id int) bool {
	for _, v := range s.Items {
		if v == id {
			return true
		}
	}
	return false
}

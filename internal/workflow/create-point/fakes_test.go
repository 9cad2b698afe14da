package createpoint

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"collection-points/internal/common/errors"
	"collection-points/internal/common/logger"
	"collection-points/internal/models"

	"github.com/stretchr/testify/require"
)

type fakeLocator struct {
	coord models.GeoCoordinate
	err   error
	gate  chan struct{}
}

func (f *fakeLocator) CurrentCoordinate(ctx context.Context) (models.GeoCoordinate, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return models.GeoCoordinate{}, ctx.Err()
		}
	}
	return f.coord, f.err
}

type fakeDirectory struct {
	mu          sync.Mutex
	states      []string
	statesErr   error
	statesCalls int
	cities      map[string][]string
	citiesErr   map[string]error
	gates       map[string]chan struct{}
	citiesCalls []string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		states: []string{"SP", "RJ"},
		cities: map[string][]string{
			"SP": {"São Paulo", "Campinas"},
			"RJ": {"Rio de Janeiro", "Niterói"},
		},
		citiesErr: map[string]error{},
		gates:     map[string]chan struct{}{},
	}
}

func (f *fakeDirectory) ListStates(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statesCalls++
	if f.statesErr != nil {
		return nil, f.statesErr
	}
	return append([]string(nil), f.states...), nil
}

// gate makes the next city fetches for code block until the returned
// function is called.
func (f *fakeDirectory) gate(code string) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[code] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// ungate lets later city fetches for code resolve at once. Fetches already
// blocked stay blocked.
func (f *fakeDirectory) ungate(code string) {
	f.mu.Lock()
	delete(f.gates, code)
	f.mu.Unlock()
}

func (f *fakeDirectory) ListCities(ctx context.Context, code string) ([]string, error) {
	f.mu.Lock()
	f.citiesCalls = append(f.citiesCalls, code)
	gate := f.gates[code]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.citiesErr[code]; err != nil {
		return nil, err
	}
	return append([]string(nil), f.cities[code]...), nil
}

func (f *fakeDirectory) cityCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.citiesCalls...)
}

type fakeCatalog struct {
	mu      sync.Mutex
	entries []models.CatalogEntry
	err     error
	calls   int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{entries: []models.CatalogEntry{
		{ID: 1, Title: "Lâmpadas"},
		{ID: 2, Title: "Pilhas e Baterias"},
		{ID: 3, Title: "Papéis e Papelão"},
		{ID: 4, Title: "Resíduos Eletrônicos"},
	}}
}

func (f *fakeCatalog) ListCatalog(ctx context.Context) ([]models.CatalogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.CatalogEntry(nil), f.entries...), nil
}

type fakeCreator struct {
	mu       sync.Mutex
	requests []*models.CreationRequest
	err      error
	gate     chan struct{}
	started  chan struct{}
}

func (f *fakeCreator) CreatePoint(ctx context.Context, req *models.CreationRequest) (*models.Point, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	id := len(f.requests)
	gate, started, err := f.gate, f.started, f.err
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &models.Point{
		ID:        id,
		Name:      req.Profile.Name,
		Email:     req.Profile.Email,
		Whatsapp:  req.Profile.Phone,
		UF:        req.Region.StateCode,
		City:      req.Region.CityName,
		Latitude:  req.Coordinate.Latitude,
		Longitude: req.Coordinate.Longitude,
		Items:     req.Items,
	}, nil
}

func (f *fakeCreator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeCreator) last() *models.CreationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []models.Notice
}

func (r *recordingNotifier) Notify(ctx context.Context, notice models.Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
	return nil
}

func (r *recordingNotifier) kinds() []models.NoticeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.NoticeKind, len(r.notices))
	for i, n := range r.notices {
		out[i] = n.Kind
	}
	return out
}

type fixture struct {
	locator   *fakeLocator
	directory *fakeDirectory
	catalog   *fakeCatalog
	creator   *fakeCreator
	notifier  *recordingNotifier
	cfg       *Config
}

func newFixture() *fixture {
	return &fixture{
		locator:   &fakeLocator{coord: models.GeoCoordinate{Latitude: -22.9, Longitude: -47.06}},
		directory: newFakeDirectory(),
		catalog:   newFakeCatalog(),
		creator:   &fakeCreator{},
		notifier:  &recordingNotifier{},
		cfg:       DefaultConfig(),
	}
}

func (f *fixture) deps() Dependencies {
	deps := Dependencies{
		Directory: f.directory,
		Catalog:   f.catalog,
		Creator:   f.creator,
		Notifier:  f.notifier,
		Logger:    logger.NewNoOpLogger(),
	}
	if f.locator != nil {
		deps.Locator = f.locator
	}
	return deps
}

// start opens a session and waits for the startup fetches.
func (f *fixture) start(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), f.deps(), f.cfg)
	require.NoError(t, err)
	t.Cleanup(s.Wait)
	s.Start()
	s.Wait()
	return s
}

// eventWaiter collects events of one type.
type eventWaiter struct {
	ch chan Event
}

func waitFor(s *Session, t EventType) *eventWaiter {
	w := &eventWaiter{ch: make(chan Event, 16)}
	s.Subscribe(ObserverFunc(func(ctx context.Context, ev Event) {
		if ev.Type == t {
			w.ch <- ev
		}
	}))
	return w
}

func (w *eventWaiter) next(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-w.ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func directoryDown() error {
	return errors.NewDirectoryUnavailableError("region-directory", fmt.Errorf("connection refused"))
}

func fillProfile(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.SetName("Ecoponto Campinas"))
	require.NoError(t, s.SetEmail("eco@campinas.org"))
	require.NoError(t, s.SetPhone("19999990000"))
}

// fillRegion selects state and city and waits for the city list.
func fillRegion(t *testing.T, s *Session, state, city string) {
	t.Helper()
	require.NoError(t, s.SelectState(state))
	s.Wait()
	require.NoError(t, s.SelectCity(city))
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"collection-points/internal/common/errors"
	"collection-points/internal/common/logger"
	"collection-points/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	mu     sync.Mutex
	calls  map[string]int
	states []string
	cities map[string][]string
	err    error
}

func (f *fakeDirectory) count(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[key]++
}

func (f *fakeDirectory) ListStates(ctx context.Context) ([]string, error) {
	f.count("states")
	if f.err != nil {
		return nil, f.err
	}
	return f.states, nil
}

func (f *fakeDirectory) ListCities(ctx context.Context, stateCode string) ([]string, error) {
	f.count("cities:" + stateCode)
	if f.err != nil {
		return nil, f.err
	}
	return f.cities[stateCode], nil
}

type fakeCatalog struct {
	calls   int
	entries []models.CatalogEntry
}

func (f *fakeCatalog) ListCatalog(ctx context.Context) ([]models.CatalogEntry, error) {
	f.calls++
	return f.entries, nil
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCachedDirectory_ReadThrough(t *testing.T) {
	mr, rdb := setupRedis(t)
	origin := &fakeDirectory{
		states: []string{"SP", "RJ"},
		cities: map[string][]string{"SP": {"São Paulo", "Campinas"}},
	}
	dir := NewCachedDirectory(origin, rdb, time.Hour, logger.NewTestLogger(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		states, err := dir.ListStates(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"SP", "RJ"}, states)

		cities, err := dir.ListCities(ctx, "AC")
		require.NoError(t, err)
		assert.Empty(t, cities)

		cities, err = dir.ListCities(ctx, "SP")
		require.NoError(t, err)
		assert.Equal(t, []string{"São Paulo", "Campinas"}, cities)
	}

	assert.Equal(t, 1, origin.calls["states"])
	assert.Equal(t, 1, origin.calls["cities:SP"])
	// empty results are never stored
	assert.Equal(t, 3, origin.calls["cities:AC"])

	assert.True(t, mr.Exists(statesKey))
	assert.True(t, mr.Exists(CitiesKey("SP")))
	assert.Equal(t, time.Hour, mr.TTL(statesKey))
}

func TestCachedDirectory_OriginError(t *testing.T) {
	mr, rdb := setupRedis(t)
	origin := &fakeDirectory{err: errors.NewDirectoryUnavailableError("region-directory", fmt.Errorf("down"))}
	dir := NewCachedDirectory(origin, rdb, time.Hour, logger.NewTestLogger(t))

	_, err := dir.ListStates(context.Background())
	assert.ErrorIs(t, err, errors.ErrDirectoryUnavailable)
	assert.False(t, mr.Exists(statesKey))
}

func TestCachedDirectory_CorruptEntry(t *testing.T) {
	mr, rdb := setupRedis(t)
	require.NoError(t, mr.Set(statesKey, "{broken"))

	origin := &fakeDirectory{states: []string{"MG"}}
	dir := NewCachedDirectory(origin, rdb, time.Hour, logger.NewTestLogger(t))

	states, err := dir.ListStates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"MG"}, states)

	stored, err := mr.Get(statesKey)
	require.NoError(t, err)
	assert.JSONEq(t, `["MG"]`, stored)
}

func TestCachedDirectory_RedisUnavailable(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	mock.ExpectGet(statesKey).SetErr(fmt.Errorf("connection refused"))
	data, _ := json.Marshal([]string{"SP"})
	mock.ExpectSet(statesKey, data, 24*time.Hour).SetErr(fmt.Errorf("connection refused"))

	origin := &fakeDirectory{states: []string{"SP"}}
	dir := NewCachedDirectory(origin, rdb, 24*time.Hour, logger.NewTestLogger(t))

	states, err := dir.ListStates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"SP"}, states)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedCatalog(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	entries := []models.CatalogEntry{{ID: 1, Title: "Lâmpadas"}, {ID: 2, Title: "Pilhas e Baterias"}}
	data, _ := json.Marshal(entries)

	mock.ExpectGet(catalogKey).RedisNil()
	mock.ExpectSet(catalogKey, data, time.Hour).SetVal("OK")
	mock.ExpectGet(catalogKey).SetVal(string(data))

	origin := &fakeCatalog{entries: entries}
	cat := NewCachedCatalog(origin, rdb, time.Hour, logger.NewTestLogger(t))

	first, err := cat.ListCatalog(context.Background())
	require.NoError(t, err)
	second, err := cat.ListCatalog(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entries, first)
	assert.Equal(t, entries, second)
	assert.Equal(t, 1, origin.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

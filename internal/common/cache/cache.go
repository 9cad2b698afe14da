// Package cache keeps the static reference data (states, cities, catalog)
// in redis in front of the directory and catalog services.
package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"collection-points/internal/common/logger"
	"collection-points/internal/common/metrics"
	"collection-points/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "points:"
	statesKey   = keyPrefix + "regions:states"
	citiesKey   = keyPrefix + "regions:cities:"
	catalogKey  = keyPrefix + "catalog:items"
	regionCache = "regions"
	itemCache   = "catalog"
)

// Directory is the region directory being cached.
type Directory interface {
	ListStates(ctx context.Context) ([]string, error)
	ListCities(ctx context.Context, stateCode string) ([]string, error)
}

// Catalog is the item catalog being cached.
type Catalog interface {
	ListCatalog(ctx context.Context) ([]models.CatalogEntry, error)
}

// CitiesKey is the cache key of the city list of stateCode.
func CitiesKey(stateCode string) string {
	return citiesKey + stateCode
}

// CachedDirectory is a read-through cache over a Directory. Redis failures
// are logged and the origin is used.
type CachedDirectory struct {
	origin Directory
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedDirectory(origin Directory, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedDirectory {
	return &CachedDirectory{origin: origin, redis: rdb, ttl: ttl, logger: log}
}

func (c *CachedDirectory) ListStates(ctx context.Context) ([]string, error) {
	return readThrough(ctx, c.redis, c.logger, regionCache, statesKey, c.ttl, c.origin.ListStates)
}

func (c *CachedDirectory) ListCities(ctx context.Context, stateCode string) ([]string, error) {
	return readThrough(ctx, c.redis, c.logger, regionCache, CitiesKey(stateCode), c.ttl,
		func(ctx context.Context) ([]string, error) {
			return c.origin.ListCities(ctx, stateCode)
		})
}

// CachedCatalog is a read-through cache over a Catalog.
type CachedCatalog struct {
	origin Catalog
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedCatalog(origin Catalog, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedCatalog {
	return &CachedCatalog{origin: origin, redis: rdb, ttl: ttl, logger: log}
}

func (c *CachedCatalog) ListCatalog(ctx context.Context) ([]models.CatalogEntry, error) {
	return readThrough(ctx, c.redis, c.logger, itemCache, catalogKey, c.ttl, c.origin.ListCatalog)
}

// readThrough serves key from redis or calls fetch and stores its result.
// Empty results are not stored.
func readThrough[T any](
	ctx context.Context,
	rdb redis.Cmdable,
	log logger.Logger,
	cacheName, key string,
	ttl time.Duration,
	fetch func(context.Context) ([]T, error),
) ([]T, error) {
	val, err := rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var cached []T
		if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
			metrics.CacheLookups.WithLabelValues(cacheName, "hit").Inc()
			return cached, nil
		}
		log.Warn("discarding undecodable cache entry", map[string]interface{}{"key": key})
	case stderrors.Is(err, redis.Nil):
	default:
		log.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	metrics.CacheLookups.WithLabelValues(cacheName, "miss").Inc()

	result, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return result, nil
	}
	if err := rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return result, nil
}

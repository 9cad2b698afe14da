// Package app wires configuration, service clients, cache and notifiers
// into the dependencies of a creation session.
package app

import (
	"context"
	"fmt"
	"time"

	"collection-points/internal/common/aws"
	"collection-points/internal/common/cache"
	"collection-points/internal/common/catalog"
	"collection-points/internal/common/config"
	"collection-points/internal/common/database"
	"collection-points/internal/common/geolocation"
	"collection-points/internal/common/logger"
	"collection-points/internal/common/notify"
	"collection-points/internal/common/observability"
	"collection-points/internal/common/points"
	"collection-points/internal/common/regions"
	createpoint "collection-points/internal/workflow/create-point"
)

const (
	redisAttempts     = 3
	redisInitialDelay = 500 * time.Millisecond
)

// App holds the long-lived pieces shared by every session.
type App struct {
	Config    *config.Config
	Logger    logger.Logger
	Locator   createpoint.Locator
	Directory createpoint.RegionDirectory
	Catalog   createpoint.Catalog
	Creator   createpoint.PointCreator
	Notifier  *notify.Multi
	Telemetry *observability.Observability

	redis *database.RedisClient
}

// New builds the dependency graph from cfg. An unreachable cache is not
// fatal: the clients are then used directly.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	a := &App{Config: cfg, Logger: log}

	var directory createpoint.RegionDirectory = regions.NewClient(
		cfg.Services.RegionDirectory.BaseURL,
		config.GetDuration(cfg.Services.RegionDirectory.Timeout),
		regions.Dialect(cfg.Services.RegionDirectory.Dialect),
	)
	var items createpoint.Catalog = catalog.NewClient(
		cfg.Services.Catalog.BaseURL,
		config.GetDuration(cfg.Services.Catalog.Timeout),
	)

	if cfg.Cache.Enabled {
		if rdb, err := a.connectRedis(ctx); err != nil {
			log.Warn("reference data cache disabled", map[string]interface{}{"error": err.Error()})
		} else {
			a.redis = rdb
			directory = cache.NewCachedDirectory(directory, rdb.GetClient(),
				time.Duration(cfg.Cache.RegionsTTL)*time.Second, log)
			items = cache.NewCachedCatalog(items, rdb.GetClient(),
				time.Duration(cfg.Cache.CatalogTTL)*time.Second, log)
			log.Info("reference data cache enabled", map[string]interface{}{"address": cfg.Cache.Address})
		}
	}
	a.Directory = directory
	a.Catalog = items

	a.Creator = points.NewClient(
		cfg.Services.Creation.BaseURL,
		config.GetDuration(cfg.Services.Creation.Timeout),
	)
	a.Locator = newLocator(cfg.Services.Geolocation)

	notifier, err := newNotifier(ctx, cfg.Notifications, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Notifier = notifier

	if cfg.Metrics.Enabled {
		a.Telemetry = observability.New(cfg.App.Name)
	}
	return a, nil
}

func (a *App) connectRedis(ctx context.Context) (*database.RedisClient, error) {
	rdb, err := database.NewRedis(a.Config.Cache)
	if err != nil {
		return nil, err
	}
	err = retryWithBackoff(func() error {
		return rdb.Ping(ctx)
	}, redisAttempts, redisInitialDelay, a.Logger, "Redis connection")
	if err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// newLocator returns nil for provider "none".
func newLocator(cfg config.GeolocationConfig) createpoint.Locator {
	switch cfg.Provider {
	case "http":
		return geolocation.NewHTTPProvider(cfg.BaseURL, config.GetDuration(cfg.Timeout))
	case "static":
		return geolocation.NewStaticProvider(cfg.Latitude, cfg.Longitude)
	default:
		return nil
	}
}

func newNotifier(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*notify.Multi, error) {
	notifiers := []notify.Notifier{notify.NewLogNotifier(log)}
	if !cfg.SNS.Enabled && !cfg.SES.Enabled {
		return notify.NewMulti(notifiers...), nil
	}

	awsCfg, err := aws.LoadConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, err
	}
	if cfg.SNS.Enabled {
		notifiers = append(notifiers, aws.NewSNSNotifier(awsCfg, cfg.SNS.TopicARN))
	}
	if cfg.SES.Enabled {
		notifiers = append(notifiers, aws.NewSESNotifier(awsCfg, cfg.SES.FromEmail))
	}
	return notify.NewMulti(notifiers...), nil
}

// Dependencies returns the session dependencies backed by this app.
func (a *App) Dependencies() createpoint.Dependencies {
	deps := createpoint.Dependencies{
		Locator:   a.Locator,
		Directory: a.Directory,
		Catalog:   a.Catalog,
		Creator:   a.Creator,
		Logger:    a.Logger,
		Telemetry: a.Telemetry,
	}
	if a.Notifier != nil {
		deps.Notifier = a.Notifier
	}
	return deps
}

// NewSession opens a creation session. Call Start on it to begin fetching.
func (a *App) NewSession(ctx context.Context) (*createpoint.Session, error) {
	return createpoint.NewSession(ctx, a.Dependencies(), createpoint.FromConfig(a.Config))
}

func (a *App) Close() error {
	a.Telemetry.Shutdown()
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

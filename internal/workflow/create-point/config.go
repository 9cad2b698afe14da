// internal/workflow/create-point/config.go
package createpoint

import (
	"fmt"
	"time"

	"collection-points/internal/common/config"
)

// Config bounds every external call of a session. A zero timeout leaves the
// call bounded only by the caller's context and the client's own timeout.
type Config struct {
	FetchTimeout    time.Duration
	CatalogTimeout  time.Duration
	LocationTimeout time.Duration
	SubmitTimeout   time.Duration
	// MinItems is the smallest accepted selection size at submit time.
	MinItems int
}

func DefaultConfig() *Config {
	return &Config{
		FetchTimeout:    10 * time.Second,
		CatalogTimeout:  10 * time.Second,
		LocationTimeout: 10 * time.Second,
		SubmitTimeout:   30 * time.Second,
		MinItems:        0,
	}
}

// FromConfig derives the session config from the application config.
func FromConfig(cfg *config.Config) *Config {
	return &Config{
		FetchTimeout:    config.GetDuration(cfg.Services.RegionDirectory.Timeout),
		CatalogTimeout:  config.GetDuration(cfg.Services.Catalog.Timeout),
		LocationTimeout: config.GetDuration(cfg.Services.Geolocation.Timeout),
		SubmitTimeout:   config.GetDuration(cfg.Submission.Timeout),
		MinItems:        cfg.Submission.MinItems,
	}
}

func (c *Config) Validate() error {
	if c.MinItems < 0 {
		return fmt.Errorf("min items must be >= 0, got %d", c.MinItems)
	}
	for name, d := range map[string]time.Duration{
		"fetch":    c.FetchTimeout,
		"catalog":  c.CatalogTimeout,
		"location": c.LocationTimeout,
		"submit":   c.SubmitTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s timeout must be >= 0, got %s", name, d)
		}
	}
	return nil
}

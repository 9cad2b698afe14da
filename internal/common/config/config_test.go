package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
services:
  catalog:
    base_url: http://api.local:3333
  creation:
    base_url: http://api.local:3333
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://api.local:3333", cfg.Services.Catalog.BaseURL)
	assert.Equal(t, "ibge", cfg.Services.RegionDirectory.Dialect)
	assert.Equal(t, 10000, cfg.Services.RegionDirectory.Timeout)
	assert.Equal(t, 30000, cfg.Submission.Timeout)
	assert.Equal(t, 0, cfg.Submission.MinItems)
	assert.Equal(t, "none", cfg.Services.Geolocation.Provider)
	assert.Equal(t, 86400, cfg.Cache.RegionsTTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_FullConfig(t *testing.T) {
	path := writeConfig(t, `
app:
  name: pointctl
  environment: staging
services:
  region_directory:
    base_url: http://regions.local
    dialect: GENERIC
    timeout: 2500
  catalog:
    base_url: http://api.local
  creation:
    base_url: http://api.local
    timeout: 15000
  geolocation:
    provider: static
    latitude: -23.5
    longitude: -46.6
cache:
  enabled: true
  address: redis:6379
  regions_ttl: 60
submission:
  min_items: 1
logging:
  level: debug
  format: json
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "generic", cfg.Services.RegionDirectory.Dialect)
	assert.Equal(t, 2500*time.Millisecond, GetDuration(cfg.Services.RegionDirectory.Timeout))
	assert.Equal(t, 15000, cfg.Services.Creation.Timeout)
	assert.Equal(t, 30000, cfg.Submission.Timeout)
	assert.Equal(t, "static", cfg.Services.Geolocation.Provider)
	assert.InDelta(t, -23.5, cfg.Services.Geolocation.Latitude, 1e-9)
	assert.InDelta(t, -46.6, cfg.Services.Geolocation.Longitude, 1e-9)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 60, cfg.Cache.RegionsTTL)
	assert.Equal(t, 3600, cfg.Cache.CatalogTTL)
	assert.Equal(t, 1, cfg.Submission.MinItems)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("POINTS_SERVICES_CREATION_BASE_URL", "http://override.local")
	t.Setenv("CATALOG_HOST", "http://catalog.from.env")

	path := writeConfig(t, `
services:
  catalog:
    base_url: ${CATALOG_HOST}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://override.local", cfg.Services.Creation.BaseURL)
	assert.Equal(t, "http://catalog.from.env", cfg.Services.Catalog.BaseURL)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "unknown dialect",
			body:    "services:\n  region_directory:\n    dialect: osm\n",
			wantErr: "dialect",
		},
		{
			name:    "unknown geolocation provider",
			body:    "services:\n  geolocation:\n    provider: gps\n",
			wantErr: "geolocation.provider",
		},
		{
			name:    "negative min items",
			body:    "submission:\n  min_items: -1\n",
			wantErr: "min_items",
		},
		{
			name:    "sns without topic",
			body:    "notifications:\n  sns:\n    enabled: true\n",
			wantErr: "topic_arn",
		},
		{
			name:    "ses without sender",
			body:    "notifications:\n  ses:\n    enabled: true\n",
			wantErr: "from_email",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

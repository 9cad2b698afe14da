package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "POINTS"

// Load reads configs/config.yaml (or ./config.yaml), merges
// config.<APP_ENVIRONMENT>.yaml on top, then applies POINTS_* environment
// overrides such as POINTS_SERVICES_CREATION_BASE_URL.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = v.GetString("app.environment")
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // environment overlay is optional

	return finish(v)
}

// LoadFromFile reads exactly one config file.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it even when
// no config file is present.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "pointctl")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("services.region_directory.base_url", "https://servicodados.ibge.gov.br/api/v1/localidades")
	v.SetDefault("services.region_directory.timeout", 10000)
	v.SetDefault("services.region_directory.dialect", "ibge")
	v.SetDefault("services.catalog.base_url", "http://localhost:3333")
	v.SetDefault("services.catalog.timeout", 10000)
	v.SetDefault("services.creation.base_url", "http://localhost:3333")
	v.SetDefault("services.creation.timeout", 30000)
	v.SetDefault("services.geolocation.provider", "none")
	v.SetDefault("services.geolocation.base_url", "http://ip-api.com")
	v.SetDefault("services.geolocation.timeout", 5000)
	v.SetDefault("services.geolocation.latitude", 0.0)
	v.SetDefault("services.geolocation.longitude", 0.0)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.regions_ttl", 86400)
	v.SetDefault("cache.catalog_ttl", 3600)

	v.SetDefault("submission.min_items", 0)
	v.SetDefault("submission.timeout", 30000)

	v.SetDefault("notifications.aws.region", "us-east-1")
	v.SetDefault("notifications.sns.enabled", false)
	v.SetDefault("notifications.sns.topic_arn", "")
	v.SetDefault("notifications.ses.enabled", false)
	v.SetDefault("notifications.ses.from_email", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", ":9090")
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders inside string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	cfg.Services.RegionDirectory.Dialect = strings.ToLower(strings.TrimSpace(cfg.Services.RegionDirectory.Dialect))
	if cfg.Services.RegionDirectory.Dialect == "" {
		cfg.Services.RegionDirectory.Dialect = "generic"
	}
	cfg.Services.Geolocation.Provider = strings.ToLower(strings.TrimSpace(cfg.Services.Geolocation.Provider))
	if cfg.Services.Geolocation.Provider == "" {
		cfg.Services.Geolocation.Provider = "none"
	}

	if cfg.Services.RegionDirectory.Timeout <= 0 {
		cfg.Services.RegionDirectory.Timeout = 10000
	}
	if cfg.Services.Catalog.Timeout <= 0 {
		cfg.Services.Catalog.Timeout = 10000
	}
	if cfg.Services.Creation.Timeout <= 0 {
		cfg.Services.Creation.Timeout = 30000
	}
	if cfg.Services.Geolocation.Timeout <= 0 {
		cfg.Services.Geolocation.Timeout = 5000
	}
	if cfg.Submission.Timeout <= 0 {
		cfg.Submission.Timeout = cfg.Services.Creation.Timeout
	}

	if cfg.Cache.RegionsTTL <= 0 {
		cfg.Cache.RegionsTTL = 86400
	}
	if cfg.Cache.CatalogTTL <= 0 {
		cfg.Cache.CatalogTTL = 3600
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Services.RegionDirectory.Dialect {
	case "generic", "ibge":
	default:
		return fmt.Errorf("services.region_directory.dialect must be generic or ibge, got %q", cfg.Services.RegionDirectory.Dialect)
	}
	if cfg.Services.RegionDirectory.BaseURL == "" {
		return fmt.Errorf("services.region_directory.base_url is required")
	}
	if cfg.Services.Catalog.BaseURL == "" {
		return fmt.Errorf("services.catalog.base_url is required")
	}
	if cfg.Services.Creation.BaseURL == "" {
		return fmt.Errorf("services.creation.base_url is required")
	}

	switch cfg.Services.Geolocation.Provider {
	case "none", "static":
	case "http":
		if cfg.Services.Geolocation.BaseURL == "" {
			return fmt.Errorf("services.geolocation.base_url is required for the http provider")
		}
	default:
		return fmt.Errorf("services.geolocation.provider must be http, static or none, got %q", cfg.Services.Geolocation.Provider)
	}

	if cfg.Submission.MinItems < 0 {
		return fmt.Errorf("submission.min_items must not be negative")
	}
	if cfg.Cache.Enabled && cfg.Cache.Address == "" {
		return fmt.Errorf("cache.address is required when the cache is enabled")
	}
	if cfg.Notifications.SNS.Enabled && cfg.Notifications.SNS.TopicARN == "" {
		return fmt.Errorf("notifications.sns.topic_arn is required when sns is enabled")
	}
	if cfg.Notifications.SES.Enabled && cfg.Notifications.SES.FromEmail == "" {
		return fmt.Errorf("notifications.ses.from_email is required when ses is enabled")
	}
	return nil
}

package config

import "time"

type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Services      ServicesConfig     `mapstructure:"services"`
	Cache         CacheConfig        `mapstructure:"cache"`
	Submission    SubmissionConfig   `mapstructure:"submission"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServicesConfig struct {
	RegionDirectory RegionDirectoryConfig `mapstructure:"region_directory"`
	Catalog         ServiceConfig         `mapstructure:"catalog"`
	Creation        ServiceConfig         `mapstructure:"creation"`
	Geolocation     GeolocationConfig     `mapstructure:"geolocation"`
}

type ServiceConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type RegionDirectoryConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
	Dialect string `mapstructure:"dialect"` // "generic" or "ibge"
}

// GeolocationConfig selects where the default coordinate comes from. With
// Provider "static" the Latitude/Longitude pair is reported as the device fix.
type GeolocationConfig struct {
	Provider  string  `mapstructure:"provider"` // "http", "static" or "none"
	BaseURL   string  `mapstructure:"base_url"`
	Timeout   int     `mapstructure:"timeout"` // milliseconds
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
}

type CacheConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Address    string `mapstructure:"address"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	RegionsTTL int    `mapstructure:"regions_ttl"` // seconds
	CatalogTTL int    `mapstructure:"catalog_ttl"` // seconds
}

type SubmissionConfig struct {
	MinItems int `mapstructure:"min_items"`
	Timeout  int `mapstructure:"timeout"` // milliseconds
}

type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"ses"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

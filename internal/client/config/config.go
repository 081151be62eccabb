package config

import "time"

const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"

	HelpFormMock = "mock"
	HelpFormLive = "live"
)

// Config holds runtime settings for the portal CLI.
//
// Durations are time.Duration values; the JSON loader accepts "15s" style
// strings, the env loader uses time.ParseDuration, flags take seconds.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration

	StorageBackend string
	StoragePath    string

	PendingTTL time.Duration

	HelpFormMode  string
	HelpMockDelay time.Duration

	LogFormat string
	LogLevel  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:4000/api/v1"
	c.RequestTimeout = 15 * time.Second
	c.StorageBackend = StorageSQLite
	c.StoragePath = "portal.db"
	c.PendingTTL = 15 * time.Minute
	c.HelpFormMode = HelpFormMock
	c.HelpMockDelay = 1500 * time.Millisecond
	c.LogFormat = "text"
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (.env included), JSON (if present) and command-line flags
// (if present). Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

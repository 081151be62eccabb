package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "PORTAL_"

// parseEnv loads an optional .env file into the process environment (existing
// variables win) and overlays every PORTAL_* variable that is set.
// A malformed .env file or duration panics, like the other loaders.
func parseEnv(cfg *Config) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
	applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		v, ok := lookup(envPrefix + name)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}

	str("API_BASE_URL", &cfg.APIBaseURL)
	dur("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	str("STORAGE_BACKEND", &cfg.StorageBackend)
	str("STORAGE_PATH", &cfg.StoragePath)
	dur("PENDING_TTL", &cfg.PendingTTL)
	str("HELP_FORM_MODE", &cfg.HelpFormMode)
	dur("HELP_MOCK_DELAY", &cfg.HelpMockDelay)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("LOG_LEVEL", &cfg.LogLevel)
}

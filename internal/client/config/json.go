package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/ghosiportal/internal/flagx"
	"github.com/dmitrijs2005/ghosiportal/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Absent keys leave the corresponding Config field untouched.
type JsonConfig struct {
	APIBaseURL     *string         `json:"api_base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	StorageBackend *string         `json:"storage_backend"`
	StoragePath    *string         `json:"storage_path"`
	PendingTTL     *timex.Duration `json:"pending_ttl"`
	HelpFormMode   *string         `json:"help_form_mode"`
	HelpMockDelay  *timex.Duration `json:"help_mock_delay"`
	LogFormat      *string         `json:"log_format"`
	LogLevel       *string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without either flag nothing happens. Read or unmarshal
// errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setStr := func(src *string, dst *string) {
		if src != nil {
			*dst = *src
		}
	}
	setStr(jc.APIBaseURL, &cfg.APIBaseURL)
	setStr(jc.StorageBackend, &cfg.StorageBackend)
	setStr(jc.StoragePath, &cfg.StoragePath)
	setStr(jc.HelpFormMode, &cfg.HelpFormMode)
	setStr(jc.LogFormat, &cfg.LogFormat)
	setStr(jc.LogLevel, &cfg.LogLevel)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.PendingTTL != nil {
		cfg.PendingTTL = jc.PendingTTL.Duration
	}
	if jc.HelpMockDelay != nil {
		cfg.HelpMockDelay = jc.HelpMockDelay.Duration
	}
}

// Package config loads runtime configuration for the portal CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: PORTAL_* variables, with an optional .env file in the
//     working directory loaded first (already-set variables win).
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   backend API base URL
//	-t int      request timeout (seconds)
//	-s string   local storage path
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "15s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "https://portal.example.org/api/v1",
//	  "request_timeout": "15s",
//	  "storage_backend": "sqlite",
//	  "storage_path": "portal.db",
//	  "pending_ttl": "15m",
//	  "help_form_mode": "live",
//	  "help_mock_delay": "1500ms",
//	  "log_format": "json",
//	  "log_level": "debug"
//	}
//
// # Environment
//
//	PORTAL_API_BASE_URL, PORTAL_REQUEST_TIMEOUT, PORTAL_STORAGE_BACKEND,
//	PORTAL_STORAGE_PATH, PORTAL_PENDING_TTL, PORTAL_HELP_FORM_MODE,
//	PORTAL_HELP_MOCK_DELAY, PORTAL_LOG_FORMAT, PORTAL_LOG_LEVEL
package config

// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load layers file and env on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ResetOnMiss selects the scoring policy: true resets the running score
	// on any wrong guess, false keeps it.
	ResetOnMiss bool `koanf:"reset_on_miss"`

	// MaxSessions caps in-memory play sessions; the oldest is evicted.
	// Zero or negative means unbounded.
	MaxSessions int `koanf:"max_sessions"`

	// SessionIdleTTLSeconds drops sessions nobody touched for this long.
	// Zero disables idle expiry.
	SessionIdleTTLSeconds int `koanf:"session_idle_ttl_seconds"`

	// ProviderBaseURL is the taxonomy provider API root.
	ProviderBaseURL string `koanf:"provider_base_url"`

	// ProviderTimeoutMS bounds each provider request.
	ProviderTimeoutMS int `koanf:"provider_timeout_ms"`

	// ProviderMaxPage is the highest random observation page requested.
	ProviderMaxPage int `koanf:"provider_max_page"`

	// AutocompleteLimit caps the number of suggestions returned.
	AutocompleteLimit int `koanf:"autocomplete_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		ResetOnMiss:           true,
		MaxSessions:           10_000,
		SessionIdleTTLSeconds: 1800,
		ProviderBaseURL:       "https://api.inaturalist.org/v1",
		ProviderTimeoutMS:     10_000,
		ProviderMaxPage:       500,
		AutocompleteLimit:     10,
	}
}

package config

import "time"

// ApplyDefaults fills zero-valued fields with defaults. It is called by
// LoadConfig before validation; DefaultConfig returns a config built
// entirely from defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "tulpa"
	}

	if cfg.Source.DebounceInterval == 0 {
		cfg.Source.DebounceInterval = 100 * time.Millisecond
	}

	if cfg.Store.BusyTimeout == 0 {
		cfg.Store.BusyTimeout = 5 * time.Second
	}

	if cfg.Decisions.MaxAge == 0 {
		cfg.Decisions.MaxAge = 30 * 24 * time.Hour
	}

	if cfg.Dispatch.MaxRetryChain == 0 {
		cfg.Dispatch.MaxRetryChain = 16
	}
	if cfg.Dispatch.MaxRetryElapsed == 0 {
		cfg.Dispatch.MaxRetryElapsed = 24 * time.Hour
	}
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

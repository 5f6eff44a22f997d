package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
var validFormats = map[string]bool{"json": true, "text": true, "console": true}

// Validate checks the configuration for invalid values. It assumes
// defaults have already been applied.
func Validate(cfg *Config) error {
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", cfg.Logging.Level)
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be one of json, text, console; got %q", cfg.Logging.Format)
	}

	if cfg.Source.DebounceInterval < 0 {
		return fmt.Errorf("source.debounce_interval must not be negative")
	}

	if cfg.Decisions.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Decisions.PruneSchedule); err != nil {
			return fmt.Errorf("decisions.prune_schedule is not a valid cron expression: %w", err)
		}
	}
	if cfg.Decisions.MaxAge < 0 {
		return fmt.Errorf("decisions.max_age must not be negative")
	}

	if cfg.Dispatch.MaxRetryChain < 1 {
		return fmt.Errorf("dispatch.max_retry_chain must be at least 1")
	}
	if cfg.Dispatch.MaxRetryElapsed <= 0 {
		return fmt.Errorf("dispatch.max_retry_elapsed must be positive")
	}
	return nil
}

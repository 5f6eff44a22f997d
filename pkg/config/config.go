// Package config defines the YAML configuration for a Tulpa host
// process and its loading, defaulting, and validation logic.
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Source    SourceConfig    `yaml:"source"`
	Store     StoreConfig     `yaml:"store"`
	Decisions DecisionsConfig `yaml:"decisions"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is one of json, text, console.
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig controls the prometheus collector and its HTTP handler.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// ListenAddress serves /metrics when non-empty, e.g. ":9114".
	ListenAddress string `yaml:"listen_address"`

	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}

// SourceConfig locates entity fact files.
type SourceConfig struct {
	// Path is a YAML entity file or a directory of them.
	Path string `yaml:"path"`

	// Watch reloads entities on file changes.
	Watch bool `yaml:"watch"`

	// DebounceInterval is how long to coalesce change events before
	// reloading.
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// StoreConfig configures the SQLite entity store. An empty path
// disables the store (file-source-only deployments).
type StoreConfig struct {
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait for database locks.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// DecisionsConfig configures the decision log.
type DecisionsConfig struct {
	// Path is the SQLite file for decision records. Empty disables
	// recording.
	Path string `yaml:"path"`

	// MaxAge prunes records older than this.
	MaxAge time.Duration `yaml:"max_age"`

	// PruneSchedule is a cron expression for the retention pruner,
	// e.g. "0 3 * * *" for daily at 3 AM. Empty disables pruning.
	PruneSchedule string `yaml:"prune_schedule"`
}

// DispatchConfig bounds retry chains.
type DispatchConfig struct {
	MaxRetryChain   int           `yaml:"max_retry_chain"`
	MaxRetryElapsed time.Duration `yaml:"max_retry_elapsed"`
}

package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigBytes(t *testing.T) {
	yaml := `
logging:
  level: debug
  format: json
metrics:
  enabled: true
  listen_address: ":9114"
source:
  path: ./entities
  watch: true
  debounce_interval: 250ms
store:
  path: ./entities.db
decisions:
  path: ./decisions.db
  max_age: 168h
  prune_schedule: "0 3 * * *"
dispatch:
  max_retry_chain: 8
  max_retry_elapsed: 12h
`
	cfg, err := LoadConfigBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("LoadConfigBytes() failed: %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.ListenAddress != ":9114" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if cfg.Source.Path != "./entities" || !cfg.Source.Watch {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.Source.DebounceInterval != 250*time.Millisecond {
		t.Errorf("DebounceInterval = %v", cfg.Source.DebounceInterval)
	}
	if cfg.Decisions.MaxAge != 168*time.Hour {
		t.Errorf("MaxAge = %v", cfg.Decisions.MaxAge)
	}
	if cfg.Dispatch.MaxRetryChain != 8 {
		t.Errorf("MaxRetryChain = %d", cfg.Dispatch.MaxRetryChain)
	}
	if cfg.Dispatch.MaxRetryElapsed != 12*time.Hour {
		t.Errorf("MaxRetryElapsed = %v", cfg.Dispatch.MaxRetryElapsed)
	}
}

func TestLoadConfigBytes_Defaults(t *testing.T) {
	cfg, err := LoadConfigBytes([]byte("source:\n  path: ./entities\n"))
	if err != nil {
		t.Fatalf("LoadConfigBytes() failed: %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want console", cfg.Logging.Format)
	}
	if cfg.Metrics.Namespace != "tulpa" {
		t.Errorf("Metrics.Namespace = %q, want tulpa", cfg.Metrics.Namespace)
	}
	if cfg.Source.DebounceInterval != 100*time.Millisecond {
		t.Errorf("DebounceInterval = %v", cfg.Source.DebounceInterval)
	}
	if cfg.Dispatch.MaxRetryChain != 16 {
		t.Errorf("MaxRetryChain = %d, want 16", cfg.Dispatch.MaxRetryChain)
	}
	if cfg.Dispatch.MaxRetryElapsed != 24*time.Hour {
		t.Errorf("MaxRetryElapsed = %v, want 24h", cfg.Dispatch.MaxRetryElapsed)
	}
	if cfg.Decisions.MaxAge != 30*24*time.Hour {
		t.Errorf("Decisions.MaxAge = %v, want 720h", cfg.Decisions.MaxAge)
	}
}

func TestLoadConfigBytes_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{"bad level", "logging:\n  level: loud\n", "logging.level"},
		{"bad format", "logging:\n  format: xml\n", "logging.format"},
		{"bad cron", "decisions:\n  prune_schedule: \"not cron\"\n", "prune_schedule"},
		{"negative chain", "dispatch:\n  max_retry_chain: -1\n", "max_retry_chain"},
		{"not yaml", "{{{", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigBytes([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("LoadConfigBytes() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want substring %q", err, tt.wantMsg)
			}
		})
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Errorf("Validate(DefaultConfig()) = %v, want nil", err)
	}
}

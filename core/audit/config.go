package audit

import "fmt"

// Backends understood by Open.
const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendJSONL    = "jsonl"
	BackendRotating = "rotating"
	BackendSQLite   = "sqlite"
)

// RotationConfig controls the rotating JSONL backend.
type RotationConfig struct {
	MaxSizeMB  int  `json:"max_size_mb"`
	MaxBackups int  `json:"max_backups"`
	MaxAgeDays int  `json:"max_age_days"`
	Compress   bool `json:"compress"`
}

// Config selects and configures the audit backend.
type Config struct {
	Backend  string         `json:"backend"`
	Path     string         `json:"path"`
	Capacity int            `json:"capacity"`
	Rotation RotationConfig `json:"rotation"`
}

// SetDefaults fills in unset values.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.Capacity <= 0 {
		c.Capacity = 1024
	}
	if c.Path == "" {
		switch c.Backend {
		case BackendJSONL, BackendRotating:
			c.Path = "jobgate-audit.jsonl"
		case BackendSQLite:
			c.Path = "jobgate-audit.db"
		}
	}
	if c.Rotation.MaxSizeMB <= 0 {
		c.Rotation.MaxSizeMB = 10
	}
	if c.Rotation.MaxBackups <= 0 {
		c.Rotation.MaxBackups = 5
	}
	if c.Rotation.MaxAgeDays <= 0 {
		c.Rotation.MaxAgeDays = 30
	}
}

// Validate checks the backend name.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendNone, BackendMemory, BackendJSONL, BackendRotating, BackendSQLite:
		return nil
	}
	return fmt.Errorf("audit: unknown backend %q", c.Backend)
}

// Open creates the store described by cfg.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendNone:
		return NopStore{}, nil
	case BackendMemory:
		return NewMemoryStore(cfg.Capacity), nil
	case BackendJSONL:
		return NewJSONLStore(cfg.Path)
	case BackendRotating:
		r := cfg.Rotation
		return NewRotatingJSONLStore(cfg.Path, r.MaxSizeMB, r.MaxBackups, r.MaxAgeDays, r.Compress)
	case BackendSQLite:
		return NewSQLiteStore(cfg.Path)
	}
	return nil, fmt.Errorf("audit: unknown backend %q", cfg.Backend)
}

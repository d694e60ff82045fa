// Package config loads the service configuration from a YAML or JSON file
// with JOBGATE_ environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/jobgate/core/audit"
	"github.com/kilianp07/jobgate/core/catalog"
	"github.com/kilianp07/jobgate/core/dispatch"
	"github.com/kilianp07/jobgate/core/metrics"
	"github.com/kilianp07/jobgate/infra/mqtt"
)

// EnvPrefix marks environment overrides. Nested keys use "__", for example
// JOBGATE_SERVER__LISTEN_ADDR.
const EnvPrefix = "JOBGATE_"

type Config struct {
	Server   ServerConfig    `json:"server"`
	Dispatch dispatch.Config `json:"dispatch"`
	Catalog  catalog.Config  `json:"catalog"`
	Audit    audit.Config    `json:"audit"`
	Metrics  metrics.Config  `json:"metrics"`
	MQTT     mqtt.Config     `json:"mqtt"`
	Sentry   SentryConfig    `json:"sentry"`
	Logging  LoggingConfig   `json:"logging"`
}

// Load reads path, applies environment overrides, fills defaults and
// validates every section. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	prefix := strings.ToLower(EnvPrefix)
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), prefix)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills in unset values of every section.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Dispatch.SetDefaults()
	c.Catalog.SetDefaults()
	c.Audit.SetDefaults()
	c.Metrics.SetDefaults()
	if c.MQTT.Enabled {
		c.MQTT.SetDefaults()
	}
	c.Logging.SetDefaults()
	c.Sentry.SetDefaults()
}

// Validate checks every section and returns the first error.
func (c Config) Validate() error {
	validators := []struct {
		name string
		fn   func() error
	}{
		{"server", c.Server.Validate},
		{"dispatch", c.Dispatch.Validate},
		{"catalog", c.Catalog.Validate},
		{"audit", c.Audit.Validate},
		{"mqtt", c.MQTT.Validate},
		{"logging", c.Logging.Validate},
		{"sentry", c.Sentry.Validate},
	}
	for _, v := range validators {
		if err := v.fn(); err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}
	}
	return nil
}

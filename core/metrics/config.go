package metrics

import "github.com/kilianp07/jobgate/core/factory"

// Config lists the sinks to instantiate.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}

// SetDefaults installs a nop sink when nothing is configured.
func (c *Config) SetDefaults() {
	if len(c.Sinks) == 0 {
		c.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	}
}

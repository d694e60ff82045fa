package config

import (
	"fmt"
	"os"
)

// SentryConfig configures error reporting. An empty DSN disables it.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
	ServerName       string  `json:"server_name"`
}

// SetDefaults tags events with the host name and a production environment
// when nothing else is configured.
func (c *SentryConfig) SetDefaults() {
	if c.DSN == "" {
		return
	}
	if c.Environment == "" {
		c.Environment = "production"
	}
	if c.ServerName == "" {
		if h, err := os.Hostname(); err == nil {
			c.ServerName = h
		}
	}
}

// Validate checks the sample rate bounds.
func (c SentryConfig) Validate() error {
	if c.TracesSampleRate < 0 || c.TracesSampleRate > 1 {
		return fmt.Errorf("traces_sample_rate %v outside [0,1]", c.TracesSampleRate)
	}
	return nil
}

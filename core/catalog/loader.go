package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config selects the vocabularies making up the active catalog.
type Config struct {
	// Sets lists built-in vocabularies ("default", "cyrillic").
	Sets []string `json:"sets"`
	// Extra adds individual entries.
	Extra []string `json:"extra"`
	// File points to a YAML or JSON list of additional entries.
	File string `json:"file"`
}

// SetDefaults selects the default vocabulary when nothing is configured.
func (c *Config) SetDefaults() {
	if len(c.Sets) == 0 && len(c.Extra) == 0 && c.File == "" {
		c.Sets = []string{SetDefault}
	}
}

// Validate checks that every named set exists.
func (c Config) Validate() error {
	for _, s := range c.Sets {
		if _, ok := builtins[s]; !ok {
			return fmt.Errorf("unknown catalog set %q", s)
		}
	}
	return nil
}

// Build assembles the catalog described by the configuration.
func Build(cfg Config) (*Catalog, error) {
	var entries []string
	for _, s := range cfg.Sets {
		e, err := Builtin(s)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e...)
	}
	entries = append(entries, cfg.Extra...)
	if cfg.File != "" {
		e, err := LoadFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("catalog file: %w", err)
		}
		entries = append(entries, e...)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	return New(entries...), nil
}

// LoadFile reads a list of entries from a YAML or JSON file, picking the
// decoder from the extension.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return Decode(f, ext)
}

// Decode reads a list of entries from r in the given format.
func Decode(r io.Reader, format string) ([]string, error) {
	var entries []string
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
			return nil, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&entries); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return entries, nil
}

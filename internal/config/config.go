package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the application configuration
type Config struct {
	Paths     *Paths
	Typeahead Typeahead
}

// DefaultConfig returns the default configuration
func DefaultConfig() (*Config, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return &Config{
		Paths:     paths,
		Typeahead: DefaultTypeahead(),
	}, nil
}

// Load loads config overrides from ~/.typeahead/config.json if present.
func Load() (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Reload()
}

// LoadFrom loads the configuration stored at path.
func LoadFrom(path string) (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	cfg.Paths.ConfigPath = path
	return cfg, cfg.Reload()
}

// Reload re-reads the typeahead section from the config file. A missing file
// leaves the defaults in place.
func (c *Config) Reload() error {
	data, err := os.ReadFile(c.Paths.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.Typeahead = DefaultTypeahead()
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	settings, err := parseTypeahead(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", c.Paths.ConfigPath, err)
	}
	c.Typeahead = settings
	return nil
}

// Save persists the typeahead settings, keeping any other sections.
func (c *Config) Save() error {
	if c == nil || c.Paths == nil {
		return nil
	}
	return saveTypeahead(c.Paths.ConfigPath, c.Typeahead)
}

type rawTypeahead struct {
	Style           *string  `json:"style"`
	ThresholdMs     *int     `json:"threshold_ms"`
	ExcludePrograms []string `json:"exclude_programs"`
}

func parseTypeahead(data []byte) (Typeahead, error) {
	settings := DefaultTypeahead()
	var raw struct {
		Typeahead *rawTypeahead `json:"typeahead"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return settings, err
	}
	if raw.Typeahead == nil {
		return settings, nil
	}
	if raw.Typeahead.Style != nil {
		settings.Style = *raw.Typeahead.Style
	}
	if raw.Typeahead.ThresholdMs != nil {
		settings.ThresholdMs = *raw.Typeahead.ThresholdMs
	}
	if raw.Typeahead.ExcludePrograms != nil {
		settings.ExcludePrograms = raw.Typeahead.ExcludePrograms
	}
	return settings, nil
}

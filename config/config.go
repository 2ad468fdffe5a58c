// Package config holds the run settings and loads defaults from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"openports/lookup"
	"openports/monitor"
	"openports/ports"
)

// Config is everything a run needs to know. The same struct is filled from
// the YAML defaults file and then overridden by command-line flags.
type Config struct {
	Sort         string        `yaml:"sort"`
	Bare         bool          `yaml:"bare"`
	Listening    bool          `yaml:"listening"`
	DNS          bool          `yaml:"dns"`
	Regex        string        `yaml:"regex"`
	Continuous   *int          `yaml:"continuous"` // seconds between refreshes; nil for a single report
	StrictFilter bool          `yaml:"strict_filter"`
	DNSTimeout   time.Duration `yaml:"dns_timeout"`
	ServicesFile string        `yaml:"services_file"`
	Verbose      bool          `yaml:"verbose"`
}

// ConfigError describes a setting that cannot be used
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for %s '%v': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Default returns the settings used when neither a file nor flags say otherwise
func Default() Config {
	c := Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills in zero values
func (c *Config) ApplyDefaults() {
	if c.Sort == "" {
		c.Sort = string(ports.SortProgram)
	}
	if c.DNSTimeout == 0 {
		c.DNSTimeout = lookup.DefaultDNSTimeout
	}
	if c.ServicesFile == "" {
		c.ServicesFile = lookup.DefaultServicesFile
	}
}

// Validate rejects settings no run can use
func (c Config) Validate() error {
	if _, ok := ports.ParseSortKey(c.Sort); !ok {
		return &ConfigError{Field: "sort", Value: c.Sort, Err: errors.New("must be one of PID, Port, Program")}
	}
	if c.Continuous != nil && *c.Continuous < 0 {
		return &ConfigError{Field: "continuous", Value: *c.Continuous, Err: errors.New("interval cannot be negative")}
	}
	if c.DNSTimeout < 0 {
		return &ConfigError{Field: "dns_timeout", Value: c.DNSTimeout, Err: errors.New("timeout cannot be negative")}
	}
	return nil
}

// SortKey returns the parsed sort key, falling back to port order
func (c Config) SortKey() ports.SortKey {
	if k, ok := ports.ParseSortKey(c.Sort); ok {
		return k
	}
	return ports.SortPort
}

// FilterPolicy returns the policy for malformed filter expressions
func (c Config) FilterPolicy() ports.FilterPolicy {
	if c.StrictFilter {
		return ports.FilterStrict
	}
	return ports.FilterPermissive
}

// Monitor converts the settings into a loop configuration
func (c Config) Monitor() monitor.Config {
	mc := monitor.Config{
		Sort: c.SortKey(),
		Classify: ports.Options{
			Filter:        c.Regex,
			ListeningOnly: c.Listening,
		},
		FilterPolicy: c.FilterPolicy(),
	}
	if c.Continuous != nil {
		mc.Continuous = true
		mc.Interval = time.Duration(*c.Continuous) * time.Second
	}
	return mc
}

// DefaultPath returns $XDG_CONFIG_HOME/openports/config.yaml or the
// platform equivalent
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "openports", "config.yaml"), nil
}

// Load reads the YAML file at path over the defaults
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.ApplyDefaults()
	return c, nil
}

// LoadDefault reads the file at DefaultPath. A missing file yields Default().
func LoadDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	c, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return c, err
}

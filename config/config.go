package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ansel1/tangview/parser"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the config file looked up by Find.
const FileName = ".tangview.yaml"

// Default values.
const (
	DefaultGroupLevel      = 1
	DefaultPrecision       = 2
	DefaultListen          = "127.0.0.1:8080"
	DefaultSlowThresholdMs = 5000
)

// Config is the resolved tangview configuration.
type Config struct {
	Source          string `yaml:"source"`            // result script URL or path
	GroupLevel      int    `yaml:"group_level"`       // ancestor titles to group tests by
	Precision       int    `yaml:"precision"`         // decimal places in percentages
	NoColor         bool   `yaml:"no_color"`          // disable styled output
	Listen          string `yaml:"listen"`            // serve address
	Callback        string `yaml:"callback"`          // JSONP callback name
	SlowThresholdMs int    `yaml:"slow_threshold_ms"` // files slower than this are listed as slow
}

// fileConfig mirrors Config with pointers so an explicit zero in the file
// can be told apart from an absent key.
type fileConfig struct {
	Source          *string `yaml:"source"`
	GroupLevel      *int    `yaml:"group_level"`
	Precision       *int    `yaml:"precision"`
	NoColor         *bool   `yaml:"no_color"`
	Listen          *string `yaml:"listen"`
	Callback        *string `yaml:"callback"`
	SlowThresholdMs *int    `yaml:"slow_threshold_ms"`
}

// Flags holds command-line values. A field is only applied when its Set
// counterpart is true.
type Flags struct {
	Source          string
	GroupLevel      int
	Precision       int
	NoColor         bool
	Listen          string
	Callback        string
	SlowThresholdMs int

	GroupLevelSet      bool
	PrecisionSet       bool
	NoColorSet         bool
	ListenSet          bool
	CallbackSet        bool
	SlowThresholdMsSet bool
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		GroupLevel:      DefaultGroupLevel,
		Precision:       DefaultPrecision,
		Listen:          DefaultListen,
		Callback:        parser.DefaultCallback,
		SlowThresholdMs: DefaultSlowThresholdMs,
	}
}

// Load reads the config file at path and merges it onto the defaults.
// An empty path searches with Find; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = Find()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.merge(data); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Find returns the first config file found in the working directory or the
// user config directory, or "" if there is none.
func Find() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	p := filepath.Join(configHome, "tangview", FileName)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

func (c *Config) merge(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.Source != nil {
		c.Source = *fc.Source
	}
	if fc.GroupLevel != nil {
		c.GroupLevel = *fc.GroupLevel
	}
	if fc.Precision != nil {
		c.Precision = *fc.Precision
	}
	if fc.NoColor != nil {
		c.NoColor = *fc.NoColor
	}
	if fc.Listen != nil && *fc.Listen != "" {
		c.Listen = *fc.Listen
	}
	if fc.Callback != nil && *fc.Callback != "" {
		c.Callback = *fc.Callback
	}
	if fc.SlowThresholdMs != nil {
		c.SlowThresholdMs = *fc.SlowThresholdMs
	}
	return nil
}

// Apply overrides the configuration with explicitly set flags.
func (c *Config) Apply(f Flags) error {
	if f.Source != "" {
		c.Source = f.Source
	}
	if f.GroupLevelSet {
		c.GroupLevel = f.GroupLevel
	}
	if f.PrecisionSet {
		c.Precision = f.Precision
	}
	if f.NoColorSet {
		c.NoColor = f.NoColor
	}
	if f.ListenSet {
		c.Listen = f.Listen
	}
	if f.CallbackSet {
		c.Callback = f.Callback
	}
	if f.SlowThresholdMsSet {
		c.SlowThresholdMs = f.SlowThresholdMs
	}
	return c.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.GroupLevel < 0 {
		return fmt.Errorf("group_level must not be negative, got %d", c.GroupLevel)
	}
	if c.Precision < 0 || c.Precision > 20 {
		return fmt.Errorf("precision must be between 0 and 20, got %d", c.Precision)
	}
	if c.SlowThresholdMs < 0 {
		return fmt.Errorf("slow_threshold_ms must not be negative, got %d", c.SlowThresholdMs)
	}
	if c.Callback == "" {
		return errors.New("callback must not be empty")
	}
	return nil
}

// SlowThreshold returns SlowThresholdMs as a duration.
func (c *Config) SlowThreshold() time.Duration {
	return time.Duration(c.SlowThresholdMs) * time.Millisecond
}

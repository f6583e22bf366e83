// Package config provides configuration management.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"clinic-tariff/internal/errors"
	"clinic-tariff/internal/logging"
)

// EnvPrefix prefixes environment overrides, e.g. CLINIC_TARIFF_OUTPUT_DEFAULT_FORMAT
const EnvPrefix = "CLINIC_TARIFF"

// FileName is the default config file name in the home directory
const FileName = ".clinic-tariff.yaml"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `mapstructure:"version" yaml:"version"`

	// Tariff selects the price list
	Tariff TariffConfig `mapstructure:"tariff" yaml:"tariff"`

	// Output contains output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// Analytics contains event tracking configuration
	Analytics AnalyticsConfig `mapstructure:"analytics" yaml:"analytics"`

	// Logging contains logging configuration
	Logging logging.Config `mapstructure:"logging" yaml:"logging"`
}

// TariffConfig selects the tariff revision
type TariffConfig struct {
	// Revision is a built-in revision name or alias
	Revision string `mapstructure:"revision" yaml:"revision"`

	// File is an HCL tariff file; it wins over Revision when set
	File string `mapstructure:"file" yaml:"file,omitempty"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `mapstructure:"default_format" yaml:"default_format"`

	// Color enables terminal styling
	Color bool `mapstructure:"color" yaml:"color"`

	// ShowDetails shows the per-branch price breakdown
	ShowDetails bool `mapstructure:"show_details" yaml:"show_details"`
}

// AnalyticsConfig contains event tracking settings
type AnalyticsConfig struct {
	// Enabled turns event tracking on
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// BShare is the fraction of sessions assigned to variant B
	BShare float64 `mapstructure:"b_share" yaml:"b_share"`

	// DebounceMillis is the quiet period for parameter change events
	DebounceMillis int `mapstructure:"debounce_millis" yaml:"debounce_millis"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Tariff: TariffConfig{
			Revision: "current",
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			Color:         true,
			ShowDetails:   true,
		},
		Analytics: AnalyticsConfig{
			Enabled:        false,
			BShare:         0.1,
			DebounceMillis: 500,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns ~/.clinic-tariff.yaml, or the bare file name when
// the home directory is unknown
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// Load reads configuration from path (DefaultPath when empty) and the
// environment. A missing file yields the defaults plus any overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Config("failed to read config file", err).WithContext("path", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Config("failed to stat config file", err).WithContext("path", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Config("failed to decode config", err).WithContext("path", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("tariff.revision", d.Tariff.Revision)
	v.SetDefault("tariff.file", d.Tariff.File)
	v.SetDefault("output.default_format", d.Output.DefaultFormat)
	v.SetDefault("output.color", d.Output.Color)
	v.SetDefault("output.show_details", d.Output.ShowDetails)
	v.SetDefault("analytics.enabled", d.Analytics.Enabled)
	v.SetDefault("analytics.b_share", d.Analytics.BShare)
	v.SetDefault("analytics.debounce_millis", d.Analytics.DebounceMillis)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.development", d.Logging.Development)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	switch c.Output.DefaultFormat {
	case "cli", "json":
	default:
		return errors.Config("unknown output format "+c.Output.DefaultFormat, nil).
			WithContext("field", "output.default_format")
	}
	if c.Analytics.BShare < 0 || c.Analytics.BShare > 1 {
		return errors.Config("analytics.b_share must be within [0, 1]", nil).
			WithContext("field", "analytics.b_share")
	}
	if c.Analytics.DebounceMillis < 0 {
		return errors.Config("analytics.debounce_millis must not be negative", nil).
			WithContext("field", "analytics.debounce_millis")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return errors.Config("unknown logging format "+c.Logging.Format, nil).
			WithContext("field", "logging.format")
	}
	return nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Config("failed to create config directory", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Config("failed to marshal config", err)
	}
	if err := enc.Close(); err != nil {
		return errors.Config("failed to marshal config", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Config("failed to write config file", err).WithContext("path", path)
	}
	return nil
}

// YAML renders the configuration as it would be saved
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", errors.Config("failed to marshal config", err)
	}
	return string(out), nil
}

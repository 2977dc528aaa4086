// =============================================================================
// Genset Invoicer - Configuration Module
// =============================================================================
//
// This module loads the application configuration.
//
// SOURCES (later wins):
//   1. Built-in defaults
//   2. The config file (config.yaml, or the path given with --config)
//   3. Environment variables with the INVOICER_ prefix, dots replaced by
//      underscores, e.g. INVOICER_EXPORT_TIMEOUT=90s
//
// The configuration holds settings only. Bookings, customer policies and
// the company profile live in the state file (see internal/store).
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nilefleet/genset-invoicer/internal/capture"
	"github.com/nilefleet/genset-invoicer/internal/invoicing"
	"github.com/nilefleet/genset-invoicer/internal/logger"
	"github.com/nilefleet/genset-invoicer/internal/render"
	"github.com/nilefleet/genset-invoicer/pkg/utils"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "INVOICER"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// OutputDir receives exported documents and export logs.
	// Default: "./output"
	OutputDir string `mapstructure:"output_dir"`

	// StateFile is the YAML file holding bookings, policies and the
	// company profile between runs.
	// Default: "./invoicer-state.yaml"
	StateFile string `mapstructure:"state_file"`

	Log       logger.Config   `mapstructure:"log"`
	Render    RenderConfig    `mapstructure:"render"`
	Invoicing InvoicingConfig `mapstructure:"invoicing"`
	Export    ExportConfig    `mapstructure:"export"`
	Chrome    ChromeConfig    `mapstructure:"chrome"`
	Import    ImportConfig    `mapstructure:"import"`
}

// RenderConfig holds document rendering settings.
type RenderConfig struct {
	// Theme is the default theme token, e.g. "ledger-pro".
	Theme string `mapstructure:"theme"`
}

// InvoicingConfig holds aggregation settings.
type InvoicingConfig struct {
	// SerialMode is "positional" or "stable".
	SerialMode string `mapstructure:"serial_mode"`

	// DefaultDueDays applies to customers without a policy.
	DefaultDueDays int `mapstructure:"default_due_days"`
}

// ExportConfig holds batch export settings.
type ExportConfig struct {
	// Backend is "pdf" or "chromedp".
	Backend string `mapstructure:"backend"`

	// Timeout bounds one document.
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxRetries is the number of extra capture attempts per document.
	MaxRetries     int           `mapstructure:"max_retries"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`

	// Breaker enables the circuit breaker around capture.
	Breaker        bool          `mapstructure:"breaker"`
	BreakerTimeout time.Duration `mapstructure:"breaker_timeout"`

	// FileFormat names exported files.
	// Placeholders: {serial} {customer} {booking} {uuid} {timestamp} {date} {time}
	FileFormat string `mapstructure:"file_format"`
}

// ChromeConfig holds settings for the chromedp backend.
type ChromeConfig struct {
	RemoteURL string `mapstructure:"remote_url"`
	NoSandbox bool   `mapstructure:"no_sandbox"`
}

// ImportConfig holds booking import settings.
type ImportConfig struct {
	// MaxConcurrency is the number of files parsed at once.
	MaxConcurrency int `mapstructure:"max_concurrency"`

	// TrimFields trims whitespace around every field.
	TrimFields bool `mapstructure:"trim_fields"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration.
//
// PARAMETERS:
//   - configPath: Explicit config file. If empty, config.yaml is looked up
//     in the working directory and $HOME/.config/invoicer; a missing file
//     is not an error.
//
// RETURNS:
//   - The configuration with defaults applied.
//   - An error if the file cannot be parsed or a value is invalid.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/invoicer")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", "./output")
	v.SetDefault("state_file", "./invoicer-state.yaml")

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.time_format", "")

	v.SetDefault("render.theme", string(render.DefaultTheme))

	v.SetDefault("invoicing.serial_mode", string(invoicing.SerialPositional))
	v.SetDefault("invoicing.default_due_days", invoicing.DefaultDueDays)

	v.SetDefault("export.backend", capture.BackendPDF)
	v.SetDefault("export.timeout", "60s")
	v.SetDefault("export.max_retries", 0)
	v.SetDefault("export.initial_backoff", "500ms")
	v.SetDefault("export.breaker", true)
	v.SetDefault("export.breaker_timeout", "30s")
	v.SetDefault("export.file_format", utils.DefaultFileFormat)

	v.SetDefault("chrome.remote_url", "")
	v.SetDefault("chrome.no_sandbox", false)

	v.SetDefault("import.max_concurrency", 4)
	v.SetDefault("import.trim_fields", true)
}

// applyDefaults fills values an explicit empty setting left unusable.
func applyDefaults(cfg *Config) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.StateFile == "" {
		cfg.StateFile = "./invoicer-state.yaml"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Invoicing.SerialMode == "" {
		cfg.Invoicing.SerialMode = string(invoicing.SerialPositional)
	}
	if cfg.Invoicing.DefaultDueDays <= 0 {
		cfg.Invoicing.DefaultDueDays = invoicing.DefaultDueDays
	}
	if cfg.Export.Backend == "" {
		cfg.Export.Backend = capture.BackendPDF
	}
	if cfg.Export.Timeout <= 0 {
		cfg.Export.Timeout = 60 * time.Second
	}
	if cfg.Export.FileFormat == "" {
		cfg.Export.FileFormat = utils.DefaultFileFormat
	}
	if cfg.Import.MaxConcurrency <= 0 {
		cfg.Import.MaxConcurrency = 4
	}
}

// validate checks values that cannot be defaulted.
func (c *Config) validate() error {
	if _, err := render.ParseTheme(c.Render.Theme); err != nil {
		return fmt.Errorf("render.theme: %w", err)
	}
	if _, err := invoicing.ParseSerialMode(c.Invoicing.SerialMode); err != nil {
		return fmt.Errorf("invoicing.serial_mode: %w", err)
	}
	switch strings.ToLower(c.Export.Backend) {
	case capture.BackendPDF, capture.BackendChromedp:
	default:
		return fmt.Errorf("export.backend: unknown backend %q", c.Export.Backend)
	}
	if c.Export.MaxRetries < 0 {
		return fmt.Errorf("export.max_retries must not be negative")
	}
	return nil
}

// Theme returns the configured default theme.
func (c *Config) Theme() render.Theme {
	t, _ := render.ParseTheme(c.Render.Theme)
	return t
}

// SerialMode returns the configured serial mode.
func (c *Config) SerialMode() invoicing.SerialMode {
	m, _ := invoicing.ParseSerialMode(c.Invoicing.SerialMode)
	return m
}

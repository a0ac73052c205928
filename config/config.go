// Package config provides CLI configuration management for the tracka command-line tool.
// It supports loading configuration from YAML files, environment variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultBaseURL       = "https://datatracker.ietf.org"
	DefaultTimeout       = 30 * time.Second
	DefaultOutputFormat  = OutputFormatText
	DefaultConfigDir     = ".tracka"
	DefaultConfigFile    = "config.yaml"
	DefaultWatchInterval = time.Minute
)

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// BaseURL is the root URL of the agenda server. Both the agenda-data
	// API endpoint and shareable agenda links are built from it.
	BaseURL string `yaml:"base_url"`

	// Meeting is the default meeting number used when a command is invoked
	// without one.
	Meeting string `yaml:"meeting,omitempty"`

	// Timezone is the preferred display timezone (IANA name, or the
	// shorthands "meeting" and "local"). Empty means the meeting timezone.
	Timezone string `yaml:"timezone,omitempty"`

	// Timeout is the default timeout for agenda-data requests.
	Timeout time.Duration `yaml:"timeout"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// WatchInterval is how often watch mode recomputes the schedule.
	WatchInterval time.Duration `yaml:"watch_interval"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`

	// DebugLogFile, when set, receives debug log entries as JSON lines in
	// addition to stderr. Relative paths resolve under the config dir.
	DebugLogFile string `yaml:"debug_log_file,omitempty"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		BaseURL:       DefaultBaseURL,
		Timeout:       DefaultTimeout,
		OutputFormat:  DefaultOutputFormat,
		WatchInterval: DefaultWatchInterval,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $TRACKA_CONFIG_DIR if set, otherwise ~/.tracka
func ConfigDir() (string, error) {
	if dir := os.Getenv("TRACKA_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.tracka/config.yaml or $TRACKA_CONFIG_DIR/config.yaml)
// 3. Environment variables (TRACKA_BASE_URL, TRACKA_MEETING, TRACKA_TIMEZONE, ...)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	// Try to load from config file.
	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Overlay environment variables.
	loadFromEnv(cfg)

	// Validate the configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// We need a temp struct for unmarshaling durations as strings.
	type configFile struct {
		BaseURL       string       `yaml:"base_url"`
		Meeting       string       `yaml:"meeting"`
		Timezone      string       `yaml:"timezone"`
		Timeout       string       `yaml:"timeout"`
		OutputFormat  OutputFormat `yaml:"output_format"`
		WatchInterval string       `yaml:"watch_interval"`
		Debug         bool         `yaml:"debug"`
		DebugLogFile  string       `yaml:"debug_log_file"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.BaseURL != "" {
		cfg.BaseURL = fileCfg.BaseURL
	}
	if fileCfg.Meeting != "" {
		cfg.Meeting = fileCfg.Meeting
	}
	if fileCfg.Timezone != "" {
		cfg.Timezone = fileCfg.Timezone
	}
	if fileCfg.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	if fileCfg.WatchInterval != "" {
		interval, err := time.ParseDuration(fileCfg.WatchInterval)
		if err != nil {
			return fmt.Errorf("parsing watch_interval: %w", err)
		}
		cfg.WatchInterval = interval
	}
	if fileCfg.DebugLogFile != "" {
		cfg.DebugLogFile = fileCfg.DebugLogFile
	}
	cfg.Debug = fileCfg.Debug

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("TRACKA_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}

	if v := os.Getenv("TRACKA_MEETING"); v != "" {
		cfg.Meeting = v
	}

	if v := os.Getenv("TRACKA_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}

	if v := os.Getenv("TRACKA_TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = timeout
		}
	}

	if v := os.Getenv("TRACKA_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv("TRACKA_WATCH_INTERVAL"); v != "" {
		if interval, err := time.ParseDuration(v); err == nil {
			cfg.WatchInterval = interval
		}
	}

	if v := os.Getenv("TRACKA_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}

	if v := os.Getenv("TRACKA_DEBUG_LOG_FILE"); v != "" {
		cfg.DebugLogFile = v
	}
}

// Validate checks that the configuration is valid.
func (c *CLIConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an http(s) URL: %q", c.BaseURL)
	}

	if c.Meeting != "" {
		if _, err := strconv.Atoi(c.Meeting); err != nil {
			return fmt.Errorf("meeting must be a number: %q", c.Meeting)
		}
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if c.WatchInterval <= 0 {
		return fmt.Errorf("watch_interval must be positive")
	}

	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or yaml)", c.OutputFormat)
	}

	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *CLIConfig) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	// Ensure config directory exists.
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)

	// Convert to YAML-friendly format with durations as strings.
	type configFile struct {
		BaseURL       string       `yaml:"base_url"`
		Meeting       string       `yaml:"meeting,omitempty"`
		Timezone      string       `yaml:"timezone,omitempty"`
		Timeout       string       `yaml:"timeout"`
		OutputFormat  OutputFormat `yaml:"output_format"`
		WatchInterval string       `yaml:"watch_interval"`
		Debug         bool         `yaml:"debug,omitempty"`
		DebugLogFile  string       `yaml:"debug_log_file,omitempty"`
	}

	fileCfg := configFile{
		BaseURL:       cfg.BaseURL,
		Meeting:       cfg.Meeting,
		Timezone:      cfg.Timezone,
		Timeout:       cfg.Timeout.String(),
		OutputFormat:  cfg.OutputFormat,
		WatchInterval: cfg.WatchInterval.String(),
		Debug:         cfg.Debug,
		DebugLogFile:  cfg.DebugLogFile,
	}

	data, err := yaml.Marshal(&fileCfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ResolveDebugLogPath returns the absolute path of the debug log file,
// resolving relative paths under the config dir. Empty when unset.
func (c *CLIConfig) ResolveDebugLogPath() (string, error) {
	if c.DebugLogFile == "" {
		return "", nil
	}
	if filepath.IsAbs(c.DebugLogFile) {
		return c.DebugLogFile, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.DebugLogFile), nil
}

// AgendaDataURL returns the agenda-data endpoint URL for a meeting number.
func (c *CLIConfig) AgendaDataURL(meeting string) string {
	return fmt.Sprintf("%s/api/meeting/%s/agenda-data", strings.TrimRight(c.BaseURL, "/"), meeting)
}

// AgendaPageURL returns the human-facing agenda page URL for a meeting
// number. Shareable filtered links append a query string to it.
func (c *CLIConfig) AgendaPageURL(meeting string) string {
	return fmt.Sprintf("%s/meeting/%s/agenda", strings.TrimRight(c.BaseURL, "/"), meeting)
}

// TextAgendaURL returns the non-interactive text agenda fallback URL,
// offered when the agenda-data fetch fails.
func (c *CLIConfig) TextAgendaURL(meeting string) string {
	return fmt.Sprintf("%s/meeting/%s/agenda.txt", strings.TrimRight(c.BaseURL, "/"), meeting)
}

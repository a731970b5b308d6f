// Package config loads harness configuration and resolves the harness
// home directory where run history and exported reports live.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	// Enabled turns run history recording on
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database; empty means
	// <home>/history/runs.db
	DBPath string `yaml:"db_path"`

	// RetentionDays is how long `history clear` keeps runs (0 = clear all)
	RetentionDays int `yaml:"retention_days"`
}

// Config holds the harness configuration options.
type Config struct {
	// LogLevel sets console verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// Color controls report colorization: auto, always, never
	Color string `yaml:"color"`

	// ReportDir is where `report --output` exports land; empty means
	// <home>/reports
	ReportDir string `yaml:"report_dir"`

	// FixturesDir is a fallback directory for scenario paths given on the
	// command line that do not resolve on their own
	FixturesDir string `yaml:"fixtures_dir"`

	// History configures the run history store
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with the defaults the harness ships with.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Color:    "auto",
		History: HistoryConfig{
			Enabled:       true,
			RetentionDays: 90,
		},
	}
}

// LoadConfig loads configuration from path, merging over defaults.
// A missing file is not an error; a malformed one is.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.Color != "" {
		cfg.Color = fileCfg.Color
	}
	if fileCfg.ReportDir != "" {
		cfg.ReportDir = fileCfg.ReportDir
	}
	if fileCfg.FixturesDir != "" {
		cfg.FixturesDir = fileCfg.FixturesDir
	}

	// Detect whether the history section was present before merging it,
	// so `history: {enabled: false}` is honored.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if section, exists := rawMap["history"]; exists && section != nil {
			sectionMap, _ := section.(map[string]interface{})
			if _, exists := sectionMap["enabled"]; exists {
				cfg.History.Enabled = fileCfg.History.Enabled
			}
			if _, exists := sectionMap["db_path"]; exists {
				cfg.History.DBPath = fileCfg.History.DBPath
			}
			if _, exists := sectionMap["retention_days"]; exists {
				cfg.History.RetentionDays = fileCfg.History.RetentionDays
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromHome loads <home>/config.yaml.
func LoadConfigFromHome() (*Config, error) {
	home, err := GetHarnessHome()
	if err != nil {
		return nil, err
	}
	return LoadConfig(filepath.Join(home, "config.yaml"))
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color %q, must be one of: auto, always, never", c.Color)
	}

	if c.History.RetentionDays < 0 {
		return fmt.Errorf("history.retention_days must be >= 0, got %d", c.History.RetentionDays)
	}

	return nil
}

// HistoryDBPath resolves the history database path, defaulting into the
// harness home directory.
func (c *Config) HistoryDBPath() (string, error) {
	if c.History.DBPath != "" {
		return c.History.DBPath, nil
	}
	home, err := GetHarnessHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history", "runs.db"), nil
}

// ReportPath resolves the export path for a report file name.
func (c *Config) ReportPath(name string) (string, error) {
	if c.ReportDir != "" {
		return filepath.Join(c.ReportDir, name), nil
	}
	home, err := GetHarnessHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "reports", name), nil
}

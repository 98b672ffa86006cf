package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// HistoryConfig represents run history configuration
type HistoryConfig struct {
	// Enabled records every successful run in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database (empty = default under the envsummary home)
	DBPath string `yaml:"db_path"`
}

// Config represents envsummary configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// CoerceEnvironment turns non-integer Environment values into their leading
	// integer (or 0) instead of failing the run
	CoerceEnvironment bool `yaml:"coerce_environment"`

	// WorkbookPath, when set, also writes the summary as an .xlsx workbook
	WorkbookPath string `yaml:"workbook_path"`

	// EdgesPath, when set, also writes the first and last generations of each
	// Environment block as CSV
	EdgesPath string `yaml:"edges_path"`

	// History contains run history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:          "info",
		CoerceEnvironment: false,
		WorkbookPath:      "",
		EdgesPath:         "",
		History: HistoryConfig{
			Enabled: false,
			DBPath:  "",
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.CoerceEnvironment {
		cfg.CoerceEnvironment = true
	}
	if fileCfg.WorkbookPath != "" {
		cfg.WorkbookPath = fileCfg.WorkbookPath
	}
	if fileCfg.EdgesPath != "" {
		cfg.EdgesPath = fileCfg.EdgesPath
	}

	// Only fields present in the history section override defaults
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if historyMap, ok := rawMap["history"].(map[string]interface{}); ok {
			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = fileCfg.History.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = fileCfg.History.DBPath
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .envsummary/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, homeDirName, "config.yaml"))
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(logLevel *string, coerceEnvironment *bool, workbookPath *string, edgesPath *string, historyEnabled *bool, historyDB *string) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if coerceEnvironment != nil {
		c.CoerceEnvironment = *coerceEnvironment
	}
	if workbookPath != nil {
		c.WorkbookPath = *workbookPath
	}
	if edgesPath != nil {
		c.EdgesPath = *edgesPath
	}
	if historyEnabled != nil {
		c.History.Enabled = *historyEnabled
	}
	if historyDB != nil {
		c.History.DBPath = *historyDB
		// Naming a database implies recording to it
		c.History.Enabled = true
	}
}

// Validate validates the configuration values
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

	if c.WorkbookPath != "" && filepath.Ext(c.WorkbookPath) != ".xlsx" {
		return fmt.Errorf("workbook_path %q must end in .xlsx", c.WorkbookPath)
	}

	return nil
}

// ResolveHistoryDBPath returns the configured history database path, or the
// default location under the envsummary home
func (c *Config) ResolveHistoryDBPath() (string, error) {
	if c.History.DBPath != "" {
		return c.History.DBPath, nil
	}
	return GetHistoryDBPath()
}

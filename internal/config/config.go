// Package config handles tool configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents configuration stored in ~/.config/refsift/config.yml.
// Zero values fall back to the documented defaults at load time.
type Config struct {
	// DatabasePath is where the extraction database lives.
	DatabasePath string `yaml:"database_path,omitempty"`

	// SimilarityThreshold is the title similarity above which two records
	// are considered duplicates.
	SimilarityThreshold float64 `yaml:"similarity_threshold,omitempty"`

	// Enrichment settings. RateLimit is requests per second; Mailto is
	// the contact email sent for polite API use.
	EnrichmentEnabled   bool    `yaml:"enrichment_enabled"`
	RateLimit           float64 `yaml:"rate_limit,omitempty"`
	Mailto              string  `yaml:"mailto,omitempty"`
	TitleMatchThreshold float64 `yaml:"title_match_threshold,omitempty"`

	// ExportFormats are the default formats for the export command.
	ExportFormats []string `yaml:"export_formats,omitempty"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "refsift"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"

	// DefaultRateLimit is the API request rate in requests per second.
	DefaultRateLimit = 5.0
	// DefaultSimilarityThreshold is the duplicate detection cutoff.
	DefaultSimilarityThreshold = 0.85
	// DefaultTitleMatchThreshold gates title-search enrichment matches.
	DefaultTitleMatchThreshold = 0.85
)

// configCache caches the loaded config.
var configCache *Config

// Path returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/refsift/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load loads the configuration file and applies defaults.
// Returns a default config (not an error) if the file doesn't exist.
func Load() (*Config, error) {
	if configCache != nil {
		return configCache, nil
	}

	cfg := defaultConfig()

	path := Path()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyDefaults(cfg)
	if cfg.DatabasePath != "" {
		cfg.DatabasePath = ExpandTilde(cfg.DatabasePath)
	}

	configCache = cfg
	return cfg, nil
}

// ResetCache clears the cached config.
// Useful for testing.
func ResetCache() {
	configCache = nil
}

func defaultConfig() *Config {
	return &Config{
		EnrichmentEnabled: true,
	}
}

func applyDefaults(cfg *Config) {
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = defaultDatabasePath()
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.TitleMatchThreshold <= 0 {
		cfg.TitleMatchThreshold = DefaultTitleMatchThreshold
	}
	if len(cfg.ExportFormats) == 0 {
		cfg.ExportFormats = []string{"bibtex", "json"}
	}
}

func defaultDatabasePath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "refsift.db"
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, ConfigDir, "refsift.db")
}

// ExpandTilde expands a leading ~ to the user's home directory.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

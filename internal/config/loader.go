package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name looked up in the
// current and home directories.
const DefaultConfigFile = ".topwords.yaml"

// xdgConfigFile is the file name inside XDGConfigDir.
const xdgConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .topwords.yaml configuration file.
// Zero values leave the corresponding Config field unchanged.
type File struct {
	URL       string `yaml:"url,omitempty"`
	Top       int    `yaml:"top,omitempty"`
	Workers   int    `yaml:"workers,omitempty"`
	Timeout   string `yaml:"timeout,omitempty"`
	Proxy     string `yaml:"proxy,omitempty"`
	UserAgent string `yaml:"userAgent,omitempty"`
	Extract   string `yaml:"extract,omitempty"`
	Format    string `yaml:"format,omitempty"`
	NoColor   *bool  `yaml:"noColor,omitempty"`
}

// Apply overlays the values set in the file onto cfg.
func (f *File) Apply(cfg *Config) error {
	if f.URL != "" {
		cfg.URL = f.URL
	}
	if f.Top != 0 {
		cfg.TopN = f.Top
	}
	if f.Workers != 0 {
		cfg.Workers = f.Workers
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, f.Timeout)
		}
		cfg.Timeout = d
	}
	if f.Proxy != "" {
		cfg.ProxyAddress = f.Proxy
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.Extract != "" {
		cfg.Extract = f.Extract
	}
	if f.Format != "" {
		cfg.Format = f.Format
	}
	if f.NoColor != nil {
		cfg.NoColor = *f.NoColor
	}
	return nil
}

// LoadConfigFile reads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. .topwords.yaml in the current directory
// 3. config.yaml in XDGConfigDir
// 4. .topwords.yaml in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), xdgConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

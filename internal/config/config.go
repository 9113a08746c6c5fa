// Package config handles loading configuration from .mdlinks.yaml and
// .mdlinks.toml files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFileName is the default configuration file name.
const DefaultConfigFileName = ".mdlinks.yaml"

// ConfigFileNames lists the names searched for, in order of preference.
var ConfigFileNames = []string{".mdlinks.yaml", ".mdlinks.yml", ".mdlinks.toml"}

// Config represents the complete configuration structure.
type Config struct {
	// Format is the default output format (list, text, json, yaml, toml, xml, markdown).
	Format string `yaml:"format" toml:"format"`

	// Concurrency is the number of files extracted in parallel.
	Concurrency int `yaml:"concurrency" toml:"concurrency"`

	Scan   ScanConfig   `yaml:"scan" toml:"scan"`
	Ignore IgnoreConfig `yaml:"ignore" toml:"ignore"`
}

// ScanConfig controls which files are discovered.
type ScanConfig struct {
	// Include are glob patterns matched against root-relative paths.
	// Example: "docs/**"
	Include []string `yaml:"include" toml:"include"`

	// Exclude are glob patterns for paths to skip.
	// Example: "vendor/**", "**/CHANGELOG.md"
	Exclude []string `yaml:"exclude" toml:"exclude"`

	// Extensions overrides the default Markdown extensions.
	Extensions []string `yaml:"extensions" toml:"extensions"`
}

// IgnoreConfig holds all ignore rules.
type IgnoreConfig struct {
	// Domains to ignore (automatically includes subdomains).
	// Example: "example.com" will also match "www.example.com", "api.example.com".
	Domains []string `yaml:"domains" toml:"domains"`

	// Patterns are glob patterns for URL matching.
	// Example: "*.local/*", "*/internal/*"
	Patterns []string `yaml:"patterns" toml:"patterns"`

	// Regex are regular expression patterns for URL matching.
	// Example: ".*\\.test$", ".*/v[0-9]+/draft/.*"
	Regex []string `yaml:"regex" toml:"regex"`
}

// Load reads configuration from .mdlinks.yaml in the current directory.
// Returns an empty config if the file doesn't exist (not an error).
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFileName)
}

// LoadFrom reads configuration from a specific path. The decoder is chosen
// by extension: .toml files use TOML, everything else YAML.
// Returns an empty config if the file doesn't exist (not an error).
// Returns an error only if the file exists but cannot be parsed.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}

// Find returns the path of the nearest config file, searching startDir and
// then each parent directory. It returns "" when none exists.
func Find(startDir string) string {
	dir := startDir

	for {
		for _, name := range ConfigFileNames {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// FindAndLoad searches for a config file starting from the given directory
// and walking up to parent directories until it finds one or reaches root.
func FindAndLoad(startDir string) (*Config, error) {
	path := Find(startDir)
	if path == "" {
		return &Config{}, nil
	}
	return LoadFrom(path)
}

// IsEmpty returns true if the config has no ignore rules defined.
func (c *Config) IsEmpty() bool {
	return len(c.Ignore.Domains) == 0 &&
		len(c.Ignore.Patterns) == 0 &&
		len(c.Ignore.Regex) == 0
}

// Merge combines another config into this one. Lists are additive; scalar
// values from other replace this config's when set.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Format != "" {
		c.Format = other.Format
	}
	if other.Concurrency > 0 {
		c.Concurrency = other.Concurrency
	}
	c.Scan.Include = append(c.Scan.Include, other.Scan.Include...)
	c.Scan.Exclude = append(c.Scan.Exclude, other.Scan.Exclude...)
	c.Scan.Extensions = append(c.Scan.Extensions, other.Scan.Extensions...)
	c.Ignore.Domains = append(c.Ignore.Domains, other.Ignore.Domains...)
	c.Ignore.Patterns = append(c.Ignore.Patterns, other.Ignore.Patterns...)
	c.Ignore.Regex = append(c.Ignore.Regex, other.Ignore.Regex...)
}

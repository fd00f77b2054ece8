// Package config holds the build configuration for a docset publish run.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Product      string   `yaml:"product,omitempty"`
	Name         string   `yaml:"name,omitempty"`
	SiteName     string   `yaml:"site_name,omitempty"`
	HostName     string   `yaml:"host_name,omitempty"`
	SiteBasePath string   `yaml:"site_base_path,omitempty"`
	Legacy       bool     `yaml:"legacy,omitempty"`
	Parallelism  int      `yaml:"parallelism,omitempty"`
	Monikers     []string `yaml:"monikers,omitempty"`

	// DataSchemaTypes lists schema types published as data files instead
	// of pages.
	DataSchemaTypes []string `yaml:"data_schema_types,omitempty"`

	Output       OutputConfig       `yaml:"output"`
	Localization LocalizationConfig `yaml:"localization"`
	Registry     RegistryConfig     `yaml:"registry"`
	Events       EventsConfig       `yaml:"events"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Json      bool   `yaml:"json"` // Emit structured JSON pages instead of final markup
	Pdf       bool   `yaml:"pdf"`  // Enable PDF URL prefix generation
}

// LocalizationConfig controls locale handling.
type LocalizationConfig struct {
	DefaultLocale string `yaml:"default_locale,omitempty"`
	Bilingual     bool   `yaml:"bilingual,omitempty"`
}

// RegistryConfig selects the publish registry backing store.
type RegistryConfig struct {
	// Driver is "memory" (default) or "sqlite".
	Driver string `yaml:"driver,omitempty"`
	// Path is the sqlite database path; ":memory:" is accepted.
	Path string `yaml:"path,omitempty"`
}

// EventsConfig controls the optional NATS publish reporter.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Normalize(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

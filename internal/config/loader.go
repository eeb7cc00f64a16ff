package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".domaindive"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .domaindive configuration file.
// Every field is optional; unset fields keep the current configuration.
type File struct {
	// Analyzers replaces the analyzer list.
	Analyzers []string `yaml:"analyzers,omitempty"`

	// Resolvers replaces the DNS servers.
	Resolvers []string `yaml:"resolvers,omitempty"`

	// Timeouts holds per source timeouts as Go durations ("3s", "500ms").
	Timeouts Timeouts `yaml:"timeouts,omitempty"`

	// UserAgent replaces the HTTP User-Agent.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Geolocation configures the geolocation service.
	Geolocation Geolocation `yaml:"geolocation,omitempty"`

	// Concurrency replaces the fetch concurrency.
	Concurrency int `yaml:"concurrency,omitempty"`

	// BatchSize replaces the number of addresses analyzed concurrently.
	BatchSize int `yaml:"batchSize,omitempty"`
}

// Timeouts holds the per source timeouts of a configuration file.
type Timeouts struct {
	DNS         time.Duration `yaml:"dns,omitempty"`
	Whois       time.Duration `yaml:"whois,omitempty"`
	HTTP        time.Duration `yaml:"http,omitempty"`
	TLS         time.Duration `yaml:"tls,omitempty"`
	Geolocation time.Duration `yaml:"geolocation,omitempty"`
}

// Geolocation holds the geolocation service settings of a configuration file.
type Geolocation struct {
	// Endpoint is the service base URL; the IP address is appended.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Rate is the request budget per minute. A pointer so that an explicit
	// 0 (disable the limiter) differs from "not set".
	Rate *int `yaml:"rate,omitempty"`
}

// Apply copies every field set in the file onto c.
func (f *File) Apply(c *Config) {
	if len(f.Analyzers) > 0 {
		c.Analyzers = append([]string(nil), f.Analyzers...)
	}
	if len(f.Resolvers) > 0 {
		c.Resolvers = append([]string(nil), f.Resolvers...)
	}
	if f.Timeouts.DNS != 0 {
		c.DNSTimeout = f.Timeouts.DNS
	}
	if f.Timeouts.Whois != 0 {
		c.WhoisTimeout = f.Timeouts.Whois
	}
	if f.Timeouts.HTTP != 0 {
		c.HTTPTimeout = f.Timeouts.HTTP
	}
	if f.Timeouts.TLS != 0 {
		c.TLSTimeout = f.Timeouts.TLS
	}
	if f.Timeouts.Geolocation != 0 {
		c.GeolocationTimeout = f.Timeouts.Geolocation
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.Geolocation.Endpoint != "" {
		c.GeolocationEndpoint = f.Geolocation.Endpoint
	}
	if f.Geolocation.Rate != nil {
		c.GeolocationRate = *f.Geolocation.Rate
	}
	if f.Concurrency != 0 {
		c.Concurrency = f.Concurrency
	}
	if f.BatchSize != 0 {
		c.BatchSize = f.BatchSize
	}
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error based on whether the path was
// explicitly specified by the user.
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
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .domaindive in the current directory
// 3. Look for .domaindive in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

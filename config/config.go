// Package config provides configuration loading and management for
// Tripweave.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete Tripweave configuration.
type Config struct {
	Model  ModelConfig  `yaml:"model"`
	Places PlacesConfig `yaml:"places"`
	Enrich EnrichConfig `yaml:"enrich"`
	Store  StoreConfig  `yaml:"store"`
}

// ModelConfig configures the LLM client.
type ModelConfig struct {
	// Provider is the default LLM provider (gemini, openai, anthropic).
	Provider string `yaml:"provider"`
	// Endpoint overrides the provider's API base URL (empty = default).
	Endpoint string `yaml:"endpoint"`
	// Default is the default model identifier.
	Default string `yaml:"default"`
	// Timeout is the maximum time to wait for model responses.
	Timeout time.Duration `yaml:"timeout"`
}

// PlacesConfig configures place resolution.
type PlacesConfig struct {
	// Resolver selects the strategy: "google" or "table".
	Resolver string `yaml:"resolver"`
	// Endpoint overrides the places API base URL (empty = default).
	Endpoint string `yaml:"endpoint"`
	// Language is the response language for lookups.
	Language string `yaml:"language"`
}

// EnrichConfig configures the plan enricher.
type EnrichConfig struct {
	// LookupDelay separates consecutive place lookups.
	LookupDelay time.Duration `yaml:"lookup_delay"`
}

// StoreConfig configures the session/result store.
type StoreConfig struct {
	// Backend selects the store: "memory" or "nats".
	Backend string `yaml:"backend"`
	// NATSURL is the NATS server URL when backend is "nats".
	NATSURL string `yaml:"nats_url"`
	// Bucket is the KV bucket name when backend is "nats".
	Bucket string `yaml:"bucket"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Provider: "gemini",
			Default:  "gemini-2.0-flash",
			Timeout:  3 * time.Minute,
		},
		Places: PlacesConfig{
			Resolver: "google",
			Language: "en",
		},
		Enrich: EnrichConfig{
			LookupDelay: 200 * time.Millisecond,
		},
		Store: StoreConfig{
			Backend: "memory",
			Bucket:  "tripweave-plans",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf("model.provider must be gemini, openai, or anthropic")
	}
	if c.Model.Default == "" {
		return fmt.Errorf("model.default is required")
	}
	switch c.Places.Resolver {
	case "google", "table":
	default:
		return fmt.Errorf("places.resolver must be google or table")
	}
	if c.Enrich.LookupDelay < 0 {
		return fmt.Errorf("enrich.lookup_delay must not be negative")
	}
	switch c.Store.Backend {
	case "memory":
	case "nats":
		if c.Store.NATSURL == "" {
			return fmt.Errorf("store.nats_url is required for the nats backend")
		}
	default:
		return fmt.Errorf("store.backend must be memory or nats")
	}
	return nil
}

// Merge overlays non-zero fields from other onto c. Used for layered
// config precedence; unset fields never clobber earlier layers.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.Model.Provider != "" {
		c.Model.Provider = other.Model.Provider
	}
	if other.Model.Endpoint != "" {
		c.Model.Endpoint = other.Model.Endpoint
	}
	if other.Model.Default != "" {
		c.Model.Default = other.Model.Default
	}
	if other.Model.Timeout != 0 {
		c.Model.Timeout = other.Model.Timeout
	}
	if other.Places.Resolver != "" {
		c.Places.Resolver = other.Places.Resolver
	}
	if other.Places.Endpoint != "" {
		c.Places.Endpoint = other.Places.Endpoint
	}
	if other.Places.Language != "" {
		c.Places.Language = other.Places.Language
	}
	if other.Enrich.LookupDelay != 0 {
		c.Enrich.LookupDelay = other.Enrich.LookupDelay
	}
	if other.Store.Backend != "" {
		c.Store.Backend = other.Store.Backend
	}
	if other.Store.NATSURL != "" {
		c.Store.NATSURL = other.Store.NATSURL
	}
	if other.Store.Bucket != "" {
		c.Store.Bucket = other.Store.Bucket
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

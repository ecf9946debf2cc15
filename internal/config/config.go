// Package config loads the CLI configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kauzarc/sparql-http-client/internal/logging"
)

// Config holds all CLI configuration.
type Config struct {
	Endpoint  EndpointConfig  `yaml:"endpoint"`
	UserAgent UserAgentConfig `yaml:"user_agent"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   logging.Config  `yaml:"logging"`
}

// EndpointConfig holds the target SPARQL service settings.
type EndpointConfig struct {
	URL string `yaml:"url"`
}

// UserAgentConfig holds the User-Agent triple sent with every request.
// Public endpoints such as Wikidata require a contact entry.
type UserAgentConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Contact string `yaml:"contact"`
}

// RateLimitConfig caps outgoing requests; zero disables the limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			URL: "https://query.wikidata.org/sparql",
		},
		UserAgent: UserAgentConfig{
			Name:    "sparql-http-client-cli",
			Version: "0.3.0",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("SPARQL_ENDPOINT"); v != "" {
		c.Endpoint.URL = v
	}
	if v := os.Getenv("SPARQL_UA_NAME"); v != "" {
		c.UserAgent.Name = v
	}
	if v := os.Getenv("SPARQL_UA_VERSION"); v != "" {
		c.UserAgent.Version = v
	}
	if v := os.Getenv("SPARQL_UA_CONTACT"); v != "" {
		c.UserAgent.Contact = v
	}
	if v := os.Getenv("SPARQL_RATE_LIMIT"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit.RequestsPerSecond = rps
		}
	}
	if v := os.Getenv("SPARQL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SPARQL_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

func (c *Config) validate() error {
	if c.Endpoint.URL == "" {
		return fmt.Errorf("endpoint URL must not be empty")
	}
	if c.UserAgent.Name == "" {
		return fmt.Errorf("user agent name must not be empty")
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst < 1 {
		c.RateLimit.Burst = 1
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}

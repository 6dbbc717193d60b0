// ABOUTME: Configuration loading and parsing for expert-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/2389/expert-gateway/internal/generate"
)

// Defaults applied when the corresponding field is absent.
const (
	DefaultHTTPAddr     = ":8080"
	DefaultTimeout      = 30 * time.Second
	DefaultHistoryLimit = 20
)

// Config represents the complete expert-gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Generator GeneratorConfig `yaml:"generator"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// CatalogConfig holds agent catalog configuration. When Path is empty
// the built-in agent roster is used.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// GeneratorConfig holds response generator configuration
type GeneratorConfig struct {
	Provider     string `yaml:"provider"` // "stub" (default), "openai", or "anthropic"
	Model        string `yaml:"model"`
	APIKey       string `yaml:"api_key"`
	HistoryLimit int    `yaml:"history_limit"`

	Timeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" && !c.Tailscale.Enabled {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Generator.Provider == "" {
		c.Generator.Provider = generate.ProviderStub
	}
	if c.Generator.Timeout == 0 {
		c.Generator.Timeout = DefaultTimeout
	}
	if c.Generator.HistoryLimit == 0 {
		c.Generator.HistoryLimit = DefaultHistoryLimit
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	switch c.Generator.Provider {
	case generate.ProviderStub, generate.ProviderOpenAI, generate.ProviderAnthropic:
	default:
		return fmt.Errorf("generator.provider must be one of stub, openai, anthropic (got %q)", c.Generator.Provider)
	}

	if c.Generator.HistoryLimit < 0 {
		return fmt.Errorf("generator.history_limit must not be negative")
	}

	if c.Generator.Timeout < 0 {
		return fmt.Errorf("generator.timeout must not be negative")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Generator.TimeoutRaw != "" {
		cfg.Generator.Timeout, err = time.ParseDuration(cfg.Generator.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing generator.timeout %q: %w", cfg.Generator.TimeoutRaw, err)
		}
	}

	return nil
}

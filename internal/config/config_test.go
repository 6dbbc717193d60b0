// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

database:
  path: "./test.db"

auth:
  jwt_secret: "test-secret"

catalog:
  path: "./agents.toml"

generator:
  provider: "openai"
  model: "gpt-4o-mini"
  api_key: "sk-test"
  timeout: "45s"
  history_limit: 10

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:8080")
	}
	if cfg.Database.Path != "./test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./test.db")
	}
	if cfg.Auth.JWTSecret != "test-secret" {
		t.Errorf("Auth.JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "test-secret")
	}
	if cfg.Catalog.Path != "./agents.toml" {
		t.Errorf("Catalog.Path = %q, want %q", cfg.Catalog.Path, "./agents.toml")
	}
	if cfg.Generator.Provider != "openai" {
		t.Errorf("Generator.Provider = %q, want %q", cfg.Generator.Provider, "openai")
	}
	if cfg.Generator.Model != "gpt-4o-mini" {
		t.Errorf("Generator.Model = %q, want %q", cfg.Generator.Model, "gpt-4o-mini")
	}
	if cfg.Generator.Timeout != 45*time.Second {
		t.Errorf("Generator.Timeout = %v, want %v", cfg.Generator.Timeout, 45*time.Second)
	}
	if cfg.Generator.HistoryLimit != 10 {
		t.Errorf("Generator.HistoryLimit = %d, want 10", cfg.Generator.HistoryLimit)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, `
database:
  path: "./test.db"

auth:
  jwt_secret: "test-secret"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != DefaultHTTPAddr {
		t.Errorf("Server.HTTPAddr = %q, want default %q", cfg.Server.HTTPAddr, DefaultHTTPAddr)
	}
	if cfg.Generator.Provider != "stub" {
		t.Errorf("Generator.Provider = %q, want default %q", cfg.Generator.Provider, "stub")
	}
	if cfg.Generator.Timeout != DefaultTimeout {
		t.Errorf("Generator.Timeout = %v, want default %v", cfg.Generator.Timeout, DefaultTimeout)
	}
	if cfg.Generator.HistoryLimit != DefaultHistoryLimit {
		t.Errorf("Generator.HistoryLimit = %d, want default %d", cfg.Generator.HistoryLimit, DefaultHistoryLimit)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "secret-from-env")
	t.Setenv("TEST_API_KEY", "sk-from-env")

	configPath := writeConfig(t, `
database:
  path: "./test.db"

auth:
  jwt_secret: "${TEST_JWT_SECRET}"

generator:
  provider: "anthropic"
  api_key: "${TEST_API_KEY}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.JWTSecret != "secret-from-env" {
		t.Errorf("Auth.JWTSecret = %q, want %q", cfg.Auth.JWTSecret, "secret-from-env")
	}
	if cfg.Generator.APIKey != "sk-from-env" {
		t.Errorf("Generator.APIKey = %q, want %q", cfg.Generator.APIKey, "sk-from-env")
	}
}

func TestLoad_EnvVarExpansion_UnsetVar(t *testing.T) {
	os.Unsetenv("UNSET_VAR_FOR_TEST")

	configPath := writeConfig(t, `
database:
  path: "./test.db"

auth:
  jwt_secret: "literal-secret"

generator:
  api_key: "${UNSET_VAR_FOR_TEST}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Unset env vars should expand to empty string
	if cfg.Generator.APIKey != "" {
		t.Errorf("Generator.APIKey = %q, want empty string for unset env var", cfg.Generator.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr "missing colon"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
database:
  path: "./test.db"

auth:
  jwt_secret: "test-secret"

generator:
  timeout: "invalid-duration"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid duration, got nil")
	}
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name          string
		configContent string
		wantErrSubstr string
	}{
		{
			name: "missing database path",
			configContent: `
auth:
  jwt_secret: "test-secret"
`,
			wantErrSubstr: "database.path is required",
		},
		{
			name: "missing jwt secret",
			configContent: `
database:
  path: "./test.db"
`,
			wantErrSubstr: "auth.jwt_secret is required",
		},
		{
			name: "unknown provider",
			configContent: `
database:
  path: "./test.db"
auth:
  jwt_secret: "test-secret"
generator:
  provider: "bard"
`,
			wantErrSubstr: "generator.provider",
		},
		{
			name: "negative history limit",
			configContent: `
database:
  path: "./test.db"
auth:
  jwt_secret: "test-secret"
generator:
  history_limit: -1
`,
			wantErrSubstr: "history_limit",
		},
		{
			name: "negative timeout",
			configContent: `
database:
  path: "./test.db"
auth:
  jwt_secret: "test-secret"
generator:
  timeout: "-5s"
`,
			wantErrSubstr: "generator.timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, tt.configContent)

			_, err := Load(configPath)
			if err == nil {
				t.Errorf("Load() expected error containing %q, got nil", tt.wantErrSubstr)
				return
			}

			if !strings.Contains(err.Error(), tt.wantErrSubstr) {
				t.Errorf("Load() error = %q, want error containing %q", err.Error(), tt.wantErrSubstr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FOO", "bar")
	t.Setenv("BAZ", "qux")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single env var",
			input:    "${FOO}",
			expected: "bar",
		},
		{
			name:     "env var with surrounding text",
			input:    "prefix-${FOO}-suffix",
			expected: "prefix-bar-suffix",
		},
		{
			name:     "multiple env vars",
			input:    "${FOO}/${BAZ}",
			expected: "bar/qux",
		},
		{
			name:     "no env vars",
			input:    "no-vars-here",
			expected: "no-vars-here",
		},
		{
			name:     "unset env var",
			input:    "${UNSET_VAR}",
			expected: "",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvVars(tt.input)
			if result != tt.expected {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidate_TailscaleConfig(t *testing.T) {
	tests := []struct {
		name          string
		cfg           Config
		wantErr       bool
		wantErrSubstr string
	}{
		{
			name: "tailscale enabled allows empty server address",
			cfg: Config{
				Tailscale: TailscaleConfig{Enabled: true, Hostname: "expert-gateway"},
				Database:  DatabaseConfig{Path: "./test.db"},
				Auth:      AuthConfig{JWTSecret: "test-secret"},
				Generator: GeneratorConfig{Provider: "stub"},
			},
			wantErr: false,
		},
		{
			name: "tailscale enabled requires hostname",
			cfg: Config{
				Tailscale: TailscaleConfig{Enabled: true, Hostname: ""},
				Database:  DatabaseConfig{Path: "./test.db"},
				Auth:      AuthConfig{JWTSecret: "test-secret"},
				Generator: GeneratorConfig{Provider: "stub"},
			},
			wantErr:       true,
			wantErrSubstr: "tailscale.hostname is required",
		},
		{
			name: "tailscale with all options set",
			cfg: Config{
				Tailscale: TailscaleConfig{
					Enabled:   true,
					Hostname:  "expert-gateway",
					AuthKey:   "tskey-auth-xxx",
					StateDir:  "/tmp/ts-state",
					Ephemeral: true,
				},
				Database:  DatabaseConfig{Path: "./test.db"},
				Auth:      AuthConfig{JWTSecret: "test-secret"},
				Generator: GeneratorConfig{Provider: "stub"},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErrSubstr)
					return
				}
				if !strings.Contains(err.Error(), tt.wantErrSubstr) {
					t.Errorf("Validate() error = %q, want error containing %q", err.Error(), tt.wantErrSubstr)
				}
			} else {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			}
		})
	}
}

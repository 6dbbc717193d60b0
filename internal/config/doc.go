// Package config handles configuration loading for expert-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion. The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${EXPERT_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	generator:
//	  timeout: "30s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: ":8080"
//
// Database:
//
//	database:
//	  path: "/var/lib/expert-gateway/gateway.db"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${EXPERT_JWT_SECRET}"   # required
//
// Agent catalog (built-in roster when path is unset):
//
//	catalog:
//	  path: "/etc/expert-gateway/agents.toml"
//
// Response generator:
//
//	generator:
//	  provider: "stub"        # stub, openai, anthropic
//	  model: ""               # provider default when empty
//	  api_key: "${OPENAI_API_KEY}"
//	  timeout: "30s"
//	  history_limit: 20
//
// Tailscale:
//
//	tailscale:
//	  enabled: false
//	  hostname: "expert-gateway"
//	  auth_key: "${TS_AUTHKEY}"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config

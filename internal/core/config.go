package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	LogLevel     string `yaml:"logLevel"`     // debug, info, warn, error
	AgentBaseURL string `yaml:"agentBaseURL"` // agent service endpoint
	AgentAPIKey  string `yaml:"agentAPIKey"`  // required for agent operations
	StoreBaseURL string `yaml:"storeBaseURL"` // itinerary store endpoint
	StoreAPIKey  string `yaml:"storeAPIKey"`  // optional store credential
	OwnerKey     string `yaml:"ownerKey"`     // owner-or-session key for list fetches
}

// LoadConfig loads configuration from an optional YAML file layered under
// environment variables. Environment variables win.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		LogLevel: "info",
		OwnerKey: "anon",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, &ConfigError{Field: "file", Message: fmt.Sprintf("read %s", path), Err: err}
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigError{Field: "file", Message: fmt.Sprintf("parse %s", path), Err: err}
		}
	}

	applyEnv(&cfg.LogLevel, "LOG_LEVEL")
	applyEnv(&cfg.AgentBaseURL, "AGENT_BASE_URL")
	applyEnv(&cfg.AgentAPIKey, "AGENT_API_KEY")
	applyEnv(&cfg.StoreBaseURL, "STORE_BASE_URL")
	applyEnv(&cfg.StoreAPIKey, "STORE_API_KEY")
	applyEnv(&cfg.OwnerKey, "OWNER_KEY")

	// DEBUG flag overrides log level
	if os.Getenv("DEBUG") == "1" {
		cfg.LogLevel = "debug"
	}

	// API keys are not required here; they are validated when the
	// respective client is constructed.
	return cfg, nil
}

// applyEnv overwrites dst when the environment variable is set.
func applyEnv(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

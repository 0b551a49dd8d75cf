package agent

import (
	"fmt"
	"time"
)

// Config contains configuration for the agent service client.
type Config struct {
	// BaseURL is the agent service base URL
	BaseURL string

	// APIKey authenticates requests to the agent service
	APIKey string

	// Timeout is the HTTP request timeout for non-streaming calls
	// Default: 30 seconds
	Timeout time.Duration

	// StreamTimeout bounds a full streamed turn
	// Default: 5 minutes
	StreamTimeout time.Duration
}

// Validate checks that required config fields are set.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("BaseURL is required")
	}

	if c.APIKey == "" {
		return fmt.Errorf("APIKey is required")
	}

	return nil
}

// SetDefaults fills in default values for optional fields.
func (c *Config) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}

	if c.StreamTimeout == 0 {
		c.StreamTimeout = 5 * time.Minute
	}
}

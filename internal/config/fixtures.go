package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FixtureAPIConfig holds configuration for the REST API used to create test fixtures
type FixtureAPIConfig struct {
	BaseURL  string
	Username string
	Password string
}

// LoadFixtureAPIConfig loads fixture API configuration from environment variables
func LoadFixtureAPIConfig(getenv func(string) string) (*FixtureAPIConfig, error) {
	config := FixtureAPIConfig{
		BaseURL:  strings.TrimRight(getenv("E2E_BASE_URL"), "/"),
		Username: getenv("API_USERNAME"),
		Password: getenv("API_PASSWORD"),
	}

	// Validate required fields
	if config.BaseURL == "" {
		return nil, fmt.Errorf("E2E_BASE_URL is required")
	}
	if _, err := url.ParseRequestURI(config.BaseURL); err != nil {
		return nil, fmt.Errorf("E2E_BASE_URL is invalid: %w", err)
	}
	if (config.Username == "") != (config.Password == "") {
		return nil, fmt.Errorf("API_USERNAME and API_PASSWORD must be set together")
	}

	return &config, nil
}

// HasCredentials reports whether basic auth credentials are configured
func (c *FixtureAPIConfig) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

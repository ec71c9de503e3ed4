package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// API settings
	BaseURL         string
	APIToken        string
	APIReadyTimeout int

	// Poller settings
	PollInterval    time.Duration
	MaxPollAttempts int
	MaxPollDuration time.Duration
	FetchRetries    int
	FetchRetryDelay time.Duration

	// Export settings
	ExportDir string
}

// NewConfig creates a new configuration with default values. Polling is
// unbounded by default and a failed status fetch abandons the poll
// without retrying, matching the behavior of the web frontend this tool
// replaces.
func NewConfig() *Config {
	return &Config{
		BaseURL:         "http://localhost:58081",
		APIReadyTimeout: 30,
		PollInterval:    2 * time.Second,
		MaxPollAttempts: 0,
		MaxPollDuration: 0,
		FetchRetries:    0,
		FetchRetryDelay: time.Second,
		ExportDir:       ".",
	}
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() {
	if baseURL := os.Getenv("AGENTCTL_BASE_URL"); baseURL != "" {
		c.BaseURL = baseURL
	}

	if token := os.Getenv("AGENTCTL_API_TOKEN"); token != "" {
		c.APIToken = token
	}

	if timeout := os.Getenv("AGENTCTL_API_READY_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			c.APIReadyTimeout = t
		}
	}

	if interval := os.Getenv("AGENTCTL_POLL_INTERVAL"); interval != "" {
		if i, err := strconv.Atoi(interval); err == nil {
			c.PollInterval = time.Duration(i) * time.Millisecond
		}
	}

	if attempts := os.Getenv("AGENTCTL_MAX_POLL_ATTEMPTS"); attempts != "" {
		if a, err := strconv.Atoi(attempts); err == nil {
			c.MaxPollAttempts = a
		}
	}

	if duration := os.Getenv("AGENTCTL_MAX_POLL_DURATION"); duration != "" {
		if d, err := strconv.Atoi(duration); err == nil {
			c.MaxPollDuration = time.Duration(d) * time.Millisecond
		}
	}

	if retries := os.Getenv("AGENTCTL_FETCH_RETRIES"); retries != "" {
		if r, err := strconv.Atoi(retries); err == nil {
			c.FetchRetries = r
		}
	}

	if delay := os.Getenv("AGENTCTL_FETCH_RETRY_DELAY"); delay != "" {
		if d, err := strconv.Atoi(delay); err == nil {
			c.FetchRetryDelay = time.Duration(d) * time.Millisecond
		}
	}

	if exportDir := os.Getenv("AGENTCTL_EXPORT_DIR"); exportDir != "" {
		c.ExportDir = exportDir
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	if c.APIReadyTimeout <= 0 {
		return fmt.Errorf("API ready timeout must be positive, got: %d", c.APIReadyTimeout)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got: %s", c.PollInterval)
	}

	if c.MaxPollAttempts < 0 {
		return fmt.Errorf("max poll attempts must be non-negative, got: %d", c.MaxPollAttempts)
	}

	if c.MaxPollDuration < 0 {
		return fmt.Errorf("max poll duration must be non-negative, got: %s", c.MaxPollDuration)
	}

	if c.FetchRetries < 0 {
		return fmt.Errorf("fetch retries must be non-negative, got: %d", c.FetchRetries)
	}

	return nil
}

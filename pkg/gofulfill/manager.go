// Package gofulfill answers conversational-platform webhook intents by checking
// plan entitlements and updating subscription plans in a backing store.
package gofulfill

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultReportBaseURL is the prefix of generated report links
const DefaultReportBaseURL = "https://your-reporting-system.com/reports"

// Config holds Manager configuration
type Config struct {
	// ReportBaseURL is prepended to "/<feature>/<user_id>" when building report links
	// Default: DefaultReportBaseURL
	ReportBaseURL string

	// Logger receives storage failures and dispatch events
	// If nil, logging is disabled
	Logger Logger

	// Metrics records intents and storage operations
	// If nil, metrics are not recorded
	Metrics Metrics
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.ReportBaseURL == "" {
		return nil
	}
	u, err := url.Parse(c.ReportBaseURL)
	if err != nil {
		return fmt.Errorf("invalid report base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("report base URL must be absolute: %q", c.ReportBaseURL)
	}
	return nil
}

// Manager implements the entitlement checker, the plan updater and the
// intent dispatcher on top of a Storage.
type Manager struct {
	storage       Storage
	reportBaseURL string
	logger        Logger
	metrics       Metrics
}

// NewManager creates a Manager backed by storage
func NewManager(storage Storage, config *Config) (*Manager, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if config == nil {
		config = &Config{}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	m := &Manager{
		storage:       storage,
		reportBaseURL: strings.TrimRight(config.ReportBaseURL, "/"),
		logger:        config.Logger,
		metrics:       config.Metrics,
	}
	if m.reportBaseURL == "" {
		m.reportBaseURL = DefaultReportBaseURL
	}
	if m.logger == nil {
		m.logger = &NoopLogger{}
	}
	if m.metrics == nil {
		m.metrics = &NoopMetrics{}
	}
	return m, nil
}

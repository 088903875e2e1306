package api

import (
	"context"
	"fmt"

	"github.com/mihaimyh/gofulfill/pkg/gofulfill"
)

// DefaultMaxBodyBytes bounds the size of an inbound webhook payload
const DefaultMaxBodyBytes int64 = 1 << 20

// Dispatcher answers one decoded webhook request.
// *gofulfill.Manager implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *gofulfill.WebhookRequest) gofulfill.Result
}

// Config holds configuration for the webhook handler
type Config struct {
	// Dispatcher answers decoded requests
	// If nil, the handler runs degraded: every webhook call answers 500
	Dispatcher Dispatcher

	// Logger receives decode failures and degraded-mode rejections
	// If nil, logging is disabled
	Logger gofulfill.Logger

	// MaxBodyBytes limits the request body size
	// Default: DefaultMaxBodyBytes
	MaxBodyBytes int64
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("maxBodyBytes must not be negative")
	}
	return nil
}

// NewHandler creates a new webhook handler with the given configuration
func NewHandler(config Config) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.MaxBodyBytes == 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if config.Logger == nil {
		config.Logger = &gofulfill.NoopLogger{}
	}
	return &Handler{
		config: config,
	}, nil
}

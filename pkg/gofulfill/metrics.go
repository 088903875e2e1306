package gofulfill

import "time"

// Metrics defines the interface for tracking fulfillment and storage operations.
type Metrics interface {
	// RecordIntent records a dispatched intent and its outcome
	// ("ok", "rejected", "missing_parameter", "unknown_intent").
	RecordIntent(intent, outcome string)

	// RecordStorageOperation records the duration and status of a storage operation.
	RecordStorageOperation(operation string, duration time.Duration, err error)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordIntent(intent, outcome string)                                       {}
func (n *NoopMetrics) RecordStorageOperation(operation string, duration time.Duration, err error) {}

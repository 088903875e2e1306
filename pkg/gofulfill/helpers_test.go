package gofulfill_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mihaimyh/gofulfill/pkg/gofulfill"
	"github.com/mihaimyh/gofulfill/storage/memory"
)

// FailingStorage wraps a storage and fails on specific operations
type FailingStorage struct {
	gofulfill.Storage
	failHasAccess  error
	failUpdatePlan error
}

func (f *FailingStorage) HasAccess(ctx context.Context, userID, feature string) (bool, error) {
	if f.failHasAccess != nil {
		return false, f.failHasAccess
	}
	return f.Storage.HasAccess(ctx, userID, feature)
}

func (f *FailingStorage) UpdatePlan(ctx context.Context, userID, plan string) (int64, error) {
	if f.failUpdatePlan != nil {
		return 0, f.failUpdatePlan
	}
	return f.Storage.UpdatePlan(ctx, userID, plan)
}

// recordingStorage captures the values handed to storage
type recordingStorage struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingStorage) HasAccess(_ context.Context, userID, feature string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, []string{"has_access", userID, feature})
	return false, nil
}

func (r *recordingStorage) UpdatePlan(_ context.Context, userID, plan string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, []string{"update_plan", userID, plan})
	return 1, nil
}

// recordingLogger keeps every message logged at error level
type recordingLogger struct {
	gofulfill.NoopLogger
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Error(msg string, _ ...gofulfill.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

// recordingMetrics counts intents by outcome
type recordingMetrics struct {
	gofulfill.NoopMetrics
	mu       sync.Mutex
	intents  map[string]int
	storeErr int
}

func (m *recordingMetrics) RecordIntent(intent, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.intents == nil {
		m.intents = make(map[string]int)
	}
	m.intents[intent+"/"+outcome]++
}

func (m *recordingMetrics) RecordStorageOperation(_ string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.storeErr++
	}
}

var errBackend = errors.New("backend unavailable")

// newTestStorage returns a memory storage seeded with two users and two reports
func newTestStorage() *memory.Storage {
	s := memory.New()
	s.SetUserPlan("test_user", "Gold")
	s.SetUserPlan("bronze_user", "Bronze")
	s.SetAccess("test_feature", "Bronze", false)
	s.SetAccess("test_feature", "Silver", true)
	s.SetAccess("test_feature", "Gold", true)
	return s
}

func newTestManager(t *testing.T, storage gofulfill.Storage, config *gofulfill.Config) *gofulfill.Manager {
	t.Helper()

	manager, err := gofulfill.NewManager(storage, config)
	require.NoError(t, err)
	return manager
}

func webhookRequest(intent string, params gofulfill.Parameters) *gofulfill.WebhookRequest {
	return &gofulfill.WebhookRequest{
		QueryResult: gofulfill.QueryResult{
			Intent:     gofulfill.Intent{DisplayName: intent},
			Parameters: params,
		},
	}
}

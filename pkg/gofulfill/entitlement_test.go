package gofulfill_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mihaimyh/gofulfill/pkg/gofulfill"
)

func TestManager_CheckEntitlement(t *testing.T) {
	manager := newTestManager(t, newTestStorage(), nil)
	ctx := context.Background()

	t.Run("entitled", func(t *testing.T) {
		res := manager.CheckEntitlement(ctx, "test_user", "test_feature")
		assert.True(t, res.Entitled)
		assert.Equal(t, gofulfill.MsgAccessGranted, res.Message)
	})

	t.Run("plan does not include feature", func(t *testing.T) {
		res := manager.CheckEntitlement(ctx, "bronze_user", "test_feature")
		assert.False(t, res.Entitled)
		assert.Equal(t, gofulfill.MsgNotIncluded, res.Message)
	})

	t.Run("unknown user is not entitled", func(t *testing.T) {
		res := manager.CheckEntitlement(ctx, "ghost", "test_feature")
		assert.False(t, res.Entitled)
		assert.Equal(t, gofulfill.MsgNotIncluded, res.Message)
	})

	t.Run("unknown feature is not entitled", func(t *testing.T) {
		res := manager.CheckEntitlement(ctx, "test_user", "missing_feature")
		assert.False(t, res.Entitled)
		assert.Equal(t, gofulfill.MsgNotIncluded, res.Message)
	})
}

func TestManager_CheckEntitlement_EmptyInput(t *testing.T) {
	logger := &recordingLogger{}
	storage := &recordingStorage{}
	manager := newTestManager(t, storage, &gofulfill.Config{Logger: logger})

	res := manager.CheckEntitlement(context.Background(), "", "test_feature")
	assert.False(t, res.Entitled)
	assert.Equal(t, gofulfill.MsgEntitlementError, res.Message)
	assert.Empty(t, storage.calls, "storage must not be queried with empty input")
	assert.Len(t, logger.errors, 1)
}

func TestManager_CheckEntitlement_StorageFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
		logged  bool
	}{
		{"query error", errBackend, gofulfill.MsgEntitlementError, true},
		{"wrapped query error", fmt.Errorf("bigquery: %w", errBackend), gofulfill.MsgEntitlementError, true},
		{"no row", gofulfill.ErrNoResult, gofulfill.MsgNotVerified, false},
		{"wrapped no row", fmt.Errorf("read: %w", gofulfill.ErrNoResult), gofulfill.MsgNotVerified, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &recordingLogger{}
			metrics := &recordingMetrics{}
			storage := &FailingStorage{Storage: newTestStorage(), failHasAccess: tt.err}
			manager := newTestManager(t, storage, &gofulfill.Config{Logger: logger, Metrics: metrics})

			res := manager.CheckEntitlement(context.Background(), "test_user", "test_feature")
			assert.False(t, res.Entitled)
			assert.Equal(t, tt.wantMsg, res.Message)
			assert.Equal(t, 1, metrics.storeErr)
			if tt.logged {
				assert.Len(t, logger.errors, 1)
			} else {
				assert.Empty(t, logger.errors)
			}
		})
	}
}

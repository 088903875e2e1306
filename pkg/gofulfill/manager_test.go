package gofulfill_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihaimyh/gofulfill/pkg/gofulfill"
	"github.com/mihaimyh/gofulfill/storage/memory"
)

func TestNewManager_Validation(t *testing.T) {
	t.Run("nil storage", func(t *testing.T) {
		_, err := gofulfill.NewManager(nil, &gofulfill.Config{})
		assert.Error(t, err)
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		m, err := gofulfill.NewManager(memory.New(), nil)
		require.NoError(t, err)
		assert.Equal(t, gofulfill.DefaultReportBaseURL+"/f/u", m.ReportURL("f", "u"))
	})

	t.Run("relative report URL", func(t *testing.T) {
		_, err := gofulfill.NewManager(memory.New(), &gofulfill.Config{ReportBaseURL: "/reports"})
		assert.Error(t, err)
	})

	t.Run("trailing slash trimmed", func(t *testing.T) {
		m, err := gofulfill.NewManager(memory.New(), &gofulfill.Config{ReportBaseURL: "https://reports.example.com/r/"})
		require.NoError(t, err)
		assert.Equal(t, "https://reports.example.com/r/sales/u1", m.ReportURL("sales", "u1"))
	})
}

func TestParameters_String(t *testing.T) {
	params := gofulfill.Parameters{
		"text":   "abc",
		"number": float64(42),
		"float":  1.5,
		"flag":   true,
		"null":   nil,
		"list":   []interface{}{"a"},
		"empty":  "",
	}

	assert.Equal(t, "abc", params.String("text"))
	assert.Equal(t, "42", params.String("number"))
	assert.Equal(t, "1.5", params.String("float"))
	assert.Equal(t, "true", params.String("flag"))
	assert.Equal(t, "", params.String("null"))
	assert.Equal(t, "", params.String("list"))
	assert.Equal(t, "", params.String("empty"))
	assert.Equal(t, "", params.String("missing"))
}

type levelLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *levelLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+": "+msg)
}

func (l *levelLogger) Debug(msg string, _ ...gofulfill.Field) { l.add("debug", msg) }
func (l *levelLogger) Info(msg string, _ ...gofulfill.Field)  { l.add("info", msg) }
func (l *levelLogger) Warn(msg string, _ ...gofulfill.Field)  { l.add("warn", msg) }
func (l *levelLogger) Error(msg string, _ ...gofulfill.Field) { l.add("error", msg) }

func TestManager_LogLevels(t *testing.T) {
	ctx := context.Background()
	logger := &levelLogger{}
	manager := newTestManager(t, &FailingStorage{Storage: newTestStorage(), failHasAccess: errBackend}, &gofulfill.Config{Logger: logger})

	manager.Dispatch(ctx, webhookRequest("Smalltalk", gofulfill.Parameters{"user_id": "test_user"}))
	manager.Dispatch(ctx, webhookRequest("UpgradePlan", gofulfill.Parameters{"user_id": "test_user", "new_plan": "Silver"}))
	manager.Dispatch(ctx, webhookRequest("GetReport", gofulfill.Parameters{"user_id": "test_user", "feature": "test_feature"}))

	assert.Equal(t, []string{
		"warn: Unhandled intent",
		"info: Plan upgraded",
		"error: Entitlement check failed",
	}, logger.entries)
}

package echo

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mihaimyh/gofulfill/pkg/api"
	"github.com/mihaimyh/gofulfill/pkg/gofulfill"
	"github.com/mihaimyh/gofulfill/storage/memory"
)

const entitledPayload = `{"queryResult":{"intent":{"displayName":"GetReport"},"parameters":{"user_id":"test_user","feature":"test_feature"}}}`

func newTestHandler(t *testing.T, degraded bool) *api.Handler {
	t.Helper()

	config := api.Config{}
	if !degraded {
		storage := memory.New()
		storage.SetUserPlan("test_user", "Gold")
		storage.SetAccess("test_feature", "Gold", true)

		manager, err := gofulfill.NewManager(storage, nil)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		config.Dispatcher = manager
	}

	h, err := api.NewHandler(config)
	if err != nil {
		t.Fatalf("Failed to create handler: %v", err)
	}
	return h
}

func newTestServer(h *api.Handler, mounts ...api.Mount) http.Handler {
	return New(h, mounts...)
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeText(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp gofulfill.WebhookResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response %q: %v", w.Body.String(), err)
	}
	return resp.FulfillmentText
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(newTestHandler(t, false)), "GET", "/", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("Unexpected body %q", w.Body.String())
	}
}

func TestWebhook(t *testing.T) {
	w := do(t, newTestServer(newTestHandler(t, false)), "POST", "/webhook", entitledPayload)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Expected JSON content type, got %q", ct)
	}
	text := decodeText(t, w)
	if !strings.Contains(text, "You have access") ||
		!strings.Contains(text, "https://your-reporting-system.com/reports/test_feature/test_user") {
		t.Errorf("Unexpected fulfillment text %q", text)
	}
}

func TestWebhook_MalformedPayload(t *testing.T) {
	w := do(t, newTestServer(newTestHandler(t, false)), "POST", "/webhook", "{not json")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	if text := decodeText(t, w); text != gofulfill.MsgUnreadableRequest {
		t.Errorf("Unexpected fulfillment text %q", text)
	}
}

func TestWebhook_Degraded(t *testing.T) {
	srv := newTestServer(newTestHandler(t, true))

	w := do(t, srv, "POST", "/webhook", entitledPayload)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if text := decodeText(t, w); text != gofulfill.MsgNotInitialized {
		t.Errorf("Unexpected fulfillment text %q", text)
	}

	if w := do(t, srv, "GET", "/", ""); w.Code != http.StatusOK {
		t.Errorf("Expected health 200 in degraded mode, got %d", w.Code)
	}
}

func TestMounts(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "metrics")
	})
	srv := newTestServer(newTestHandler(t, false), api.Mount{Path: "/metrics", Handler: metrics})

	w := do(t, srv, "GET", "/metrics", "")
	if w.Code != http.StatusOK || w.Body.String() != "metrics" {
		t.Errorf("Unexpected mount response %d %q", w.Code, w.Body.String())
	}
}

// Package api exposes the fulfillment webhook over net/http.
// Router adapters under router/ reuse Handler.Fulfill so every framework
// answers with the same status codes and bodies.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mihaimyh/gofulfill/pkg/gofulfill"
)

// Route paths
const (
	HealthPath  = "/"
	WebhookPath = "/webhook"
)

// Handler provides the liveness and webhook endpoints
type Handler struct {
	config Config
}

// Degraded reports whether the handler has no dispatcher
func (h *Handler) Degraded() bool {
	return h.config.Dispatcher == nil
}

// MaxBodyBytes returns the configured request body limit
func (h *Handler) MaxBodyBytes() int64 {
	return h.config.MaxBodyBytes
}

// Fulfill decodes one webhook payload and dispatches it.
// It returns the HTTP status and body to send:
// 500 when degraded, 400 when the payload cannot be decoded, 200 otherwise.
func (h *Handler) Fulfill(ctx context.Context, body io.Reader) (int, gofulfill.WebhookResponse) {
	if h.config.Dispatcher == nil {
		h.config.Logger.Error("Webhook rejected", gofulfill.Field{Key: "error", Value: gofulfill.ErrStorageUnavailable})
		return http.StatusInternalServerError, gofulfill.WebhookResponse{FulfillmentText: gofulfill.MsgNotInitialized}
	}

	req, err := h.decode(body)
	if err != nil {
		h.config.Logger.Warn("Webhook payload rejected", gofulfill.Field{Key: "error", Value: err})
		return http.StatusBadRequest, gofulfill.WebhookResponse{FulfillmentText: gofulfill.MsgUnreadableRequest}
	}

	res := h.config.Dispatcher.Dispatch(ctx, req)
	h.config.Logger.Debug("Webhook fulfilled",
		gofulfill.Field{Key: "intent", Value: req.QueryResult.Intent.DisplayName},
		gofulfill.Field{Key: "ok", Value: res.OK},
	)
	return http.StatusOK, res.Response()
}

func (h *Handler) decode(body io.Reader) (*gofulfill.WebhookRequest, error) {
	if body == nil {
		return nil, fmt.Errorf("empty body")
	}

	var req gofulfill.WebhookRequest
	dec := json.NewDecoder(io.LimitReader(body, h.config.MaxBodyBytes+1))
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return &req, nil
}

// Webhook handles POST /webhook
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes)
	status, resp := h.Fulfill(r.Context(), body)
	h.writeJSON(w, status, resp)
}

// Health handles GET /
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// Routes returns a ServeMux with both endpoints registered
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+HealthPath+"{$}", h.Health)
	mux.HandleFunc("POST "+WebhookPath, h.Webhook)
	return mux
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Status line already sent
		h.config.Logger.Debug("Failed to write response", gofulfill.Field{Key: "error", Value: err})
	}
}

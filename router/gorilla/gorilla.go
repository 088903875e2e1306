// Package gorilla mounts the fulfillment webhook on a gorilla/mux router
package gorilla

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mihaimyh/gofulfill/pkg/api"
)

// NewRouter creates a gorilla/mux router serving the liveness and webhook
// endpoints plus any extra mounts.
func NewRouter(h *api.Handler, mounts ...api.Mount) *mux.Router {
	r := mux.NewRouter()
	Register(r, h)
	for _, m := range mounts {
		r.Handle(m.Path, m.Handler).Methods(http.MethodGet)
	}
	return r
}

// Register adds the endpoints to an existing router
func Register(r *mux.Router, h *api.Handler) {
	r.HandleFunc(api.HealthPath, h.Health).Methods(http.MethodGet)
	r.HandleFunc(api.WebhookPath, h.Webhook).Methods(http.MethodPost)
}

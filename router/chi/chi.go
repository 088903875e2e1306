// Package chi mounts the fulfillment webhook on a go-chi router
package chi

import (
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mihaimyh/gofulfill/pkg/api"
)

// NewRouter creates a chi router serving the liveness and webhook endpoints
// plus any extra mounts.
func NewRouter(h *api.Handler, mounts ...api.Mount) *gochi.Mux {
	r := gochi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	Register(r, h)
	for _, m := range mounts {
		r.Method(http.MethodGet, m.Path, m.Handler)
	}
	return r
}

// Register adds the endpoints to an existing chi router
func Register(r gochi.Router, h *api.Handler) {
	r.Get(api.HealthPath, h.Health)
	r.Post(api.WebhookPath, h.Webhook)
}

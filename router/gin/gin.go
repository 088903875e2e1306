// Package gin mounts the fulfillment webhook on a Gin engine
package gin

import (
	"net/http"

	gongin "github.com/gin-gonic/gin"

	"github.com/mihaimyh/gofulfill/pkg/api"
)

// NewEngine creates a Gin engine serving the liveness and webhook endpoints
// plus any extra mounts.
func NewEngine(h *api.Handler, mounts ...api.Mount) *gongin.Engine {
	r := gongin.New()
	r.Use(gongin.Recovery())

	Register(r, h)
	for _, m := range mounts {
		r.GET(m.Path, gongin.WrapH(m.Handler))
	}
	return r
}

// Register adds the endpoints to an existing Gin router
func Register(r gongin.IRoutes, h *api.Handler) {
	r.GET(api.HealthPath, func(c *gongin.Context) {
		c.JSON(http.StatusOK, api.StatusResponse{Status: "ok"})
	})

	r.POST(api.WebhookPath, func(c *gongin.Context) {
		body := http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBodyBytes())
		status, resp := h.Fulfill(c.Request.Context(), body)
		c.JSON(status, resp)
	})
}

// Package echo mounts the fulfillment webhook on an Echo instance
package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mihaimyh/gofulfill/pkg/api"
)

// New creates an Echo instance serving the liveness and webhook endpoints
// plus any extra mounts.
func New(h *api.Handler, mounts ...api.Mount) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	Register(e, h)
	for _, m := range mounts {
		e.GET(m.Path, echo.WrapHandler(m.Handler))
	}
	return e
}

// Register adds the endpoints to an existing Echo instance
func Register(e *echo.Echo, h *api.Handler) {
	e.GET(api.HealthPath, func(c echo.Context) error {
		return c.JSON(http.StatusOK, api.StatusResponse{Status: "ok"})
	})

	e.POST(api.WebhookPath, func(c echo.Context) error {
		req := c.Request()
		body := http.MaxBytesReader(c.Response(), req.Body, h.MaxBodyBytes())
		status, resp := h.Fulfill(req.Context(), body)
		return c.JSON(status, resp)
	})
}

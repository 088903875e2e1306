// Package fiber mounts the fulfillment webhook on a Fiber app
package fiber

import (
	"bytes"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mihaimyh/gofulfill/pkg/api"
)

// NewApp creates a Fiber app serving the liveness and webhook endpoints
// plus any extra mounts.
func NewApp(h *api.Handler, mounts ...api.Mount) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             bodyLimit(h),
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	Register(app, h)
	for _, m := range mounts {
		app.Get(m.Path, adaptor.HTTPHandler(m.Handler))
	}
	return app
}

// bodyLimit keeps Fiber's own cap above the handler's limit so oversized
// payloads reach Handler.Fulfill and get the usual 400 envelope.
func bodyLimit(h *api.Handler) int {
	limit := fiber.DefaultBodyLimit
	if n := 2 * int(h.MaxBodyBytes()); n > limit {
		limit = n
	}
	return limit
}

// Register adds the endpoints to an existing Fiber router
func Register(r fiber.Router, h *api.Handler) {
	r.Get(api.HealthPath, func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(api.StatusResponse{Status: "ok"})
	})

	r.Post(api.WebhookPath, func(c *fiber.Ctx) error {
		status, resp := h.Fulfill(c.UserContext(), bytes.NewReader(c.Body()))
		return c.Status(status).JSON(resp)
	})
}

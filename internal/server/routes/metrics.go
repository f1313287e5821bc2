package routes

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"github.com/sofahub/sofahub/internal/metrics"
)

// RegisterMetricsRoute 以 Prometheus 文本格式暴露 /-/metrics。
func RegisterMetricsRoute(app *fiber.App, registry *metrics.Registry) {
	if app == nil || registry == nil {
		return
	}
	app.Get("/-/metrics", adaptor.HTTPHandler(registry.Handler()))
}

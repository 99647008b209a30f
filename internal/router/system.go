package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/oracle-automation/internal/handler"
)

// registerSystemRoutes mounts the routes outside the versioned API: health,
// docs UI and the static files behind it.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.StaticFS("/static", handler.StaticFS())
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/post-api/internal/handler"
	"github.com/deppfellow/post-api/static"
)

func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.StaticFS("/static", static.FS)
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}

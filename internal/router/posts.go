package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/post-api/internal/handler"
)

func registerPostRoutes(r *echo.Echo, h *handler.Handlers) {
	posts := r.Group("/posts")

	posts.POST("", handler.Handle(h.Post.Handler, h.Post.CreatePost, http.StatusOK))
	posts.GET("/:postId", handler.Handle(h.Post.Handler, h.Post.FindPost, http.StatusOK))
}

package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/post-api/internal/server"
	"github.com/deppfellow/post-api/static"
)

// OpenAPIHandler serves the API reference UI at /docs. The page itself
// loads /static/openapi.json, which describes the post endpoints.
type OpenAPIHandler struct {
	Handler
	page []byte
	etag string
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	// A missing page answers 500.
	page, err := static.FS.ReadFile("openapi.html")
	if err != nil {
		s.Logger.Error().Err(err).Msg("openapi.html missing from embedded assets")
	}

	sum := sha256.Sum256(page)

	return &OpenAPIHandler{
		Handler: NewHandler(s),
		page:    page,
		etag:    `"` + hex.EncodeToString(sum[:8]) + `"`,
	}
}

// ServeOpenAPIUI answers with the docs page. Clients must revalidate on
// every load; a matching If-None-Match gets a 304.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	if len(h.page) == 0 {
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	header := c.Response().Header()
	header.Set("Cache-Control", "no-cache")
	header.Set("ETag", h.etag)

	if c.Request().Header.Get("If-None-Match") == h.etag {
		return c.NoContent(http.StatusNotModified)
	}

	return c.HTMLBlob(http.StatusOK, h.page)
}

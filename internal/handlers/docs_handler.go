package handlers

import (
	"crypto/md5"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed docs/openapi.json
var openAPISpec []byte

const scalarPage = `<!DOCTYPE html>
<html>
<head><title>Finance Ledger API Documentation</title><meta charset="utf-8"/></head>
<body>
<script id="api-reference" data-url="%s"></script>
<script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`

// DocsHandler handles API documentation endpoints
type DocsHandler struct {
	scalarHTML []byte
	scalarETag string
	spec       []byte
	specETag   string
}

// NewDocsHandler serves the embedded OpenAPI document; specURL is where the
// UI page loads it from
func NewDocsHandler(specURL string) *DocsHandler {
	scalarHTML := []byte(fmt.Sprintf(scalarPage, specURL))
	return &DocsHandler{
		scalarHTML: scalarHTML,
		scalarETag: generateETag(scalarHTML),
		spec:       openAPISpec,
		specETag:   generateETag(openAPISpec),
	}
}

// ServeScalarUI serves the Scalar HTML page
//
// Method: GET /docs
func (h *DocsHandler) ServeScalarUI(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Response().Header().Set("Pragma", "no-cache")
	c.Response().Header().Set("Expires", "0")

	if h.scalarETag != "" {
		c.Response().Header().Set("ETag", h.scalarETag)
		if match := c.Request().Header.Get("If-None-Match"); match != "" && match == h.scalarETag {
			return c.NoContent(http.StatusNotModified)
		}
	}

	return c.HTMLBlob(http.StatusOK, h.scalarHTML)
}

// ServeOAS3JSON serves the embedded OpenAPI document
// Scalar loads it from the page served by ServeScalarUI
//
// Method: GET /docs/openapi.json
func (h *DocsHandler) ServeOAS3JSON(c echo.Context) error {
	c.Response().Header().Set("Access-Control-Allow-Origin", "*")
	c.Response().Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type")
	c.Response().Header().Set("Cache-Control", "public, max-age=300")

	if h.specETag != "" {
		c.Response().Header().Set("ETag", h.specETag)
		if match := c.Request().Header.Get("If-None-Match"); match != "" && match == h.specETag {
			return c.NoContent(http.StatusNotModified)
		}
	}

	return c.Blob(http.StatusOK, "application/json; charset=utf-8", h.spec)
}

// generateETag creates an ETag hash for cache control
func generateETag(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	hash := md5.Sum(data)
	return fmt.Sprintf("\"%x\"", hash)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

// DocsHandlerSuite is the test suite for documentation endpoints
type DocsHandlerSuite struct {
	suite.Suite
	handler *DocsHandler
	e       *echo.Echo
}

func (s *DocsHandlerSuite) SetupTest() {
	s.handler = NewDocsHandler("/docs/openapi.json")
	s.e = echo.New()
}

func TestDocsHandler(t *testing.T) {
	suite.Run(t, new(DocsHandlerSuite))
}

func (s *DocsHandlerSuite) serve(path string, h echo.HandlerFunc, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Require().NoError(h(s.e.NewContext(req, rec)))
	return rec
}

func (s *DocsHandlerSuite) TestServeScalarUI() {
	s.Run("serves the Scalar page pointing at the OpenAPI document", func() {
		rec := s.serve("/docs", s.handler.ServeScalarUI, nil)

		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Header().Get("Content-Type"), "text/html")
		s.Contains(rec.Body.String(), "api-reference")
		s.Contains(rec.Body.String(), `data-url="/docs/openapi.json"`)
	})

	s.Run("sets correct cache headers", func() {
		rec := s.serve("/docs", s.handler.ServeScalarUI, nil)

		s.Equal("no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
		s.NotEmpty(rec.Header().Get("ETag"))
	})

	s.Run("answers 304 for a matching ETag", func() {
		rec := s.serve("/docs", s.handler.ServeScalarUI, map[string]string{"If-None-Match": s.handler.scalarETag})
		s.Equal(http.StatusNotModified, rec.Code)
	})
}

func (s *DocsHandlerSuite) TestServeOAS3JSON() {
	s.Run("serves the embedded document", func() {
		rec := s.serve("/docs/openapi.json", s.handler.ServeOAS3JSON, nil)

		s.Equal(http.StatusOK, rec.Code)
		s.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
		s.Equal("GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		s.Equal("application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		s.Equal("public, max-age=300", rec.Header().Get("Cache-Control"))

		var doc struct {
			OpenAPI string                     `json:"openapi"`
			Paths   map[string]json.RawMessage `json:"paths"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &doc))
		s.Equal("3.0.3", doc.OpenAPI)
		s.Contains(doc.Paths, "/transactions/{id}/category")
		s.Contains(doc.Paths, "/rules/apply")
		s.Contains(doc.Paths, "/credentials/{type}")
	})

	s.Run("answers 304 for a matching ETag", func() {
		rec := s.serve("/docs/openapi.json", s.handler.ServeOAS3JSON, map[string]string{"If-None-Match": s.handler.specETag})
		s.Equal(http.StatusNotModified, rec.Code)
	})
}

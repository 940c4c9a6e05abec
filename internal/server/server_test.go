package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finance-ledger/internal/config"
	"finance-ledger/internal/database"
	"finance-ledger/internal/dto"
	apierrors "finance-ledger/internal/errors"
	"finance-ledger/internal/secrets"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

type ServerTestSuite struct {
	suite.Suite
	db       *database.DB
	cfg      *config.Config
	services *Services
	echo     *echo.Echo
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Environment:      "testing",
			CORSAllowOrigins: []string{"http://localhost:3000"},
		},
		Security: config.SecurityConfig{RateLimitPerSecond: 1000, RateLimitBurst: 1000},
		Auth: config.AuthConfig{
			Secret:        "an-integration-test-secret-of-32-chars",
			Issuer:        "finance-ledger",
			TokenDuration: time.Hour,
		},
		Suggestion: config.SuggestionConfig{
			Provider:         config.ProviderHeuristic,
			BatchSize:        2,
			MaxSuggestions:   3,
			FailureThreshold: 5,
			ResetTimeout:     time.Minute,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func (s *ServerTestSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.cfg = testConfig()
	s.build()
}

func (s *ServerTestSuite) build() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()

	svc, err := NewServices(s.db.DB, s.cfg, secrets.NewMemoryStore(), registry, logger)
	s.Require().NoError(err)
	s.services = svc

	s.echo = New(Options{
		Config:   s.cfg,
		Services: svc,
		DB:       s.db,
		Registry: registry,
		Logger:   logger,
	})
}

func (s *ServerTestSuite) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *ServerTestSuite) decode(rec *httptest.ResponseRecorder, v interface{}) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *ServerTestSuite) createCategory(name string) dto.CategoryResponse {
	rec := s.do(http.MethodPost, "/api/v1/categories", fmt.Sprintf(`{"name":%q}`, name))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var category dto.CategoryResponse
	s.decode(rec, &category)
	return category
}

func (s *ServerTestSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", "")

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"healthy"`)
	s.Contains(rec.Body.String(), "heuristic")
	s.NotEmpty(rec.Header().Get("X-Trace-ID"))
}

func (s *ServerTestSuite) TestCategorizationFlow() {
	groceries := s.createCategory("Groceries")
	s.createCategory("Dining")

	rec := s.do(http.MethodPost, "/api/v1/rules",
		fmt.Sprintf(`{"pattern":"kroger","priority":10,"categoryId":%q}`, groceries.ID))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/v1/transactions/batch", `{"transactions":[
		{"date":"2024-03-01","description":"KROGER #4411","amount":"-54.20"},
		{"date":"2024-03-02","description":"Corner Bistro","amount":"-31.00"}
	]}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var created dto.ListTransactionsResponse
	s.decode(rec, &created)
	s.Require().Len(created.Transactions, 2)
	s.Require().NotNil(created.Transactions[0].CategoryID)
	s.Equal(groceries.ID, *created.Transactions[0].CategoryID)
	s.Nil(created.Transactions[1].CategoryID)

	rec = s.do(http.MethodGet, "/api/v1/transactions/uncategorized/count", "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"count":1}`, rec.Body.String())

	bistro := created.Transactions[1]
	rec = s.do(http.MethodPost, "/api/v1/transactions/"+bistro.ID.String()+"/skip", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var skipped dto.TransactionResponse
	s.decode(rec, &skipped)
	s.Equal("skipped", skipped.Status)

	rec = s.do(http.MethodGet, "/api/v1/transactions/uncategorized", "")
	var queue dto.ListTransactionsResponse
	s.decode(rec, &queue)
	s.Empty(queue.Transactions)

	rec = s.do(http.MethodDelete, "/api/v1/categories/"+groceries.ID.String(), "")
	s.Equal(http.StatusConflict, rec.Code)
	var errResp apierrors.ErrorResponse
	s.decode(rec, &errResp)
	s.Equal(string(apierrors.CategoryInUse), errResp.Error.Code)
}

func (s *ServerTestSuite) TestTransactionDateRoundTrip() {
	rec := s.do(http.MethodPost, "/api/v1/transactions",
		`{"date":"2024-01-05T23:30:00Z","description":"Late night taxi","amount":"-18.40"}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var created map[string]interface{}
	s.decode(rec, &created)
	s.Equal("2024-01-05T23:30:00Z", created["date"], "time of day is kept")

	path := fmt.Sprintf("/api/v1/transactions/%s", created["id"])
	rec = s.do(http.MethodGet, path, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var fetched map[string]interface{}
	s.decode(rec, &fetched)
	s.Equal(created["date"], fetched["date"])

	rec = s.do(http.MethodPatch, path,
		fmt.Sprintf(`{"date":%q,"description":"Taxi home"}`, fetched["date"]))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var patched map[string]interface{}
	s.decode(rec, &patched)
	s.Equal(created["date"], patched["date"])
	s.Equal("Taxi home", patched["description"])

	rec = s.do(http.MethodPatch, path, `{"date":"2024-01-06"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.decode(rec, &patched)
	s.Equal("2024-01-06T00:00:00Z", patched["date"])
}

func (s *ServerTestSuite) TestRecategorizeAfterAddingRule() {
	db := s.db
	database.CreateTestTransaction(s.T(), db, "NETFLIX.COM", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), nil)
	database.CreateTestTransaction(s.T(), db, "Netflix monthly", time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), nil)
	database.CreateTestTransaction(s.T(), db, "Water bill", time.Date(2024, 2, 6, 0, 0, 0, 0, time.UTC), nil)

	entertainment := s.createCategory("Entertainment")
	rec := s.do(http.MethodPost, "/api/v1/rules",
		fmt.Sprintf(`{"pattern":"(?i)^netflix","isRegex":true,"categoryId":%q}`, entertainment.ID))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/v1/rules/recategorize", "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"categorized":2}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/v1/rules/apply", `{"description":"Water bill"}`)
	s.JSONEq(`{"categoryId":null,"matched":false}`, rec.Body.String())
}

func (s *ServerTestSuite) TestSuggestionsUseStoredCategories() {
	s.createCategory("Groceries")
	s.createCategory("Utilities")

	rec := s.do(http.MethodPost, "/api/v1/suggestions", `{"description":"WHOLE FOODS MARKET","amount":"-82.10"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.SuggestCategoryResponse
	s.decode(rec, &resp)
	s.Equal("heuristic", resp.Provider)
	s.Require().NotEmpty(resp.Suggestions)
	s.Equal("Groceries", resp.Suggestions[0].Category)
}

func (s *ServerTestSuite) TestCredentialsRoundTrip() {
	secret := gofakeit.Password(true, true, true, false, false, 40)

	rec := s.do(http.MethodPut, "/api/v1/credentials/gemini_api_key", fmt.Sprintf(`{"value":%q}`, secret))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.NotContains(rec.Body.String(), secret)

	rec = s.do(http.MethodGet, "/api/v1/credentials/gemini_api_key", "")
	s.JSONEq(`{"type":"gemini_api_key","exists":true}`, rec.Body.String())

	rec = s.do(http.MethodDelete, "/api/v1/credentials/gemini_api_key", "")
	s.Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodDelete, "/api/v1/credentials/gemini_api_key", "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerTestSuite) TestUnknownRoute() {
	rec := s.do(http.MethodGet, "/api/v1/nothing-here", "")

	s.Equal(http.StatusNotFound, rec.Code)
	var errResp apierrors.ErrorResponse
	s.decode(rec, &errResp)
	s.Equal(string(apierrors.SystemNotFound), errResp.Error.Code)
}

func (s *ServerTestSuite) TestMetricsEndpoint() {
	s.do(http.MethodGet, "/api/v1/nothing-here", "")

	rec := s.do(http.MethodGet, "/metrics", "")

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "api_errors_total")
}

func (s *ServerTestSuite) TestSeedRouteHiddenInProduction() {
	rec := s.do(http.MethodPost, "/api/v1/dev/seed", `{"transactions":5}`)
	s.Equal(http.StatusCreated, rec.Code, rec.Body.String())

	s.cfg.Server.Environment = "production"
	s.build()

	rec = s.do(http.MethodPost, "/api/v1/dev/seed", `{}`)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerTestSuite) TestAuthRequiredWhenEnabled() {
	s.cfg.Auth.Enabled = true
	s.build()

	rec := s.do(http.MethodGet, "/api/v1/categories", "")
	s.Equal(http.StatusUnauthorized, rec.Code)

	token, _, err := s.services.Tokens.GenerateToken("importer")
	s.Require().NoError(err)

	rec = s.do(http.MethodGet, "/api/v1/categories", "", echo.HeaderAuthorization, "Bearer "+token)
	s.Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/health", "")
	s.Equal(http.StatusOK, rec.Code)
}

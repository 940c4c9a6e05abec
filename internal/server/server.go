// Package server assembles the Echo application: middleware, routes and the
// handlers over a wired service layer.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"finance-ledger/internal/config"
	"finance-ledger/internal/handlers"
	"finance-ledger/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const apiPrefix = "/api/v1"

// Registry is what the server needs from a Prometheus registry: a place to
// register collectors and a source for /metrics
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

type Options struct {
	Config   *config.Config
	Services *Services
	DB       handlers.HealthChecker
	Registry Registry
	Logger   *slog.Logger
}

// New returns the configured Echo instance with every route registered
func New(opts Options) *echo.Echo {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.NewHTTPErrorHandler(opts.Registry)

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery(logger))
	e.Use(requestLogger(logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, middleware.TraceIDHeader},
	}))
	e.Use(echomw.BodyLimit("2M"))

	registerRoutes(e, opts)

	return e
}

func registerRoutes(e *echo.Echo, opts Options) {
	cfg := opts.Config
	svc := opts.Services

	healthHandler := handlers.NewHealthCheckHandler(opts.DB, svc.Suggestions.ProviderName())
	docsHandler := handlers.NewDocsHandler("/docs/openapi.json")

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/docs", docsHandler.ServeScalarUI)
	e.GET("/docs/openapi.json", docsHandler.ServeOAS3JSON)
	if cfg.Metrics.Enabled {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	api := e.Group(apiPrefix)
	api.Use(middleware.NewRateLimiter(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst).Middleware())
	if cfg.Auth.Enabled {
		api.Use(middleware.RequireAuth(svc.Tokens))
	}

	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, svc.Categorization)
	transactions := api.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.POST("/batch", transactionHandler.CreateTransactions)
	transactions.GET("/uncategorized", transactionHandler.ListUncategorized)
	transactions.GET("/uncategorized/count", transactionHandler.CountUncategorized)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PATCH("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.PUT("/:id/category", transactionHandler.SaveCategory)
	transactions.POST("/:id/skip", transactionHandler.SkipTransaction)

	categoryHandler := handlers.NewCategoryHandler(svc.Categories)
	categories := api.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.POST("/batch", categoryHandler.CreateCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PATCH("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	ruleHandler := handlers.NewRuleHandler(svc.Rules, svc.Categorization)
	rules := api.Group("/rules")
	rules.GET("", ruleHandler.ListRules)
	rules.POST("", ruleHandler.CreateRule)
	rules.POST("/apply", ruleHandler.ApplyRules)
	rules.POST("/recategorize", ruleHandler.Recategorize)
	rules.GET("/:id", ruleHandler.GetRule)
	rules.PATCH("/:id", ruleHandler.UpdateRule)
	rules.DELETE("/:id", ruleHandler.DeleteRule)

	suggestionHandler := handlers.NewSuggestionHandler(svc.Suggestions)
	suggestions := api.Group("/suggestions")
	suggestions.POST("", suggestionHandler.SuggestCategory)
	suggestions.POST("/batch", suggestionHandler.BatchProcess)
	suggestions.POST("/transactions", suggestionHandler.SuggestForTransactions)

	credentialHandler := handlers.NewCredentialHandler(svc.Credentials)
	credentials := api.Group("/credentials")
	credentials.GET("", credentialHandler.ListCredentials)
	credentials.PUT("/:type", credentialHandler.StoreCredential)
	credentials.GET("/:type", credentialHandler.CredentialExists)
	credentials.DELETE("/:type", credentialHandler.DeleteCredential)

	if !cfg.IsProduction() {
		devHandler := handlers.NewDevHandler(svc.SampleData)
		api.POST("/dev/seed", devHandler.Seed)
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("trace_id", middleware.GetTraceID(c)),
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency.Round(time.Microsecond)),
			)
			return nil
		},
	})
}

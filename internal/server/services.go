package server

import (
	"fmt"
	"log/slog"

	"finance-ledger/internal/config"
	"finance-ledger/internal/repositories"
	"finance-ledger/internal/secrets"
	"finance-ledger/internal/services"
	"finance-ledger/internal/suggest"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Services is the wired service layer shared by the HTTP server and the CLI
type Services struct {
	Transactions   services.TransactionServiceInterface
	Categorization services.CategorizationServiceInterface
	Categories     services.CategoryServiceInterface
	Rules          services.CategorizationRuleServiceInterface
	Suggestions    services.SuggestionServiceInterface
	Credentials    services.CredentialServiceInterface
	SampleData     services.SampleDataServiceInterface
	Tokens         services.TokenServiceInterface
}

// NewServices builds repositories over db and the services on top of them.
// Collectors are registered on reg.
func NewServices(db *gorm.DB, cfg *config.Config, store secrets.Store, reg prometheus.Registerer, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}

	provider, err := NewSuggestionProvider(cfg.Suggestion, store, logger)
	if err != nil {
		return nil, err
	}

	transactionRepo := repositories.NewTransactionRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	ruleRepo := repositories.NewCategorizationRuleRepository(db)

	auditLogger := services.NewAuditLogger(logger)
	metrics := services.NewPrometheusMetrics(reg)

	categorization := services.NewCategorizationService(transactionRepo, categoryRepo, ruleRepo, auditLogger, metrics, logger)
	categories := services.NewCategoryService(categoryRepo, auditLogger, logger)
	rules := services.NewCategorizationRuleService(ruleRepo, logger)

	return &Services{
		Transactions:   services.NewTransactionService(transactionRepo),
		Categorization: categorization,
		Categories:     categories,
		Rules:          rules,
		Suggestions:    services.NewSuggestionService(provider, transactionRepo, categoryRepo, cfg.Suggestion, auditLogger, metrics, logger),
		Credentials:    services.NewCredentialService(store, auditLogger, metrics),
		SampleData:     services.NewSampleDataService(categories, rules, categorization, 0, logger),
		Tokens:         services.NewTokenService(&cfg.Auth),
	}, nil
}

// NewSuggestionProvider returns the configured provider. The gemini provider
// reads its API key from store on every call, so a key stored after startup
// takes effect without a restart.
func NewSuggestionProvider(cfg config.SuggestionConfig, store secrets.Store, logger *slog.Logger) (suggest.Provider, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return suggest.NewGeminiProvider(store, cfg.Model, cfg.RequestTimeout, logger), nil
	case config.ProviderHeuristic, "":
		return suggest.NewHeuristicProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported suggestion provider %q", cfg.Provider)
	}
}

// NewSecretStore opens the encrypted file store when a passphrase is
// configured and otherwise falls back to a process-local memory store
func NewSecretStore(cfg config.SecretsConfig, logger *slog.Logger) (secrets.Store, error) {
	if cfg.Passphrase == "" {
		logger.Warn("SECRETS_PASSPHRASE not set; credentials are kept in memory and lost on exit")
		return secrets.NewMemoryStore(), nil
	}

	store, err := secrets.NewFileStore(cfg.Path, cfg.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	return store, nil
}

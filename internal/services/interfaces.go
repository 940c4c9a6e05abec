package services

import (
	"context"
	"time"

	"finance-ledger/internal/models"
	"finance-ledger/internal/secrets"
	"finance-ledger/internal/suggest"

	"github.com/google/uuid"
)

// CategoryServiceInterface defines category management operations
type CategoryServiceInterface interface {
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	CreateCategories(ctx context.Context, categories []*models.Category) error
	UpdateCategory(ctx context.Context, id uuid.UUID, update models.CategoryUpdate) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// CategorizationRuleServiceInterface defines rule management operations
type CategorizationRuleServiceInterface interface {
	GetAllRules(ctx context.Context) ([]models.CategorizationRule, error)
	GetRuleByID(ctx context.Context, id uuid.UUID) (*models.CategorizationRule, error)
	CreateRule(ctx context.Context, rule *models.CategorizationRule) error
	UpdateRule(ctx context.Context, id uuid.UUID, update models.CategorizationRuleUpdate) (*models.CategorizationRule, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
}

// TransactionServiceInterface defines transaction reads and direct edits.
// Ingestion and review decisions go through CategorizationServiceInterface.
type TransactionServiceInterface interface {
	GetAllTransactions(ctx context.Context) ([]models.Transaction, error)
	GetTransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id uuid.UUID, update models.TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

// CategorizationServiceInterface runs the categorization workflow: rule
// matching at ingestion and the manual review decisions.
type CategorizationServiceInterface interface {
	// CreateTransaction persists a transaction, assigning a category from the
	// enabled rules when none was supplied
	CreateTransaction(ctx context.Context, transaction *models.Transaction) error

	// CreateTransactions is CreateTransaction for many items, all or nothing
	CreateTransactions(ctx context.Context, transactions []*models.Transaction) error

	// ApplyCategorizationRules returns the category the enabled rules select
	// for description, or nil
	ApplyCategorizationRules(ctx context.Context, description string) (*uuid.UUID, error)

	GetUncategorizedTransactions(ctx context.Context) ([]models.Transaction, error)
	GetUncategorizedTransactionsCount(ctx context.Context) (int64, error)

	// SaveTransactionCategory records a manual assignment. A nil categoryID
	// returns the transaction to the review queue.
	SaveTransactionCategory(ctx context.Context, transactionID uuid.UUID, categoryID *uuid.UUID) (*models.Transaction, error)

	// SkipTransaction records that a reviewer declined to categorize
	SkipTransaction(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error)

	// RecategorizeUncategorized runs the current rules over the review queue
	// and returns how many transactions were categorized
	RecategorizeUncategorized(ctx context.Context) (int, error)
}

// SuggestionServiceInterface exposes the suggestion collaborator to callers
type SuggestionServiceInterface interface {
	SuggestCategory(ctx context.Context, req suggest.Request) ([]suggest.Suggestion, error)
	SuggestForTransactions(ctx context.Context, transactionIDs []uuid.UUID) (*suggest.BatchResult, error)
	BatchProcess(ctx context.Context, items []suggest.Item) (*suggest.BatchResult, error)
	ProviderName() string
}

// CredentialServiceInterface manages stored API credentials. Values are
// write-only from the caller's point of view.
type CredentialServiceInterface interface {
	StoreCredential(ctx context.Context, credential secrets.CredentialType, value string) error
	DeleteCredential(ctx context.Context, credential secrets.CredentialType) error
	CredentialExists(ctx context.Context, credential secrets.CredentialType) (bool, error)
	ListCredentials(ctx context.Context) (map[secrets.CredentialType]bool, error)
}

// SampleDataServiceInterface seeds a development ledger
type SampleDataServiceInterface interface {
	Seed(ctx context.Context, count int) (*models.SeedSummary, error)
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

type AuditLoggerInterface interface {
	LogTransactionCategorized(ctx context.Context, transactionID uuid.UUID, categoryID *uuid.UUID, source string)
	LogReviewDecision(ctx context.Context, transactionID uuid.UUID, action string, oldStatus, newStatus string)
	LogRuleSkipped(ctx context.Context, ruleID uuid.UUID, pattern string, err error)
	LogCategoryDeleted(ctx context.Context, categoryID uuid.UUID, name string)
	LogCredentialChanged(ctx context.Context, credential secrets.CredentialType, action string)
	LogCircuitBreakerStateChange(ctx context.Context, service string, oldState, newState string)
}

type CircuitBreakerInterface interface {
	IsOpen() bool
	RecordSuccess()
	RecordFailure()
	GetState() models.CircuitBreakerState
	Reset()
	GetFailureCount() int
}

type TokenServiceInterface interface {
	GenerateToken(subject string) (string, time.Time, error)
	ValidateToken(tokenString string) (*models.TokenClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
}

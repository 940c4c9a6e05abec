package services

import (
	"context"
	"errors"
	"log/slog"

	"finance-ledger/internal/config"
	apierrors "finance-ledger/internal/errors"
	"finance-ledger/internal/models"
	"finance-ledger/internal/repositories"
	"finance-ledger/internal/suggest"

	"github.com/google/uuid"
)

// SuggestionService asks the configured provider for category candidates.
// Suggestions are advisory: nothing here writes to the ledger.
type SuggestionService struct {
	provider        *guardedProvider
	processor       *suggest.BatchProcessor
	transactionRepo repositories.TransactionRepositoryInterface
	categoryRepo    repositories.CategoryRepositoryInterface
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
	minConfidence   float64
	maxSuggestions  int
}

func NewSuggestionService(
	provider suggest.Provider,
	transactionRepo repositories.TransactionRepositoryInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	cfg config.SuggestionConfig,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) SuggestionServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}

	service := provider.Name()
	breakerConfig := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold > 0 {
		breakerConfig.MaxFailures = cfg.FailureThreshold
	}
	if cfg.ResetTimeout > 0 {
		breakerConfig.ResetTimeout = cfg.ResetTimeout
	}
	breakerConfig.OnStateChange = func(from, to models.CircuitBreakerState) {
		auditLogger.LogCircuitBreakerStateChange(context.Background(), service, from.String(), to.String())
		metrics.RecordGauge("circuit_breaker.state", float64(to), map[string]string{"service": service})
	}

	guarded := newGuardedProvider(provider, NewCircuitBreaker(breakerConfig), metrics)

	return &SuggestionService{
		provider:        guarded,
		processor:       suggest.NewBatchProcessor(guarded, cfg.BatchSize, cfg.BatchDelay, logger),
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		metrics:         metrics,
		logger:          logger,
		minConfidence:   cfg.MinConfidence,
		maxSuggestions:  cfg.MaxSuggestions,
	}
}

func (s *SuggestionService) ProviderName() string {
	return s.provider.Name()
}

func (s *SuggestionService) SuggestCategory(ctx context.Context, req suggest.Request) ([]suggest.Suggestion, error) {
	if len(req.ExistingCategories) == 0 {
		names, err := s.categoryNames()
		if err != nil {
			return nil, err
		}
		req.ExistingCategories = names
	}

	suggestions, err := s.provider.SuggestCategory(ctx, req)
	if err != nil {
		return nil, translateSuggestError(err)
	}

	return suggest.Filter(suggestions, s.minConfidence, s.maxSuggestions), nil
}

// BatchProcess runs items through the batch processor. Only a failure to
// load the category list fails the call; item failures are reported per item.
func (s *SuggestionService) BatchProcess(ctx context.Context, items []suggest.Item) (*suggest.BatchResult, error) {
	var names []string
	for i := range items {
		if len(items[i].Request.ExistingCategories) > 0 {
			continue
		}
		if names == nil {
			var err error
			if names, err = s.categoryNames(); err != nil {
				return nil, err
			}
		}
		items[i].Request.ExistingCategories = names
	}

	result := s.processor.Process(ctx, items)
	for i := range result.Results {
		result.Results[i].Suggestions = suggest.Filter(result.Results[i].Suggestions, s.minConfidence, s.maxSuggestions)
	}

	s.recordBatch(result)
	return result, nil
}

// SuggestForTransactions suggests categories for stored transactions. Ids
// that cannot be loaded are reported as failed items in their position.
func (s *SuggestionService) SuggestForTransactions(ctx context.Context, transactionIDs []uuid.UUID) (*suggest.BatchResult, error) {
	names, err := s.categoryNames()
	if err != nil {
		return nil, err
	}

	lookupErrs := make(map[int]error)
	items := make([]suggest.Item, 0, len(transactionIDs))
	positions := make([]int, 0, len(transactionIDs))

	for i, id := range transactionIDs {
		transaction, err := s.transactionRepo.GetByID(id)
		if err != nil {
			if !apierrors.IsNotFound(err) {
				return nil, err
			}
			lookupErrs[i] = err
			continue
		}
		items = append(items, suggest.Item{ID: id.String(), Request: requestFor(transaction, names)})
		positions = append(positions, i)
	}

	processed := s.processor.Process(ctx, items)

	result := &suggest.BatchResult{
		Results: make([]suggest.ItemResult, len(transactionIDs)),
		Batches: processed.Batches,
	}
	for j, r := range processed.Results {
		r.Suggestions = suggest.Filter(r.Suggestions, s.minConfidence, s.maxSuggestions)
		result.Results[positions[j]] = r
	}
	for _, itemErr := range processed.Errors {
		lookupErrs[positions[itemErr.Index]] = itemErr.Err
	}

	for i, id := range transactionIDs {
		err, failed := lookupErrs[i]
		if !failed {
			result.Succeeded++
			continue
		}
		result.Failed++
		result.Results[i].ID = id.String()
		result.Results[i].Error = err.Error()
		result.Errors = append(result.Errors, suggest.ItemError{ID: id.String(), Index: i, Err: err})
	}

	s.recordBatch(result)
	return result, nil
}

func (s *SuggestionService) recordBatch(result *suggest.BatchResult) {
	for i := 0; i < result.Succeeded; i++ {
		s.metrics.IncrementCounter("suggestion.batch_item", map[string]string{"status": "success"})
	}
	for i := 0; i < result.Failed; i++ {
		s.metrics.IncrementCounter("suggestion.batch_item", map[string]string{"status": "failed"})
	}
}

func (s *SuggestionService) categoryNames() ([]string, error) {
	categories, err := s.categoryRepo.GetAll()
	if err != nil {
		return nil, err
	}
	return models.CategoryNames(categories), nil
}

func requestFor(transaction *models.Transaction, categories []string) suggest.Request {
	return suggest.Request{
		Description:        transaction.Description,
		Amount:             transaction.Amount,
		Details:            transaction.Details,
		ExistingCategories: categories,
	}
}

func translateSuggestError(err error) error {
	var parseErr *suggest.ParseError
	switch {
	case errors.Is(err, suggest.ErrEmptyRequest):
		return apierrors.InvalidInput(apierrors.ValidationRequiredField, "transaction description is required", err)
	case errors.Is(err, suggest.ErrNotConfigured):
		return apierrors.ExternalService(apierrors.AINotConfigured, "suggestion provider is not configured", err)
	case errors.As(err, &parseErr):
		return apierrors.ExternalService(apierrors.AIInvalidResponse, "suggestion provider returned an unreadable response", err)
	case errors.Is(err, ErrCircuitBreakerOpen):
		return apierrors.ExternalService(apierrors.AIServiceUnavailable, "suggestion provider is temporarily disabled after repeated failures", err)
	default:
		return apierrors.ExternalService(apierrors.AIServiceUnavailable, "suggestion provider request failed", err)
	}
}

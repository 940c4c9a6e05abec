package services

import (
	"context"
	"log/slog"
	"time"

	"finance-ledger/internal/matcher"
	"finance-ledger/internal/models"
	"finance-ledger/internal/repositories"

	"github.com/google/uuid"
)

const (
	CategorizationSourceRule   = "rule"
	CategorizationSourceManual = "manual"

	ReviewActionAssign = "assign"
	ReviewActionClear  = "clear"
	ReviewActionSkip   = "skip"
)

// CategorizationService moves transactions between the uncategorized,
// categorized and skipped states. It reads categories and rules but never
// writes them.
type CategorizationService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	categoryRepo    repositories.CategoryRepositoryInterface
	ruleRepo        repositories.CategorizationRuleRepositoryInterface
	auditLogger     AuditLoggerInterface
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
	now             func() time.Time
}

func NewCategorizationService(
	transactionRepo repositories.TransactionRepositoryInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	ruleRepo repositories.CategorizationRuleRepositoryInterface,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) CategorizationServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategorizationService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		ruleRepo:        ruleRepo,
		auditLogger:     auditLogger,
		metrics:         metrics,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *CategorizationService) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	var matched bool
	if transaction.CategoryID == nil {
		rules, err := s.ruleRepo.GetEnabled()
		if err != nil {
			return err
		}
		matched = s.categorize(ctx, transaction, rules)
	}

	if err := s.transactionRepo.Create(transaction); err != nil {
		return err
	}

	s.recordIngested(ctx, transaction, matched)
	return nil
}

func (s *CategorizationService) CreateTransactions(ctx context.Context, transactions []*models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	var rules []models.CategorizationRule
	for _, t := range transactions {
		if t.CategoryID == nil {
			var err error
			rules, err = s.ruleRepo.GetEnabled()
			if err != nil {
				return err
			}
			break
		}
	}

	matched := make([]bool, len(transactions))
	for i, t := range transactions {
		if t.CategoryID == nil {
			matched[i] = s.categorize(ctx, t, rules)
		}
	}

	if err := s.transactionRepo.CreateBatch(transactions); err != nil {
		return err
	}

	for i, t := range transactions {
		s.recordIngested(ctx, t, matched[i])
	}

	s.logger.InfoContext(ctx, "transactions ingested", slog.Int("count", len(transactions)))
	return nil
}

func (s *CategorizationService) ApplyCategorizationRules(ctx context.Context, description string) (*uuid.UUID, error) {
	rules, err := s.ruleRepo.GetEnabled()
	if err != nil {
		return nil, err
	}
	return s.evaluate(ctx, description, rules).CategoryID, nil
}

func (s *CategorizationService) GetUncategorizedTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.transactionRepo.GetUncategorized()
}

func (s *CategorizationService) GetUncategorizedTransactionsCount(ctx context.Context) (int64, error) {
	count, err := s.transactionRepo.CountUncategorized()
	if err != nil {
		return 0, err
	}

	s.metrics.RecordGauge("review.queue_depth", float64(count), nil)
	return count, nil
}

func (s *CategorizationService) SaveTransactionCategory(ctx context.Context, transactionID uuid.UUID, categoryID *uuid.UUID) (*models.Transaction, error) {
	current, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		return nil, err
	}

	update := models.TransactionUpdate{
		CategoryID: models.Null[uuid.UUID](),
		IsSkipped:  models.Some(false),
		ReviewedAt: models.Some(s.now().UTC()),
	}
	action := ReviewActionClear

	if categoryID != nil {
		if _, err := s.categoryRepo.GetByID(*categoryID); err != nil {
			return nil, err
		}
		update.CategoryID = models.Some(*categoryID)
		action = ReviewActionAssign
	}

	updated, err := s.transactionRepo.Update(transactionID, update)
	if err != nil {
		return nil, err
	}

	s.recordDecision(ctx, current, updated, action)
	if categoryID != nil {
		s.auditLogger.LogTransactionCategorized(ctx, updated.ID, updated.CategoryID, CategorizationSourceManual)
	}
	return updated, nil
}

func (s *CategorizationService) SkipTransaction(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error) {
	current, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		return nil, err
	}

	updated, err := s.transactionRepo.Update(transactionID, models.TransactionUpdate{
		IsSkipped:  models.Some(true),
		ReviewedAt: models.Some(s.now().UTC()),
	})
	if err != nil {
		return nil, err
	}

	s.recordDecision(ctx, current, updated, ReviewActionSkip)
	return updated, nil
}

func (s *CategorizationService) RecategorizeUncategorized(ctx context.Context) (int, error) {
	rules, err := s.ruleRepo.GetEnabled()
	if err != nil {
		return 0, err
	}
	if len(rules) == 0 {
		return 0, nil
	}

	pending, err := s.transactionRepo.GetUncategorized()
	if err != nil {
		return 0, err
	}

	categorized := 0
	for i := range pending {
		if err := ctx.Err(); err != nil {
			return categorized, err
		}

		t := &pending[i]
		result := s.evaluate(ctx, t.Description, rules)
		if !result.Matched() {
			continue
		}

		if _, err := s.transactionRepo.Update(t.ID, models.TransactionUpdate{
			CategoryID: models.Some(*result.CategoryID),
		}); err != nil {
			return categorized, err
		}

		s.auditLogger.LogTransactionCategorized(ctx, t.ID, result.CategoryID, CategorizationSourceRule)
		categorized++
	}

	s.logger.InfoContext(ctx, "review queue recategorized",
		slog.Int("pending", len(pending)),
		slog.Int("categorized", categorized),
	)
	return categorized, nil
}

// categorize assigns the matching rule's category and reports whether one matched
func (s *CategorizationService) categorize(ctx context.Context, transaction *models.Transaction, rules []models.CategorizationRule) bool {
	result := s.evaluate(ctx, transaction.Description, rules)
	if !result.Matched() {
		return false
	}
	transaction.CategoryID = result.CategoryID
	return true
}

func (s *CategorizationService) evaluate(ctx context.Context, description string, rules []models.CategorizationRule) matcher.Result {
	start := time.Now()
	result := matcher.Evaluate(description, rules)
	s.metrics.RecordProcessingTime("rule.evaluation", time.Since(start))

	for _, skipped := range result.Skipped {
		s.auditLogger.LogRuleSkipped(ctx, skipped.RuleID, skipped.Pattern, skipped.Err)
		s.metrics.IncrementCounter("rule.skipped", nil)
	}

	return result
}

func (s *CategorizationService) recordIngested(ctx context.Context, transaction *models.Transaction, matched bool) {
	s.metrics.IncrementCounter("transaction.ingested", map[string]string{"status": transaction.Status()})
	if matched {
		s.auditLogger.LogTransactionCategorized(ctx, transaction.ID, transaction.CategoryID, CategorizationSourceRule)
	}
}

func (s *CategorizationService) recordDecision(ctx context.Context, before, after *models.Transaction, action string) {
	s.auditLogger.LogReviewDecision(ctx, after.ID, action, before.Status(), after.Status())
	s.metrics.IncrementCounter("review.decision", map[string]string{"action": action})
}

package services

import (
	"context"
	"log/slog"

	"finance-ledger/internal/models"
	"finance-ledger/internal/repositories"

	"github.com/google/uuid"
)

type CategorizationRuleService struct {
	ruleRepo repositories.CategorizationRuleRepositoryInterface
	logger   *slog.Logger
}

func NewCategorizationRuleService(ruleRepo repositories.CategorizationRuleRepositoryInterface, logger *slog.Logger) CategorizationRuleServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategorizationRuleService{
		ruleRepo: ruleRepo,
		logger:   logger,
	}
}

// GetAllRules returns every rule, enabled or not, in evaluation order
func (s *CategorizationRuleService) GetAllRules(ctx context.Context) ([]models.CategorizationRule, error) {
	return s.ruleRepo.GetAll()
}

func (s *CategorizationRuleService) GetRuleByID(ctx context.Context, id uuid.UUID) (*models.CategorizationRule, error) {
	return s.ruleRepo.GetByID(id)
}

func (s *CategorizationRuleService) CreateRule(ctx context.Context, rule *models.CategorizationRule) error {
	if err := s.ruleRepo.Create(rule); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "categorization rule created",
		slog.String("rule_id", rule.ID.String()),
		slog.String("category_id", rule.CategoryID.String()),
		slog.Int("priority", rule.Priority),
		slog.Bool("is_regex", rule.IsRegex),
	)
	return nil
}

func (s *CategorizationRuleService) UpdateRule(ctx context.Context, id uuid.UUID, update models.CategorizationRuleUpdate) (*models.CategorizationRule, error) {
	return s.ruleRepo.Update(id, update)
}

func (s *CategorizationRuleService) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if err := s.ruleRepo.Delete(id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "categorization rule deleted", slog.String("rule_id", id.String()))
	return nil
}

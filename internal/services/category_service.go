package services

import (
	"context"
	"log/slog"

	"finance-ledger/internal/models"
	"finance-ledger/internal/repositories"

	"github.com/google/uuid"
)

// CategoryService manages categories. Deleting a category removes its rules
// and is refused while transactions reference it.
type CategoryService struct {
	categoryRepo repositories.CategoryRepositoryInterface
	auditLogger  AuditLoggerInterface
	logger       *slog.Logger
}

func NewCategoryService(categoryRepo repositories.CategoryRepositoryInterface, auditLogger AuditLoggerInterface, logger *slog.Logger) CategoryServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		auditLogger:  auditLogger,
		logger:       logger,
	}
}

func (s *CategoryService) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.GetAll()
}

func (s *CategoryService) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.categoryRepo.GetByID(id)
}

func (s *CategoryService) CreateCategory(ctx context.Context, category *models.Category) error {
	if err := s.categoryRepo.Create(category); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID.String()),
		slog.String("name", category.Name),
	)
	return nil
}

func (s *CategoryService) CreateCategories(ctx context.Context, categories []*models.Category) error {
	if len(categories) == 0 {
		return nil
	}
	if err := s.categoryRepo.CreateBatch(categories); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "categories created", slog.Int("count", len(categories)))
	return nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, update models.CategoryUpdate) (*models.Category, error) {
	return s.categoryRepo.Update(id, update)
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.categoryRepo.Delete(id); err != nil {
		return err
	}

	s.auditLogger.LogCategoryDeleted(ctx, id, category.Name)
	return nil
}

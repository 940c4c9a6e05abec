package repositories

import (
	"finance-ledger/internal/models"

	"github.com/google/uuid"
)

// TransactionRepositoryInterface defines the contract for transaction repository operations
type TransactionRepositoryInterface interface {
	Create(transaction *models.Transaction) error
	CreateBatch(transactions []*models.Transaction) error
	GetByID(id uuid.UUID) (*models.Transaction, error)
	GetAll() ([]models.Transaction, error)
	Update(id uuid.UUID, update models.TransactionUpdate) (*models.Transaction, error)
	Delete(id uuid.UUID) error

	// Review queue
	GetUncategorized() ([]models.Transaction, error)
	CountUncategorized() (int64, error)
	CountByCategoryID(categoryID uuid.UUID) (int64, error)
}

// CategoryRepositoryInterface defines the contract for category repository operations
type CategoryRepositoryInterface interface {
	Create(category *models.Category) error
	CreateBatch(categories []*models.Category) error
	GetByID(id uuid.UUID) (*models.Category, error)
	GetByIDs(ids []uuid.UUID) (map[uuid.UUID]*models.Category, error)
	GetAll() ([]models.Category, error)
	Update(id uuid.UUID, update models.CategoryUpdate) (*models.Category, error)
	Delete(id uuid.UUID) error
}

// CategorizationRuleRepositoryInterface defines the contract for rule repository operations
type CategorizationRuleRepositoryInterface interface {
	Create(rule *models.CategorizationRule) error
	GetByID(id uuid.UUID) (*models.CategorizationRule, error)
	GetAll() ([]models.CategorizationRule, error)
	// GetEnabled returns enabled rules in evaluation order
	GetEnabled() ([]models.CategorizationRule, error)
	Update(id uuid.UUID, update models.CategorizationRuleUpdate) (*models.CategorizationRule, error)
	Delete(id uuid.UUID) error
}

package repositories

import (
	"errors"

	apierrors "finance-ledger/internal/errors"
	"finance-ledger/internal/matcher"
	"finance-ledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type categorizationRuleRepository struct {
	db *gorm.DB
}

// NewCategorizationRuleRepository creates a new rule repository
func NewCategorizationRuleRepository(db *gorm.DB) CategorizationRuleRepositoryInterface {
	return &categorizationRuleRepository{
		db: db,
	}
}

func (r *categorizationRuleRepository) Create(rule *models.CategorizationRule) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if rule.CategoryID != uuid.Nil {
			if err := requireCategories(tx, []uuid.UUID{rule.CategoryID}); err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Create(rule).Error; err != nil {
			return translateRuleWriteError(rule, err, "create categorization rule")
		}
		return nil
	})
}

func (r *categorizationRuleRepository) GetByID(id uuid.UUID) (*models.CategorizationRule, error) {
	var rule models.CategorizationRule
	if err := r.db.Preload("Category").Where("id = ?", id).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFound(apierrors.EntityRule, id)
		}
		return nil, apierrors.InternalStorage("get categorization rule", err)
	}
	return &rule, nil
}

func (r *categorizationRuleRepository) GetAll() ([]models.CategorizationRule, error) {
	var rules []models.CategorizationRule
	if err := r.ordered(r.db).Find(&rules).Error; err != nil {
		return nil, apierrors.InternalStorage("get categorization rules", err)
	}

	r.withCategories(rules)
	return rules, nil
}

// GetEnabled returns the enabled rules sorted by priority desc, then oldest
// first, then by id
func (r *categorizationRuleRepository) GetEnabled() ([]models.CategorizationRule, error) {
	var rules []models.CategorizationRule
	if err := r.ordered(r.db.Where("is_enabled = ?", true)).Find(&rules).Error; err != nil {
		return nil, apierrors.InternalStorage("get enabled categorization rules", err)
	}

	// column types differ per driver; re-sort so the order never depends on them
	matcher.SortRules(rules)
	return rules, nil
}

func (r *categorizationRuleRepository) Update(id uuid.UUID, update models.CategorizationRuleUpdate) (*models.CategorizationRule, error) {
	var rule models.CategorizationRule

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&rule).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierrors.NotFound(apierrors.EntityRule, id)
			}
			return apierrors.InternalStorage("get categorization rule", err)
		}

		columns, err := update.Apply(&rule)
		if err != nil {
			return validationError(err)
		}
		if err := rule.Validate(); err != nil {
			return validationError(err)
		}

		if update.CategoryID.HasValue() {
			if err := requireCategories(tx, []uuid.UUID{rule.CategoryID}); err != nil {
				return err
			}
		}

		rule.UpdatedAt = nextUpdatedAt(rule.UpdatedAt)
		columns["updated_at"] = rule.UpdatedAt

		if err := tx.Model(&models.CategorizationRule{}).Where("id = ?", id).Updates(columns).Error; err != nil {
			return translateRuleWriteError(&rule, err, "update categorization rule")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &rule, nil
}

func (r *categorizationRuleRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.CategorizationRule{})
	if result.Error != nil {
		return apierrors.InternalStorage("delete categorization rule", result.Error)
	}
	if result.RowsAffected == 0 {
		return apierrors.NotFound(apierrors.EntityRule, id)
	}
	return nil
}

func (r *categorizationRuleRepository) ordered(db *gorm.DB) *gorm.DB {
	return db.Order("priority DESC").Order("created_at ASC").Order("id ASC")
}

func (r *categorizationRuleRepository) withCategories(rules []models.CategorizationRule) {
	ids := make([]uuid.UUID, 0, len(rules))
	for i := range rules {
		ids = append(ids, rules[i].CategoryID)
	}

	categories := attachCategories(r.db, ids)
	for i := range rules {
		rules[i].Category = categories[rules[i].CategoryID]
	}
}

func translateRuleWriteError(rule *models.CategorizationRule, err error, operation string) error {
	if verr := validationError(err); verr != nil {
		return verr
	}
	if isForeignKeyError(err) {
		return apierrors.NotFound(apierrors.EntityCategory, rule.CategoryID)
	}
	return apierrors.InternalStorage(operation, err)
}

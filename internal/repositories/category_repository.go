package repositories

import (
	"errors"
	"fmt"

	apierrors "finance-ledger/internal/errors"
	"finance-ledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// categoryRepository implements CategoryRepositoryInterface
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepositoryInterface {
	return &categoryRepository{
		db: db,
	}
}

// Create creates a new category
func (r *categoryRepository) Create(category *models.Category) error {
	if err := r.db.Create(category).Error; err != nil {
		return r.translateWriteError(category.Name, err, "create category")
	}
	return nil
}

// CreateBatch creates all categories or none of them
func (r *categoryRepository) CreateBatch(categories []*models.Category) error {
	if len(categories) == 0 {
		return nil
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, category := range categories {
			if err := tx.Create(category).Error; err != nil {
				return r.translateWriteError(category.Name, err, "create categories")
			}
		}
		return nil
	})
}

// GetByID retrieves a category by ID
func (r *categoryRepository) GetByID(id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFound(apierrors.EntityCategory, id)
		}
		return nil, apierrors.InternalStorage("get category", err)
	}
	return &category, nil
}

// GetByIDs retrieves the categories with the given IDs keyed by ID. Unknown
// IDs are absent from the result.
func (r *categoryRepository) GetByIDs(ids []uuid.UUID) (map[uuid.UUID]*models.Category, error) {
	result := make(map[uuid.UUID]*models.Category, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var categories []models.Category
	if err := r.db.Where("id IN ?", uniqueIDs(ids)).Find(&categories).Error; err != nil {
		return nil, apierrors.InternalStorage("get categories", err)
	}

	for i := range categories {
		result[categories[i].ID] = &categories[i]
	}
	return result, nil
}

// GetAll retrieves all categories ordered by name
func (r *categoryRepository) GetAll() ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apierrors.InternalStorage("get categories", err)
	}
	return categories, nil
}

// Update applies the set fields of update to the category
func (r *categoryRepository) Update(id uuid.UUID, update models.CategoryUpdate) (*models.Category, error) {
	var category models.Category

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierrors.NotFound(apierrors.EntityCategory, id)
			}
			return apierrors.InternalStorage("get category", err)
		}

		columns, err := update.Apply(&category)
		if err != nil {
			return validationError(err)
		}
		if err := category.Validate(); err != nil {
			return validationError(err)
		}

		category.UpdatedAt = nextUpdatedAt(category.UpdatedAt)
		columns["updated_at"] = category.UpdatedAt

		if err := tx.Model(&models.Category{}).Where("id = ?", id).Updates(columns).Error; err != nil {
			return r.translateWriteError(category.Name, err, "update category")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &category, nil
}

// Delete removes a category and its rules. A category still referenced by
// transactions is left untouched and a conflict carrying the count is returned.
func (r *categoryRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return apierrors.InternalStorage("get category", err)
		}
		if exists == 0 {
			return apierrors.NotFound(apierrors.EntityCategory, id)
		}

		var referenced int64
		if err := tx.Model(&models.Transaction{}).Where("category_id = ?", id).Count(&referenced).Error; err != nil {
			return apierrors.InternalStorage("count category transactions", err)
		}
		if referenced > 0 {
			return apierrors.ReferencedConflict(apierrors.EntityCategory, id, referenced)
		}

		if err := tx.Where("category_id = ?", id).Delete(&models.CategorizationRule{}).Error; err != nil {
			return apierrors.InternalStorage("delete category rules", err)
		}

		if err := tx.Where("id = ?", id).Delete(&models.Category{}).Error; err != nil {
			if isForeignKeyError(err) {
				// a transaction was assigned between the count and the delete
				return apierrors.ReferencedConflict(apierrors.EntityCategory, id, 1)
			}
			return apierrors.InternalStorage("delete category", err)
		}
		return nil
	})
}

func (r *categoryRepository) translateWriteError(name string, err error, operation string) error {
	if verr := validationError(err); verr != nil {
		return verr
	}
	if isDuplicateKeyError(err) {
		return apierrors.Conflict(apierrors.CategoryAlreadyExists,
			fmt.Sprintf("category with name %q already exists", name), err)
	}
	return apierrors.InternalStorage(operation, err)
}

package repositories

import (
	"errors"

	apierrors "finance-ledger/internal/errors"
	"finance-ledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// transactionRepository implements TransactionRepositoryInterface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{
		db: db,
	}
}

// Create creates a new transaction. A referenced category must exist.
func (r *transactionRepository) Create(transaction *models.Transaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if transaction.CategoryID != nil {
			if err := requireCategories(tx, []uuid.UUID{*transaction.CategoryID}); err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Create(transaction).Error; err != nil {
			return translateTransactionWriteError(transaction, err, "create transaction")
		}
		return nil
	})
}

// CreateBatch creates multiple transactions in a single database transaction.
// Either every row is written or none is.
func (r *transactionRepository) CreateBatch(transactions []*models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	var categoryIDs []uuid.UUID
	for _, t := range transactions {
		if t.CategoryID != nil {
			categoryIDs = append(categoryIDs, *t.CategoryID)
		}
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := requireCategories(tx, categoryIDs); err != nil {
			return err
		}

		for _, t := range transactions {
			if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
				return translateTransactionWriteError(t, err, "create batch transactions")
			}
		}
		return nil
	})
}

// GetByID retrieves a transaction by ID with its category
func (r *transactionRepository) GetByID(id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.Preload("Category").Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFound(apierrors.EntityTransaction, id)
		}
		return nil, apierrors.InternalStorage("get transaction", err)
	}
	return &transaction, nil
}

// GetAll retrieves all transactions, newest first
func (r *transactionRepository) GetAll() ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.Order("date DESC").Order("id ASC").Find(&transactions).Error; err != nil {
		return nil, apierrors.InternalStorage("get transactions", err)
	}

	r.withCategories(transactions)
	return transactions, nil
}

// Update applies the set fields of update to the transaction
func (r *transactionRepository) Update(id uuid.UUID, update models.TransactionUpdate) (*models.Transaction, error) {
	var transaction models.Transaction

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&transaction).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierrors.NotFound(apierrors.EntityTransaction, id)
			}
			return apierrors.InternalStorage("get transaction", err)
		}

		columns, err := update.Apply(&transaction)
		if err != nil {
			return validationError(err)
		}
		if err := transaction.Validate(); err != nil {
			return validationError(err)
		}

		if update.CategoryID.HasValue() {
			if err := requireCategories(tx, []uuid.UUID{*transaction.CategoryID}); err != nil {
				return err
			}
		}

		transaction.UpdatedAt = nextUpdatedAt(transaction.UpdatedAt)
		columns["updated_at"] = transaction.UpdatedAt

		if err := tx.Model(&models.Transaction{}).Where("id = ?", id).Updates(columns).Error; err != nil {
			return translateTransactionWriteError(&transaction, err, "update transaction")
		}

		if transaction.CategoryID != nil {
			var category models.Category
			if err := tx.Where("id = ?", *transaction.CategoryID).First(&category).Error; err == nil {
				transaction.Category = &category
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &transaction, nil
}

// Delete removes a transaction
func (r *transactionRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.Transaction{})
	if result.Error != nil {
		return apierrors.InternalStorage("delete transaction", result.Error)
	}
	if result.RowsAffected == 0 {
		return apierrors.NotFound(apierrors.EntityTransaction, id)
	}
	return nil
}

// GetUncategorized returns the review queue: transactions with no category
// that have not been skipped, newest first
func (r *transactionRepository) GetUncategorized() ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.uncategorized(r.db).
		Order("date DESC").Order("id ASC").
		Find(&transactions).Error; err != nil {
		return nil, apierrors.InternalStorage("get uncategorized transactions", err)
	}
	return transactions, nil
}

// CountUncategorized returns the size of the review queue
func (r *transactionRepository) CountUncategorized() (int64, error) {
	var count int64
	if err := r.uncategorized(r.db.Model(&models.Transaction{})).Count(&count).Error; err != nil {
		return 0, apierrors.InternalStorage("count uncategorized transactions", err)
	}
	return count, nil
}

// CountByCategoryID returns how many transactions reference the category
func (r *transactionRepository) CountByCategoryID(categoryID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Transaction{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, apierrors.InternalStorage("count category transactions", err)
	}
	return count, nil
}

func (r *transactionRepository) uncategorized(db *gorm.DB) *gorm.DB {
	return db.Where("category_id IS NULL AND is_skipped = ?", false)
}

func (r *transactionRepository) withCategories(transactions []models.Transaction) {
	ids := make([]uuid.UUID, 0, len(transactions))
	for i := range transactions {
		if transactions[i].CategoryID != nil {
			ids = append(ids, *transactions[i].CategoryID)
		}
	}

	categories := attachCategories(r.db, ids)
	for i := range transactions {
		if transactions[i].CategoryID != nil {
			transactions[i].Category = categories[*transactions[i].CategoryID]
		}
	}
}

// requireCategories returns NotFound for the first id with no category row
func requireCategories(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	var found []uuid.UUID
	if err := tx.Model(&models.Category{}).Where("id IN ?", uniqueIDs(ids)).Pluck("id", &found).Error; err != nil {
		return apierrors.InternalStorage("get categories", err)
	}

	known := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return apierrors.NotFound(apierrors.EntityCategory, id)
		}
	}
	return nil
}

func translateTransactionWriteError(transaction *models.Transaction, err error, operation string) error {
	if verr := validationError(err); verr != nil {
		return verr
	}
	if isForeignKeyError(err) && transaction.CategoryID != nil {
		return apierrors.NotFound(apierrors.EntityCategory, *transaction.CategoryID)
	}
	return apierrors.InternalStorage(operation, err)
}

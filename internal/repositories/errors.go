package repositories

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	apierrors "finance-ledger/internal/errors"
	"finance-ledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}

func isForeignKeyError(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "violates foreign key constraint") ||
		strings.Contains(msg, "a foreign key constraint fails")
}

// validationError maps model validation failures to InvalidInput. It returns
// nil for any other error.
func validationError(err error) error {
	var nullErr *models.NullFieldError
	switch {
	case errors.As(err, &nullErr):
		return apierrors.InvalidInput(apierrors.ValidationRequiredField, nullErr.Error(), err)
	case errors.Is(err, models.ErrEmptyCategoryName),
		errors.Is(err, models.ErrInvalidSpendingType):
		return apierrors.InvalidInput(apierrors.CategoryInvalid, err.Error(), err)
	case errors.Is(err, models.ErrInvalidPattern):
		return apierrors.InvalidInput(apierrors.RuleInvalidPattern, err.Error(), err)
	case errors.Is(err, models.ErrEmptyPattern),
		errors.Is(err, models.ErrMissingCategory):
		return apierrors.InvalidInput(apierrors.RuleInvalid, err.Error(), err)
	case errors.Is(err, models.ErrEmptyDescription),
		errors.Is(err, models.ErrMissingDate):
		return apierrors.InvalidInput(apierrors.TransactionValidationFailed, err.Error(), err)
	}
	return nil
}

// nextUpdatedAt returns a timestamp strictly after previous
func nextUpdatedAt(previous time.Time) time.Time {
	now := time.Now().UTC()
	if !now.After(previous) {
		return previous.Add(time.Microsecond)
	}
	return now
}

// attachCategories loads the categories referenced by ids with a single query.
// A failed lookup is logged and yields an empty map so callers can still
// return the primary rows.
func attachCategories(db *gorm.DB, ids []uuid.UUID) map[uuid.UUID]*models.Category {
	byID := make(map[uuid.UUID]*models.Category, len(ids))
	if len(ids) == 0 {
		return byID
	}

	var categories []models.Category
	if err := db.Where("id IN ?", uniqueIDs(ids)).Find(&categories).Error; err != nil {
		slog.Warn("failed to load related categories",
			slog.Int("count", len(ids)),
			slog.String("error", err.Error()))
		return byID
	}

	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}
	return byID
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

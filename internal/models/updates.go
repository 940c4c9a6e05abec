package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NullFieldError is returned when a partial update tries to clear a field
// that cannot be null
type NullFieldError struct {
	Field string
}

func (e *NullFieldError) Error() string {
	return fmt.Sprintf("field %s cannot be null", e.Field)
}

// TransactionUpdate describes a partial update of a transaction. Only set
// fields are written.
type TransactionUpdate struct {
	Date         Optional[time.Time]       `json:"date"`
	Description  Optional[string]          `json:"description"`
	Details      Optional[string]          `json:"details"`
	Amount       Optional[decimal.Decimal] `json:"amount"`
	IsUnexpected Optional[bool]            `json:"isUnexpected"`
	SourceFile   Optional[string]          `json:"sourceFile"`
	CategoryID   Optional[uuid.UUID]       `json:"categoryId"`
	IsSkipped    Optional[bool]            `json:"isSkipped"`
	ReviewedAt   Optional[time.Time]       `json:"reviewedAt"`
}

// IsEmpty reports whether no field is set
func (u TransactionUpdate) IsEmpty() bool {
	return !u.Date.IsSet() && !u.Description.IsSet() && !u.Details.IsSet() &&
		!u.Amount.IsSet() && !u.IsUnexpected.IsSet() && !u.SourceFile.IsSet() &&
		!u.CategoryID.IsSet() && !u.IsSkipped.IsSet() && !u.ReviewedAt.IsSet()
}

// Apply writes the set fields onto t and returns the column values to persist
func (u TransactionUpdate) Apply(t *Transaction) (map[string]interface{}, error) {
	columns := make(map[string]interface{})

	if u.Date.IsSet() {
		v, ok := u.Date.Value()
		if !ok {
			return nil, &NullFieldError{Field: "date"}
		}
		t.Date = v
		columns["date"] = v
	}
	if u.Description.IsSet() {
		v, ok := u.Description.Value()
		if !ok {
			return nil, &NullFieldError{Field: "description"}
		}
		t.Description = v
		columns["description"] = v
	}
	if u.Details.IsSet() {
		t.Details = u.Details.Ptr()
		columns["details"] = t.Details
	}
	if u.Amount.IsSet() {
		v, ok := u.Amount.Value()
		if !ok {
			return nil, &NullFieldError{Field: "amount"}
		}
		t.Amount = v
		columns["amount"] = v
	}
	if u.IsUnexpected.IsSet() {
		v, ok := u.IsUnexpected.Value()
		if !ok {
			return nil, &NullFieldError{Field: "isUnexpected"}
		}
		t.IsUnexpected = v
		columns["is_unexpected"] = v
	}
	if u.SourceFile.IsSet() {
		t.SourceFile = u.SourceFile.Ptr()
		columns["source_file"] = t.SourceFile
	}
	if u.CategoryID.IsSet() {
		t.CategoryID = u.CategoryID.Ptr()
		t.Category = nil
		columns["category_id"] = t.CategoryID
	}
	if u.IsSkipped.IsSet() {
		v, ok := u.IsSkipped.Value()
		if !ok {
			return nil, &NullFieldError{Field: "isSkipped"}
		}
		t.IsSkipped = v
		columns["is_skipped"] = v
	}
	if u.ReviewedAt.IsSet() {
		t.ReviewedAt = u.ReviewedAt.Ptr()
		columns["reviewed_at"] = t.ReviewedAt
	}

	return columns, nil
}

// CategoryUpdate describes a partial update of a category
type CategoryUpdate struct {
	Name         Optional[string]       `json:"name"`
	Color        Optional[string]       `json:"color"`
	SpendingType Optional[SpendingType] `json:"spendingType"`
	Description  Optional[string]       `json:"description"`
}

// Apply writes the set fields onto c and returns the column values to persist
func (u CategoryUpdate) Apply(c *Category) (map[string]interface{}, error) {
	columns := make(map[string]interface{})

	if u.Name.IsSet() {
		v, ok := u.Name.Value()
		if !ok {
			return nil, &NullFieldError{Field: "name"}
		}
		c.Name = v
		columns["name"] = v
	}
	if u.Color.IsSet() {
		c.Color = u.Color.Ptr()
		columns["color"] = c.Color
	}
	if u.SpendingType.IsSet() {
		v, ok := u.SpendingType.Value()
		if !ok {
			return nil, &NullFieldError{Field: "spendingType"}
		}
		c.SpendingType = v
		columns["spending_type"] = v
	}
	if u.Description.IsSet() {
		c.Description = u.Description.Ptr()
		columns["description"] = c.Description
	}

	return columns, nil
}

// CategorizationRuleUpdate describes a partial update of a rule
type CategorizationRuleUpdate struct {
	Pattern     Optional[string]    `json:"pattern"`
	IsRegex     Optional[bool]      `json:"isRegex"`
	Description Optional[string]    `json:"description"`
	Priority    Optional[int]       `json:"priority"`
	IsEnabled   Optional[bool]      `json:"isEnabled"`
	CategoryID  Optional[uuid.UUID] `json:"categoryId"`
}

// Apply writes the set fields onto r and returns the column values to persist
func (u CategorizationRuleUpdate) Apply(r *CategorizationRule) (map[string]interface{}, error) {
	columns := make(map[string]interface{})

	if u.Pattern.IsSet() {
		v, ok := u.Pattern.Value()
		if !ok {
			return nil, &NullFieldError{Field: "pattern"}
		}
		r.Pattern = v
		columns["pattern"] = v
	}
	if u.IsRegex.IsSet() {
		v, ok := u.IsRegex.Value()
		if !ok {
			return nil, &NullFieldError{Field: "isRegex"}
		}
		r.IsRegex = v
		columns["is_regex"] = v
	}
	if u.Description.IsSet() {
		r.Description = u.Description.Ptr()
		columns["description"] = r.Description
	}
	if u.Priority.IsSet() {
		v, ok := u.Priority.Value()
		if !ok {
			return nil, &NullFieldError{Field: "priority"}
		}
		r.Priority = v
		columns["priority"] = v
	}
	if u.IsEnabled.IsSet() {
		v, ok := u.IsEnabled.Value()
		if !ok {
			return nil, &NullFieldError{Field: "isEnabled"}
		}
		r.IsEnabled = v
		columns["is_enabled"] = v
	}
	if u.CategoryID.IsSet() {
		v, ok := u.CategoryID.Value()
		if !ok {
			return nil, &NullFieldError{Field: "categoryId"}
		}
		r.CategoryID = v
		r.Category = nil
		columns["category_id"] = v
	}

	return columns, nil
}

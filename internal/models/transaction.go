package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Review states of a transaction
const (
	TransactionStatusUncategorized = "uncategorized"
	TransactionStatusCategorized   = "categorized"
	TransactionStatusSkipped       = "skipped"
)

var (
	ErrEmptyDescription = errors.New("transaction description is required")
	ErrMissingDate      = errors.New("transaction date is required")
)

// Transaction represents a single ledger entry
type Transaction struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Date         time.Time       `gorm:"not null;index:idx_transactions_date" json:"date"`
	Description  string          `gorm:"type:text;not null" json:"description"`
	Details      *string         `gorm:"type:text" json:"details,omitempty"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	IsUnexpected bool            `gorm:"not null" json:"isUnexpected"`
	SourceFile   *string         `gorm:"type:varchar(512)" json:"sourceFile,omitempty"`
	CategoryID   *uuid.UUID      `gorm:"type:uuid;index:idx_transactions_category_id" json:"categoryId"`
	IsSkipped    bool            `gorm:"not null" json:"isSkipped"`
	ReviewedAt   *time.Time      `json:"reviewedAt,omitempty"`
	CreatedAt    time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updatedAt"`

	// Transactions reference a category but never own it: deletion of a
	// referenced category is refused.
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"category,omitempty"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	// Set timestamps if not already set (for tests)
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	return t.Validate()
}

// Validate validates the transaction fields
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// IsUncategorized reports whether the transaction still awaits review
func (t *Transaction) IsUncategorized() bool {
	return t.CategoryID == nil && !t.IsSkipped
}

// Status returns the review state derived from the category and skip flag
func (t *Transaction) Status() string {
	switch {
	case t.IsSkipped:
		return TransactionStatusSkipped
	case t.CategoryID != nil:
		return TransactionStatusCategorized
	default:
		return TransactionStatusUncategorized
	}
}

// TableName returns the table name for Transaction
func (t *Transaction) TableName() string {
	return "transactions"
}

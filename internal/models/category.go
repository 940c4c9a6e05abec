package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SpendingType classifies how discretionary the spending in a category is
type SpendingType string

const (
	SpendingTypeEssential     SpendingType = "essential"
	SpendingTypeDiscretionary SpendingType = "discretionary"
	SpendingTypeMixed         SpendingType = "mixed"
	SpendingTypeUnclassified  SpendingType = "unclassified"
)

var (
	ErrEmptyCategoryName   = errors.New("category name is required")
	ErrInvalidSpendingType = errors.New("invalid spending type")
)

// Category groups transactions. Categories are the root entities of the ledger:
// rules are owned by a category, transactions only reference one.
type Category struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	Name         string       `gorm:"type:varchar(255);not null;uniqueIndex:idx_categories_name" json:"name"`
	Color        *string      `gorm:"type:varchar(32)" json:"color,omitempty"`
	SpendingType SpendingType `gorm:"type:varchar(20);not null" json:"spendingType"`
	Description  *string      `gorm:"type:text" json:"description,omitempty"`
	CreatedAt    time.Time    `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate hook for Category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.SpendingType == "" {
		c.SpendingType = SpendingTypeUnclassified
	}

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	return c.Validate()
}

// Validate validates the category fields
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategoryName
	}
	if c.SpendingType != "" && !IsValidSpendingType(string(c.SpendingType)) {
		return ErrInvalidSpendingType
	}
	return nil
}

// TableName returns the table name for Category
func (c *Category) TableName() string {
	return "categories"
}

// IsValidSpendingType checks if a spending type string is one of the known values
func IsValidSpendingType(spendingType string) bool {
	switch SpendingType(spendingType) {
	case SpendingTypeEssential, SpendingTypeDiscretionary, SpendingTypeMixed, SpendingTypeUnclassified:
		return true
	default:
		return false
	}
}

// AllSpendingTypes returns every valid spending type
func AllSpendingTypes() []SpendingType {
	return []SpendingType{
		SpendingTypeEssential,
		SpendingTypeDiscretionary,
		SpendingTypeMixed,
		SpendingTypeUnclassified,
	}
}

// CategoryNames extracts the names of the given categories, preserving order
func CategoryNames(categories []Category) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}

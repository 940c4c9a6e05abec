package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmptyPattern    = errors.New("rule pattern is required")
	ErrInvalidPattern  = errors.New("rule pattern is not a valid regular expression")
	ErrMissingCategory = errors.New("rule category is required")
)

// CategorizationRule pairs a description pattern with the category it assigns.
// Rules belong to their category and are deleted with it.
type CategorizationRule struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Pattern     string    `gorm:"type:text;not null" json:"pattern"`
	IsRegex     bool      `gorm:"not null" json:"isRegex"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Priority    int       `gorm:"not null" json:"priority"`
	IsEnabled   bool      `gorm:"not null;index:idx_categorization_rules_is_enabled" json:"isEnabled"`
	CategoryID  uuid.UUID `gorm:"type:uuid;not null;index:idx_categorization_rules_category_id" json:"categoryId"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"`
}

// BeforeCreate hook for CategorizationRule
func (r *CategorizationRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}

	return r.Validate()
}

// Validate validates the rule fields. Regex patterns must compile with the
// same flags the matcher uses.
func (r *CategorizationRule) Validate() error {
	if strings.TrimSpace(r.Pattern) == "" {
		return ErrEmptyPattern
	}
	if r.CategoryID == uuid.Nil {
		return ErrMissingCategory
	}
	if r.IsRegex {
		if _, err := CompileRulePattern(r.Pattern); err != nil {
			return ErrInvalidPattern
		}
	}
	return nil
}

// TableName returns the table name for CategorizationRule
func (r *CategorizationRule) TableName() string {
	return "categorization_rules"
}

// CompileRulePattern compiles a regex rule pattern case-insensitively
func CompileRulePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

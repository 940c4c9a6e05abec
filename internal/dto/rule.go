package dto

import (
	"time"

	"finance-ledger/internal/models"

	"github.com/google/uuid"
)

// CreateRuleRequest is the body of POST /rules. IsEnabled defaults to true
// when omitted.
type CreateRuleRequest struct {
	Pattern     string    `json:"pattern" validate:"required,rule_pattern,max=500"`
	IsRegex     bool      `json:"isRegex"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=1000"`
	Priority    int       `json:"priority"`
	IsEnabled   *bool     `json:"isEnabled,omitempty"`
	CategoryID  uuid.UUID `json:"categoryId" validate:"required"`
}

func (r CreateRuleRequest) ToModel() *models.CategorizationRule {
	enabled := true
	if r.IsEnabled != nil {
		enabled = *r.IsEnabled
	}

	return &models.CategorizationRule{
		Pattern:     r.Pattern,
		IsRegex:     r.IsRegex,
		Description: r.Description,
		Priority:    r.Priority,
		IsEnabled:   enabled,
		CategoryID:  r.CategoryID,
	}
}

type RuleResponse struct {
	ID          uuid.UUID          `json:"id"`
	Pattern     string             `json:"pattern"`
	IsRegex     bool               `json:"isRegex"`
	Description *string            `json:"description,omitempty"`
	Priority    int                `json:"priority"`
	IsEnabled   bool               `json:"isEnabled"`
	CategoryID  uuid.UUID          `json:"categoryId"`
	Category    *CategoryReference `json:"category,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func NewRuleResponse(r *models.CategorizationRule) RuleResponse {
	resp := RuleResponse{
		ID:          r.ID,
		Pattern:     r.Pattern,
		IsRegex:     r.IsRegex,
		Description: r.Description,
		Priority:    r.Priority,
		IsEnabled:   r.IsEnabled,
		CategoryID:  r.CategoryID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Category != nil {
		resp.Category = &CategoryReference{ID: r.Category.ID, Name: r.Category.Name}
	}
	return resp
}

func NewRuleResponses(rules []models.CategorizationRule) []RuleResponse {
	out := make([]RuleResponse, len(rules))
	for i := range rules {
		out[i] = NewRuleResponse(&rules[i])
	}
	return out
}

type ListRulesResponse struct {
	Rules []RuleResponse `json:"rules"`
	Total int            `json:"total"`
}

// ApplyRulesRequest asks which category the current rules give a description
type ApplyRulesRequest struct {
	Description string `json:"description" validate:"required"`
}

// ApplyRulesResponse reports the winning category, or null when no rule matched
type ApplyRulesResponse struct {
	CategoryID *uuid.UUID `json:"categoryId"`
	Matched    bool       `json:"matched"`
}

// RecategorizeResponse reports how many queued transactions the rules placed
type RecategorizeResponse struct {
	Categorized int `json:"categorized"`
}

package dto

import (
	"strings"
	"time"

	"finance-ledger/internal/models"

	"github.com/google/uuid"
)

// CreateCategoryRequest is the body of POST /categories
type CreateCategoryRequest struct {
	Name         string  `json:"name" validate:"required,not_blank,max=255"`
	Color        *string `json:"color,omitempty" validate:"omitempty,max=32"`
	SpendingType string  `json:"spendingType,omitempty" validate:"omitempty,spending_type"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// ToModel converts the request; an empty spending type defaults to unclassified
func (r CreateCategoryRequest) ToModel() *models.Category {
	spendingType := models.SpendingType(r.SpendingType)
	if spendingType == "" {
		spendingType = models.SpendingTypeUnclassified
	}

	return &models.Category{
		Name:         strings.TrimSpace(r.Name),
		Color:        r.Color,
		SpendingType: spendingType,
		Description:  r.Description,
	}
}

// CreateCategoriesRequest is the body of POST /categories/batch
type CreateCategoriesRequest struct {
	Categories []CreateCategoryRequest `json:"categories" validate:"required,min=1,max=500,dive"`
}

type CategoryResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Color        *string   `json:"color,omitempty"`
	SpendingType string    `json:"spendingType"`
	Description  *string   `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NewCategoryResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Color:        c.Color,
		SpendingType: string(c.SpendingType),
		Description:  c.Description,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func NewCategoryResponses(categories []models.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = NewCategoryResponse(&categories[i])
	}
	return out
}

type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
	Total      int                `json:"total"`
}

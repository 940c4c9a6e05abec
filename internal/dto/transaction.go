package dto

import (
	"errors"
	"strings"
	"time"

	"finance-ledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date form accepted for transaction dates
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a date is neither YYYY-MM-DD nor RFC 3339
var ErrInvalidDate = errors.New("date must be YYYY-MM-DD or RFC 3339")

// ParseDate accepts a calendar date or a full RFC 3339 timestamp and returns
// it in UTC
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, ErrInvalidDate
}

// CreateTransactionRequest is the body of POST /transactions. A missing
// categoryId lets the rules decide.
type CreateTransactionRequest struct {
	Date         string          `json:"date" validate:"required"`
	Description  string          `json:"description" validate:"required,not_blank,max=1000"`
	Details      *string         `json:"details,omitempty" validate:"omitempty,max=2000"`
	Amount       decimal.Decimal `json:"amount"`
	IsUnexpected bool            `json:"isUnexpected"`
	SourceFile   *string         `json:"sourceFile,omitempty" validate:"omitempty,max=512"`
	CategoryID   *uuid.UUID      `json:"categoryId,omitempty"`
}

// ToModel converts the request to a transaction ready for ingestion
func (r CreateTransactionRequest) ToModel() (*models.Transaction, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	return &models.Transaction{
		Date:         date,
		Description:  strings.TrimSpace(r.Description),
		Details:      r.Details,
		Amount:       r.Amount,
		IsUnexpected: r.IsUnexpected,
		SourceFile:   r.SourceFile,
		CategoryID:   r.CategoryID,
	}, nil
}

// CreateTransactionsRequest is the body of POST /transactions/batch. The
// batch is stored atomically.
type CreateTransactionsRequest struct {
	Transactions []CreateTransactionRequest `json:"transactions" validate:"required,min=1,max=1000,dive"`
}

// UpdateTransactionRequest is the body of PATCH /transactions/:id. Absent
// keys are left alone; date takes the same forms as on create.
type UpdateTransactionRequest struct {
	Date         models.Optional[string]          `json:"date"`
	Description  models.Optional[string]          `json:"description"`
	Details      models.Optional[string]          `json:"details"`
	Amount       models.Optional[decimal.Decimal] `json:"amount"`
	IsUnexpected models.Optional[bool]            `json:"isUnexpected"`
	SourceFile   models.Optional[string]          `json:"sourceFile"`
	CategoryID   models.Optional[uuid.UUID]       `json:"categoryId"`
	IsSkipped    models.Optional[bool]            `json:"isSkipped"`
	ReviewedAt   models.Optional[string]          `json:"reviewedAt"`
}

// ToUpdate converts the request to a partial update, parsing dates with
// ParseDate. A null date is passed through for the repository to reject.
func (r UpdateTransactionRequest) ToUpdate() (models.TransactionUpdate, error) {
	update := models.TransactionUpdate{
		Description:  r.Description,
		Details:      r.Details,
		Amount:       r.Amount,
		IsUnexpected: r.IsUnexpected,
		SourceFile:   r.SourceFile,
		CategoryID:   r.CategoryID,
		IsSkipped:    r.IsSkipped,
	}

	var err error
	if update.Date, err = parseOptionalDate(r.Date); err != nil {
		return models.TransactionUpdate{}, err
	}
	if update.ReviewedAt, err = parseOptionalDate(r.ReviewedAt); err != nil {
		return models.TransactionUpdate{}, err
	}
	return update, nil
}

func parseOptionalDate(field models.Optional[string]) (models.Optional[time.Time], error) {
	switch {
	case !field.IsSet():
		return models.Optional[time.Time]{}, nil
	case field.IsNull():
		return models.Null[time.Time](), nil
	}

	value, _ := field.Value()
	t, err := ParseDate(value)
	if err != nil {
		return models.Optional[time.Time]{}, err
	}
	return models.Some(t), nil
}

// SaveTransactionCategoryRequest assigns a category; null clears it
type SaveTransactionCategoryRequest struct {
	CategoryID *uuid.UUID `json:"categoryId"`
}

// TransactionResponse is a stored transaction with its derived review status
type TransactionResponse struct {
	ID           uuid.UUID          `json:"id"`
	Date         time.Time          `json:"date"`
	Description  string             `json:"description"`
	Details      *string            `json:"details,omitempty"`
	Amount       string             `json:"amount"`
	IsUnexpected bool               `json:"isUnexpected"`
	SourceFile   *string            `json:"sourceFile,omitempty"`
	CategoryID   *uuid.UUID         `json:"categoryId"`
	Category     *CategoryReference `json:"category,omitempty"`
	IsSkipped    bool               `json:"isSkipped"`
	Status       string             `json:"status"`
	ReviewedAt   *time.Time         `json:"reviewedAt,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// CategoryReference is the short category form embedded in transactions
type CategoryReference struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// NewTransactionResponse maps a model to its API form
func NewTransactionResponse(t *models.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:           t.ID,
		Date:         t.Date.UTC(),
		Description:  t.Description,
		Details:      t.Details,
		Amount:       t.Amount.StringFixed(2),
		IsUnexpected: t.IsUnexpected,
		SourceFile:   t.SourceFile,
		CategoryID:   t.CategoryID,
		IsSkipped:    t.IsSkipped,
		Status:       t.Status(),
		ReviewedAt:   t.ReviewedAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if t.Category != nil {
		resp.Category = &CategoryReference{ID: t.Category.ID, Name: t.Category.Name}
	}
	return resp
}

// NewTransactionResponses maps a slice of models
func NewTransactionResponses(transactions []models.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		out[i] = NewTransactionResponse(&transactions[i])
	}
	return out
}

// ListTransactionsResponse wraps a transaction list with its size
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int                   `json:"total"`
}

// UncategorizedCountResponse is the review queue depth
type UncategorizedCountResponse struct {
	Count int64 `json:"count"`
}

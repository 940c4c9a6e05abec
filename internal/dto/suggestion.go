package dto

import (
	"finance-ledger/internal/suggest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SuggestCategoryRequest is the body of POST /suggestions. When
// existingCategories is empty the stored category names are offered.
type SuggestCategoryRequest struct {
	Description        string          `json:"description" validate:"required,not_blank,max=1000"`
	Amount             decimal.Decimal `json:"amount"`
	Details            *string         `json:"details,omitempty" validate:"omitempty,max=2000"`
	ExistingCategories []string        `json:"existingCategories,omitempty" validate:"omitempty,max=200,dive,required"`
}

func (r SuggestCategoryRequest) ToRequest() suggest.Request {
	return suggest.Request{
		Description:        r.Description,
		Amount:             r.Amount,
		Details:            r.Details,
		ExistingCategories: r.ExistingCategories,
	}
}

type SuggestCategoryResponse struct {
	Provider    string               `json:"provider"`
	Suggestions []suggest.Suggestion `json:"suggestions"`
}

// BatchSuggestItem is one caller-identified entry of a batch
type BatchSuggestItem struct {
	ID string `json:"id" validate:"required,max=128"`
	SuggestCategoryRequest
}

// BatchSuggestRequest is the body of POST /suggestions/batch
type BatchSuggestRequest struct {
	Items []BatchSuggestItem `json:"items" validate:"required,min=1,max=200,dive"`
}

func (r BatchSuggestRequest) ToItems() []suggest.Item {
	items := make([]suggest.Item, len(r.Items))
	for i, item := range r.Items {
		items[i] = suggest.Item{ID: item.ID, Request: item.ToRequest()}
	}
	return items
}

// SuggestTransactionsRequest is the body of POST /suggestions/transactions
type SuggestTransactionsRequest struct {
	TransactionIDs []uuid.UUID `json:"transactionIds" validate:"required,min=1,max=200"`
}

// BatchItemError is the itemized failure list of a batch response
type BatchItemError struct {
	ID      string `json:"id"`
	Index   int    `json:"index"`
	Message string `json:"message"`
}

type BatchSuggestResponse struct {
	Provider  string               `json:"provider"`
	Results   []suggest.ItemResult `json:"results"`
	Errors    []BatchItemError     `json:"errors"`
	Batches   int                  `json:"batches"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
}

func NewBatchSuggestResponse(provider string, result *suggest.BatchResult) BatchSuggestResponse {
	errs := make([]BatchItemError, len(result.Errors))
	for i, e := range result.Errors {
		errs[i] = BatchItemError{ID: e.ID, Index: e.Index, Message: e.Err.Error()}
	}

	results := result.Results
	if results == nil {
		results = []suggest.ItemResult{}
	}

	return BatchSuggestResponse{
		Provider:  provider,
		Results:   results,
		Errors:    errs,
		Batches:   result.Batches,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
	}
}

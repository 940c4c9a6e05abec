// Package suggest asks a language model (or a local heuristic) which of the
// user's categories fits a transaction. Providers return suggestions ranked
// by confidence; BatchProcessor paces calls over many transactions.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured is returned when the provider has no API credential
	ErrNotConfigured = errors.New("suggestion provider is not configured")
	ErrEmptyRequest  = errors.New("transaction description is required")
)

// Request describes the transaction to categorize
type Request struct {
	Description        string          `json:"description"`
	Amount             decimal.Decimal `json:"amount"`
	Details            *string         `json:"details,omitempty"`
	ExistingCategories []string        `json:"existingCategories,omitempty"`
}

// Suggestion is one ranked candidate category
type Suggestion struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Provider supplies category suggestions for a single transaction
type Provider interface {
	Name() string
	SuggestCategory(ctx context.Context, req Request) ([]Suggestion, error)
}

// ParseError reports model output that could not be decoded into suggestions
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse suggestion response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Rank clamps confidences into [0,1], drops empty and duplicate categories
// and orders the rest by confidence, highest first
func Rank(suggestions []Suggestion) []Suggestion {
	seen := make(map[string]struct{}, len(suggestions))
	ranked := make([]Suggestion, 0, len(suggestions))

	for _, s := range suggestions {
		if s.Category == "" {
			continue
		}
		if _, ok := seen[s.Category]; ok {
			continue
		}
		seen[s.Category] = struct{}{}

		switch {
		case s.Confidence < 0:
			s.Confidence = 0
		case s.Confidence > 1:
			s.Confidence = 1
		}
		ranked = append(ranked, s)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	return ranked
}

// Filter keeps at most limit suggestions with confidence >= minConfidence.
// A limit below one keeps all of them.
func Filter(suggestions []Suggestion, minConfidence float64, limit int) []Suggestion {
	filtered := make([]Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if s.Confidence < minConfidence {
			continue
		}
		filtered = append(filtered, s)
		if limit > 0 && len(filtered) == limit {
			break
		}
	}
	return filtered
}

package suggest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicProvider_SuggestCategory(t *testing.T) {
	provider := NewHeuristicProvider()
	categories := []string{"Groceries", "Dining", "Entertainment", "Salary"}

	tests := []struct {
		name        string
		description string
		expected    string
	}{
		{name: "grocery merchant", description: "WALMART SUPERCENTER #123", expected: "Groceries"},
		{name: "streaming merchant", description: "NETFLIX.COM 866-579-7172", expected: "Entertainment"},
		{name: "category named in description", description: "Team dining reimbursement", expected: "Dining"},
		{name: "misspelled category", description: "monthly salery transfer", expected: "Salary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestions, err := provider.SuggestCategory(context.Background(), Request{
				Description:        tt.description,
				Amount:             decimal.NewFromFloat(-20),
				ExistingCategories: categories,
			})
			require.NoError(t, err)
			require.NotEmpty(t, suggestions)
			assert.Equal(t, tt.expected, suggestions[0].Category)
			assert.NotEmpty(t, suggestions[0].Reasoning)
			assert.LessOrEqual(t, suggestions[0].Confidence, 1.0)
		})
	}
}

func TestHeuristicProvider_NoMatch(t *testing.T) {
	suggestions, err := NewHeuristicProvider().SuggestCategory(context.Background(), Request{
		Description:        "XJ-4471 QWZ",
		ExistingCategories: []string{"Groceries"},
	})
	require.NoError(t, err)
	assert.Empty(t, suggestions)

	suggestions, err = NewHeuristicProvider().SuggestCategory(context.Background(), Request{Description: "WALMART"})
	require.NoError(t, err)
	assert.Empty(t, suggestions, "only existing categories are suggested")
}

func TestHeuristicProvider_EmptyDescription(t *testing.T) {
	_, err := NewHeuristicProvider().SuggestCategory(context.Background(), Request{Description: " "})
	assert.ErrorIs(t, err, ErrEmptyRequest)
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory_Validate(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		wantErr  error
	}{
		{name: "valid category", category: Category{Name: "Groceries", SpendingType: SpendingTypeEssential}},
		{name: "empty spending type is defaulted later", category: Category{Name: "Misc"}},
		{name: "missing name", category: Category{SpendingType: SpendingTypeMixed}, wantErr: ErrEmptyCategoryName},
		{name: "whitespace name", category: Category{Name: "  "}, wantErr: ErrEmptyCategoryName},
		{name: "unknown spending type", category: Category{Name: "Fun", SpendingType: "luxury"}, wantErr: ErrInvalidSpendingType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.category.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsValidSpendingType(t *testing.T) {
	for _, st := range AllSpendingTypes() {
		assert.True(t, IsValidSpendingType(string(st)), st)
	}
	assert.False(t, IsValidSpendingType("ESSENTIAL"))
	assert.False(t, IsValidSpendingType(""))
}

func TestCategoryUpdate_Apply(t *testing.T) {
	c := Category{Name: "Dining", Color: strPtr("#ff0000"), SpendingType: SpendingTypeDiscretionary}

	columns, err := CategoryUpdate{Color: Null[string](), SpendingType: Some(SpendingTypeMixed)}.Apply(&c)

	assert.NoError(t, err)
	assert.Len(t, columns, 2)
	assert.Nil(t, c.Color)
	assert.Equal(t, SpendingTypeMixed, c.SpendingType)
	assert.Equal(t, "Dining", c.Name)

	_, err = CategoryUpdate{Name: Null[string]()}.Apply(&c)
	assert.Error(t, err)
}

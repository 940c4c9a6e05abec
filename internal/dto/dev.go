package dto

// SeedRequest is the body of POST /dev/seed
type SeedRequest struct {
	Transactions int `json:"transactions" validate:"omitempty,min=1,max=500"`
}

type SeedResponse struct {
	CategoriesCreated   int `json:"categoriesCreated"`
	RulesCreated        int `json:"rulesCreated"`
	TransactionsCreated int `json:"transactionsCreated"`
	Categorized         int `json:"categorized"`
}

package models

// SeedSummary counts what a sample-data run added to the ledger
type SeedSummary struct {
	CategoriesCreated   int
	RulesCreated        int
	TransactionsCreated int
	Categorized         int
}

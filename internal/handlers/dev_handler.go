package handlers

import (
	"net/http"

	"finance-ledger/internal/dto"
	"finance-ledger/internal/services"

	"github.com/labstack/echo/v4"
)

// DevHandler handles development-only endpoints
// These endpoints are only registered outside production
type DevHandler struct {
	sampleData services.SampleDataServiceInterface
}

// NewDevHandler creates a new development handler
func NewDevHandler(sampleData services.SampleDataServiceInterface) *DevHandler {
	return &DevHandler{sampleData: sampleData}
}

// Seed fills the ledger with sample categories, rules and transactions
//
// Method: POST /api/v1/dev/seed
// Environment: Development only
//
// Body (optional):
//   - transactions: Number of transactions to generate (default: 50, max: 500)
//
// Success Response: 201 Created with the counts of created records
func (h *DevHandler) Seed(c echo.Context) error {
	var req dto.SeedRequest
	if err := c.Bind(&req); err != nil {
		return sendInvalidBody(c)
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	summary, err := h.sampleData.Seed(c.Request().Context(), req.Transactions)
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.SeedResponse{
		CategoriesCreated:   summary.CategoriesCreated,
		RulesCreated:        summary.RulesCreated,
		TransactionsCreated: summary.TransactionsCreated,
		Categorized:         summary.Categorized,
	})
}

package handlers

import (
	"net/http"

	"finance-ledger/internal/dto"
	"finance-ledger/internal/services"

	"github.com/labstack/echo/v4"
)

// SuggestionHandler exposes the AI category suggestions. Suggestions are
// advisory; nothing here writes to the ledger.
type SuggestionHandler struct {
	suggestionService services.SuggestionServiceInterface
}

func NewSuggestionHandler(suggestionService services.SuggestionServiceInterface) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

// SuggestCategory ranks categories for one description
//
// Method: POST /api/v1/suggestions
//
// Error Responses:
//   - 400: Missing description
//   - 502: Provider failed or returned an unparseable answer (AI_001, AI_003)
//   - 503: Provider has no API key (AI_002)
func (h *SuggestionHandler) SuggestCategory(c echo.Context) error {
	var req dto.SuggestCategoryRequest
	if err := c.Bind(&req); err != nil {
		return sendInvalidBody(c)
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	suggestions, err := h.suggestionService.SuggestCategory(c.Request().Context(), req.ToRequest())
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.SuggestCategoryResponse{
		Provider:    h.suggestionService.ProviderName(),
		Suggestions: suggestions,
	})
}

// BatchProcess suggests categories for many items. Items fail individually;
// the response is 200 with the per-item errors listed.
//
// Method: POST /api/v1/suggestions/batch
func (h *SuggestionHandler) BatchProcess(c echo.Context) error {
	var req dto.BatchSuggestRequest
	if err := c.Bind(&req); err != nil {
		return sendInvalidBody(c)
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	result, err := h.suggestionService.BatchProcess(c.Request().Context(), req.ToItems())
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewBatchSuggestResponse(h.suggestionService.ProviderName(), result))
}

// SuggestForTransactions suggests categories for stored transactions. Unknown
// ids are reported as failed items.
//
// Method: POST /api/v1/suggestions/transactions
func (h *SuggestionHandler) SuggestForTransactions(c echo.Context) error {
	var req dto.SuggestTransactionsRequest
	if err := c.Bind(&req); err != nil {
		return sendInvalidBody(c)
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	result, err := h.suggestionService.SuggestForTransactions(c.Request().Context(), req.TransactionIDs)
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewBatchSuggestResponse(h.suggestionService.ProviderName(), result))
}

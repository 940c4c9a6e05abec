package handlers

import (
	"fmt"
	"net/http"

	"finance-ledger/internal/dto"
	apierrors "finance-ledger/internal/errors"
	"finance-ledger/internal/models"
	"finance-ledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TransactionHandler serves transaction CRUD, ingestion and the review queue
type TransactionHandler struct {
	transactionService    services.TransactionServiceInterface
	categorizationService services.CategorizationServiceInterface
}

func NewTransactionHandler(
	transactionService services.TransactionServiceInterface,
	categorizationService services.CategorizationServiceInterface,
) *TransactionHandler {
	return &TransactionHandler{
		transactionService:    transactionService,
		categorizationService: categorizationService,
	}
}

// ListTransactions returns every transaction, newest first
//
// Method: GET /api/v1/transactions
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	transactions, err := h.transactionService.GetAllTransactions(c.Request().Context())
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.NewTransactionResponses(transactions),
		Total:        len(transactions),
	})
}

// GetTransaction returns one transaction
//
// Method: GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return sendInvalidID(c, "id")
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request().Context(), id)
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewTransactionResponse(transaction))
}

// CreateTransaction ingests one transaction. Without a categoryId the enabled
// rules pick the category.
//
// Method: POST /api/v1/transactions
//
// Error Responses:
//   - 400: Validation failure or unparseable date
//   - 404: categoryId does not exist
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	var req dto.CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return sendInvalidBody(c)
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	transaction, err := req.ToModel()
	if err != nil {
		return SendError(c, apierrors.ValidationInvalidDate, apierrors.WithDetails(err.Error()))
	}

	if err := h.categorizationService.CreateTransaction(c.Request().Context(), transaction); err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.NewTransactionResponse(transaction))
}

// CreateTransactions ingests a batch atomically: either every transaction is
// stored or none is
//
// Method: POST /api/v1/transactions/batch
func (h *TransactionHandler) CreateTransactions(c echo.Context) error {
	var req dto.CreateTransactionsRequest
	if err := c.Bind(&req); err != nil {
		return sendInvalidBody(c)
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	transactions := make([]*models.Transaction, len(req.Transactions))
	for i, item := range req.Transactions {
		transaction, err := item.ToModel()
		if err != nil {
			return SendError(c, apierrors.ValidationInvalidDate,
				apierrors.WithDetails(fmt.Sprintf("transactions[%d].date: %v", i, err)))
		}
		transactions[i] = transaction
	}

	if err := h.categorizationService.CreateTransactions(c.Request().Context(), transactions); err != nil {
		return SendLedgerError(c, err)
	}

	responses := make([]dto.TransactionResponse, len(transactions))
	for i, t := range transactions {
		responses[i] = dto.NewTransactionResponse(t)
	}

	return c.JSON(http.StatusCreated, dto.ListTransactionsResponse{
		Transactions: responses,
		Total:        len(responses),
	})
}

// UpdateTransaction applies a partial update. Absent fields are left alone
// and explicit nulls clear nullable fields.
//
// Method: PATCH /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return sendInvalidID(c, "id")
	}

	var req dto.UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return sendInvalidBody(c)
	}

	update, err := req.ToUpdate()
	if err != nil {
		return SendError(c, apierrors.ValidationInvalidDate, apierrors.WithDetails(err.Error()))
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request().Context(), id, update)
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewTransactionResponse(transaction))
}

// DeleteTransaction removes a transaction
//
// Method: DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return sendInvalidID(c, "id")
	}

	if err := h.transactionService.DeleteTransaction(c.Request().Context(), id); err != nil {
		return SendLedgerError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListUncategorized returns the review queue, newest first
//
// Method: GET /api/v1/transactions/uncategorized
func (h *TransactionHandler) ListUncategorized(c echo.Context) error {
	transactions, err := h.categorizationService.GetUncategorizedTransactions(c.Request().Context())
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.NewTransactionResponses(transactions),
		Total:        len(transactions),
	})
}

// CountUncategorized returns the review queue depth
//
// Method: GET /api/v1/transactions/uncategorized/count
func (h *TransactionHandler) CountUncategorized(c echo.Context) error {
	count, err := h.categorizationService.GetUncategorizedTransactionsCount(c.Request().Context())
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.UncategorizedCountResponse{Count: count})
}

// SaveCategory records a review decision: a categoryId assigns it, null
// clears it. Either way the transaction leaves the skipped state.
//
// Method: PUT /api/v1/transactions/:id/category
func (h *TransactionHandler) SaveCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return sendInvalidID(c, "id")
	}

	var req dto.SaveTransactionCategoryRequest
	if err := c.Bind(&req); err != nil {
		return sendInvalidBody(c)
	}

	transaction, err := h.categorizationService.SaveTransactionCategory(c.Request().Context(), id, req.CategoryID)
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewTransactionResponse(transaction))
}

// SkipTransaction removes a transaction from the review queue without a
// category
//
// Method: POST /api/v1/transactions/:id/skip
func (h *TransactionHandler) SkipTransaction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return sendInvalidID(c, "id")
	}

	transaction, err := h.categorizationService.SkipTransaction(c.Request().Context(), id)
	if err != nil {
		return SendLedgerError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewTransactionResponse(transaction))
}

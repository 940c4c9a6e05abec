package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"finance-ledger/internal/dto"
	apierrors "finance-ledger/internal/errors"
	"finance-ledger/internal/models"
	"finance-ledger/internal/services/service_mocks"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionHandlerTestSuite struct {
	suite.Suite
	echo                  *echo.Echo
	ctrl                  *gomock.Controller
	transactionService    *service_mocks.MockTransactionServiceInterface
	categorizationService *service_mocks.MockCategorizationServiceInterface
	handler               *TransactionHandler
}

func TestTransactionHandlerSuite(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}

func (s *TransactionHandlerTestSuite) SetupTest() {
	s.echo = newTestEcho()
	s.ctrl = gomock.NewController(s.T())
	s.transactionService = service_mocks.NewMockTransactionServiceInterface(s.ctrl)
	s.categorizationService = service_mocks.NewMockCategorizationServiceInterface(s.ctrl)
	s.handler = NewTransactionHandler(s.transactionService, s.categorizationService)
}

func (s *TransactionHandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *TransactionHandlerTestSuite) sampleTransaction() *models.Transaction {
	return &models.Transaction{
		ID:          uuid.New(),
		Date:        time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		Description: gofakeit.Company(),
		Amount:      decimal.NewFromFloat(-gofakeit.Float64Range(1, 500)).Round(2),
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_RulesAssignCategory() {
	groceries := uuid.New()
	body := `{"date":"2024-01-15","description":"WALMART #42","amount":"-42.10"}`

	s.categorizationService.EXPECT().
		CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, t *models.Transaction) error {
			s.Equal("WALMART #42", t.Description)
			s.Nil(t.CategoryID, "no category is supplied by the caller")
			s.True(t.Amount.Equal(decimal.RequireFromString("-42.10")))
			t.ID = uuid.New()
			t.CategoryID = &groceries
			return nil
		})

	c, rec := newJSONContext(s.echo, http.MethodPost, "/api/v1/transactions", body)
	s.Require().NoError(s.handler.CreateTransaction(c))

	s.Equal(http.StatusCreated, rec.Code)

	var resp dto.TransactionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(&groceries, resp.CategoryID)
	s.Equal(models.TransactionStatusCategorized, resp.Status)
	s.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), resp.Date.UTC())
	s.Equal("-42.10", resp.Amount)
	s.Nil(resp.ReviewedAt)
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_InvalidDate() {
	c, rec := newJSONContext(s.echo, http.MethodPost, "/api/v1/transactions",
		`{"date":"15/01/2024","description":"Coffee","amount":"-3.00"}`)

	s.Require().NoError(s.handler.CreateTransaction(c))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(apierrors.ValidationInvalidDate), decodeErrorResponse(s.T(), rec).Error.Code)
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_MissingDescription() {
	c, _ := newJSONContext(s.echo, http.MethodPost, "/api/v1/transactions",
		`{"date":"2024-01-15","description":"   ","amount":"-3.00"}`)

	err := s.handler.CreateTransaction(c)

	var validationErrs validator.ValidationErrors
	s.Require().ErrorAs(err, &validationErrs)
	s.Equal("description", validationErrs[0].Field())
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_MalformedBody() {
	c, rec := newJSONContext(s.echo, http.MethodPost, "/api/v1/transactions", `{"date":`)

	s.Require().NoError(s.handler.CreateTransaction(c))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(apierrors.ValidationGeneral), decodeErrorResponse(s.T(), rec).Error.Code)
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_UnknownCategory() {
	categoryID := uuid.New()
	body := fmt.Sprintf(`{"date":"2024-01-15","description":"Rent","amount":"-1200","categoryId":"%s"}`, categoryID)

	s.categorizationService.EXPECT().
		CreateTransaction(gomock.Any(), gomock.Any()).
		Return(apierrors.NotFound(apierrors.EntityCategory, categoryID))

	c, rec := newJSONContext(s.echo, http.MethodPost, "/api/v1/transactions", body)
	s.Require().NoError(s.handler.CreateTransaction(c))

	s.Equal(http.StatusNotFound, rec.Code)
	resp := decodeErrorResponse(s.T(), rec)
	s.Equal(string(apierrors.CategoryNotFound), resp.Error.Code)
	s.Contains(resp.Error.Message, categoryID.String())
	s.Equal("test-trace", resp.Error.TraceID)
}

func (s *TransactionHandlerTestSuite) TestCreateTransactions_Batch() {
	body := `{"transactions":[
		{"date":"2024-01-15","description":"WALMART","amount":"-10"},
		{"date":"2024-01-16","description":"Paycheck","amount":"2500"}
	]}`

	s.categorizationService.EXPECT().
		CreateTransactions(gomock.Any(), gomock.Len(2)).
		DoAndReturn(func(_ context.Context, txs []*models.Transaction) error {
			for _, t := range txs {
				t.ID = uuid.New()
			}
			return nil
		})

	c, rec := newJSONContext(s.echo, http.MethodPost, "/api/v1/transactions/batch", body)
	s.Require().NoError(s.handler.CreateTransactions(c))

	s.Equal(http.StatusCreated, rec.Code)

	var resp dto.ListTransactionsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(2, resp.Total)
	s.Equal("Paycheck", resp.Transactions[1].Description)
	s.Equal(models.TransactionStatusUncategorized, resp.Transactions[1].Status)
}

func (s *TransactionHandlerTestSuite) TestCreateTransactions_BadDateRejectsWholeBatch() {
	body := `{"transactions":[
		{"date":"2024-01-15","description":"WALMART","amount":"-10"},
		{"date":"soon","description":"Paycheck","amount":"2500"}
	]}`

	c, rec := newJSONContext(s.echo, http.MethodPost, "/api/v1/transactions/batch", body)
	s.Require().NoError(s.handler.CreateTransactions(c))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(decodeErrorResponse(s.T(), rec).Error.Details[0], "transactions[1]")
}

func (s *TransactionHandlerTestSuite) TestCreateTransactions_Empty() {
	c, _ := newJSONContext(s.echo, http.MethodPost, "/api/v1/transactions/batch", `{"transactions":[]}`)

	err := s.handler.CreateTransactions(c)

	var validationErrs validator.ValidationErrors
	s.ErrorAs(err, &validationErrs)
}

func (s *TransactionHandlerTestSuite) TestGetTransaction() {
	tx := s.sampleTransaction()

	s.transactionService.EXPECT().GetTransactionByID(gomock.Any(), tx.ID).Return(tx, nil)

	c, rec := newJSONContext(s.echo, http.MethodGet, "/", "", "id", tx.ID.String())
	s.Require().NoError(s.handler.GetTransaction(c))

	s.Equal(http.StatusOK, rec.Code)
	var resp dto.TransactionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(tx.ID, resp.ID)
	s.Equal(models.TransactionStatusUncategorized, resp.Status)
}

func (s *TransactionHandlerTestSuite) TestGetTransaction_InvalidID() {
	c, rec := newJSONContext(s.echo, http.MethodGet, "/", "", "id", "not-a-uuid")

	s.Require().NoError(s.handler.GetTransaction(c))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(apierrors.ValidationInvalidID), decodeErrorResponse(s.T(), rec).Error.Code)
}

func (s *TransactionHandlerTestSuite) TestGetTransaction_NotFound() {
	id := uuid.New()
	s.transactionService.EXPECT().GetTransactionByID(gomock.Any(), id).
		Return(nil, apierrors.NotFound(apierrors.EntityTransaction, id))

	c, rec := newJSONContext(s.echo, http.MethodGet, "/", "", "id", id.String())
	s.Require().NoError(s.handler.GetTransaction(c))

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(string(apierrors.TransactionNotFound), decodeErrorResponse(s.T(), rec).Error.Code)
}

func (s *TransactionHandlerTestSuite) TestListTransactions_StorageFailureHidesDetail() {
	s.transactionService.EXPECT().GetAllTransactions(gomock.Any()).
		Return(nil, apierrors.InternalStorage("load transactions", errors.New("sqlite: disk I/O error")))

	c, rec := newJSONContext(s.echo, http.MethodGet, "/api/v1/transactions", "")
	s.Require().NoError(s.handler.ListTransactions(c))

	s.Equal(http.StatusInternalServerError, rec.Code)
	resp := decodeErrorResponse(s.T(), rec)
	s.Equal(string(apierrors.SystemDatabaseError), resp.Error.Code)
	s.NotContains(rec.Body.String(), "disk I/O")
}

func (s *TransactionHandlerTestSuite) TestUpdateTransaction_PartialFields() {
	tx := s.sampleTransaction()

	s.transactionService.EXPECT().
		UpdateTransaction(gomock.Any(), tx.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, update models.TransactionUpdate) (*models.Transaction, error) {
			s.True(update.Details.IsNull(), "explicit null clears details")
			s.True(update.Amount.HasValue())
			s.False(update.Description.IsSet(), "absent keys stay unset")
			s.False(update.CategoryID.IsSet())

			amount, _ := update.Amount.Value()
			tx.Amount = amount
			tx.Details = nil
			return tx, nil
		})

	c, rec := newJSONContext(s.echo, http.MethodPatch, "/", `{"details":null,"amount":"-5.25"}`, "id", tx.ID.String())
	s.Require().NoError(s.handler.UpdateTransaction(c))

	s.Equal(http.StatusOK, rec.Code)
	var resp dto.TransactionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("-5.25", resp.Amount)
	s.Nil(resp.Details)
}

func (s *TransactionHandlerTestSuite) TestUpdateTransaction_CalendarDate() {
	tx := s.sampleTransaction()

	s.transactionService.EXPECT().
		UpdateTransaction(gomock.Any(), tx.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, update models.TransactionUpdate) (*models.Transaction, error) {
			date, ok := update.Date.Value()
			s.Require().True(ok)
			s.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), date)
			tx.Date = date
			return tx, nil
		})

	c, rec := newJSONContext(s.echo, http.MethodPatch, "/", `{"date":"2024-02-29"}`, "id", tx.ID.String())
	s.Require().NoError(s.handler.UpdateTransaction(c))

	s.Equal(http.StatusOK, rec.Code)
}

func (s *TransactionHandlerTestSuite) TestUpdateTransaction_InvalidDate() {
	c, rec := newJSONContext(s.echo, http.MethodPatch, "/", `{"date":"29/02/2024"}`, "id", uuid.NewString())
	s.Require().NoError(s.handler.UpdateTransaction(c))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(apierrors.ValidationInvalidDate), decodeErrorResponse(s.T(), rec).Error.Code)
}

func (s *TransactionHandlerTestSuite) TestDeleteTransaction() {
	id := uuid.New()
	s.transactionService.EXPECT().DeleteTransaction(gomock.Any(), id).Return(nil)

	c, rec := newJSONContext(s.echo, http.MethodDelete, "/", "", "id", id.String())
	s.Require().NoError(s.handler.DeleteTransaction(c))

	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *TransactionHandlerTestSuite) TestReviewQueue() {
	queued := []models.Transaction{*s.sampleTransaction(), *s.sampleTransaction()}

	s.Run("list", func() {
		s.categorizationService.EXPECT().GetUncategorizedTransactions(gomock.Any()).Return(queued, nil)

		c, rec := newJSONContext(s.echo, http.MethodGet, "/api/v1/transactions/uncategorized", "")
		s.Require().NoError(s.handler.ListUncategorized(c))

		var resp dto.ListTransactionsResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(2, resp.Total)
		s.Equal(queued[0].ID, resp.Transactions[0].ID)
	})

	s.Run("count", func() {
		s.categorizationService.EXPECT().GetUncategorizedTransactionsCount(gomock.Any()).Return(int64(2), nil)

		c, rec := newJSONContext(s.echo, http.MethodGet, "/api/v1/transactions/uncategorized/count", "")
		s.Require().NoError(s.handler.CountUncategorized(c))

		s.JSONEq(`{"count":2}`, rec.Body.String())
	})
}

func (s *TransactionHandlerTestSuite) TestSaveCategory() {
	tx := s.sampleTransaction()
	categoryID := uuid.New()
	reviewedAt := time.Now().UTC()

	s.Run("assign", func() {
		s.categorizationService.EXPECT().
			SaveTransactionCategory(gomock.Any(), tx.ID, &categoryID).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, id *uuid.UUID) (*models.Transaction, error) {
				updated := *tx
				updated.CategoryID = id
				updated.ReviewedAt = &reviewedAt
				return &updated, nil
			})

		c, rec := newJSONContext(s.echo, http.MethodPut, "/",
			fmt.Sprintf(`{"categoryId":"%s"}`, categoryID), "id", tx.ID.String())
		s.Require().NoError(s.handler.SaveCategory(c))

		var resp dto.TransactionResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(models.TransactionStatusCategorized, resp.Status)
		s.NotNil(resp.ReviewedAt)
	})

	s.Run("clear", func() {
		s.categorizationService.EXPECT().
			SaveTransactionCategory(gomock.Any(), tx.ID, gomock.Nil()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, _ *uuid.UUID) (*models.Transaction, error) {
				updated := *tx
				updated.ReviewedAt = &reviewedAt
				return &updated, nil
			})

		c, rec := newJSONContext(s.echo, http.MethodPut, "/", `{"categoryId":null}`, "id", tx.ID.String())
		s.Require().NoError(s.handler.SaveCategory(c))

		var resp dto.TransactionResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(models.TransactionStatusUncategorized, resp.Status)
		s.Nil(resp.CategoryID)
	})

	s.Run("unknown category", func() {
		s.categorizationService.EXPECT().
			SaveTransactionCategory(gomock.Any(), tx.ID, &categoryID).
			Return(nil, apierrors.NotFound(apierrors.EntityCategory, categoryID))

		c, rec := newJSONContext(s.echo, http.MethodPut, "/",
			fmt.Sprintf(`{"categoryId":"%s"}`, categoryID), "id", tx.ID.String())
		s.Require().NoError(s.handler.SaveCategory(c))

		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *TransactionHandlerTestSuite) TestSkipTransaction() {
	tx := s.sampleTransaction()
	reviewedAt := time.Now().UTC()

	s.categorizationService.EXPECT().SkipTransaction(gomock.Any(), tx.ID).
		DoAndReturn(func(_ context.Context, _ uuid.UUID) (*models.Transaction, error) {
			updated := *tx
			updated.IsSkipped = true
			updated.ReviewedAt = &reviewedAt
			return &updated, nil
		})

	c, rec := newJSONContext(s.echo, http.MethodPost, "/", "", "id", tx.ID.String())
	s.Require().NoError(s.handler.SkipTransaction(c))

	s.Equal(http.StatusOK, rec.Code)
	var resp dto.TransactionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.True(resp.IsSkipped)
	s.Equal(models.TransactionStatusSkipped, resp.Status)
}

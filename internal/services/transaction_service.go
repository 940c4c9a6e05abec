package services

import (
	"context"

	"finance-ledger/internal/models"
	"finance-ledger/internal/repositories"

	"github.com/google/uuid"
)

type TransactionService struct {
	transactionRepo repositories.TransactionRepositoryInterface
}

func NewTransactionService(transactionRepo repositories.TransactionRepositoryInterface) TransactionServiceInterface {
	return &TransactionService{
		transactionRepo: transactionRepo,
	}
}

func (s *TransactionService) GetAllTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.transactionRepo.GetAll()
}

func (s *TransactionService) GetTransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return s.transactionRepo.GetByID(id)
}

// UpdateTransaction applies a partial edit. Review state changes made here
// are plain field edits and do not touch reviewedAt unless it is supplied.
func (s *TransactionService) UpdateTransaction(ctx context.Context, id uuid.UUID, update models.TransactionUpdate) (*models.Transaction, error) {
	return s.transactionRepo.Update(id, update)
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return s.transactionRepo.Delete(id)
}

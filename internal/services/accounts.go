package services

import (
	"context"

	"ahorra/internal/models"
	"ahorra/internal/store"
)

// AccountService derives balances from transaction rows; no balance is stored.
type AccountService struct {
	transactions store.TransactionRepository
}

func NewAccountService(transactions store.TransactionRepository) *AccountService {
	return &AccountService{transactions: transactions}
}

func (s *AccountService) Balance(ctx context.Context, userID string) (int64, error) {
	return s.transactions.SumByUser(ctx, userID)
}

func (s *AccountService) Transactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.transactions.ListByUser(ctx, userID)
}

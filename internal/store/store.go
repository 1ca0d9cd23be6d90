package store

import (
	"context"
	"errors"
	"fmt"

	"ahorra/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// StorageError wraps a backend failure with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) {
		return err
	}
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

type UserRepository interface {
	GetAll(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	Add(ctx context.Context, user models.User) (models.User, error)
	Update(ctx context.Context, id string, patch models.UserPatch) (models.User, error)
	Delete(ctx context.Context, id string) error
}

type MetaRepository interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}

type TransactionRepository interface {
	Add(ctx context.Context, txn models.Transaction) (models.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
	SumByUser(ctx context.Context, userID string) (int64, error)
}

type BudgetRepository interface {
	Add(ctx context.Context, budget models.Budget) (models.Budget, error)
	GetByID(ctx context.Context, id string) (models.Budget, error)
	ListByUser(ctx context.Context, userID string) ([]models.Budget, error)
	UpdateSpent(ctx context.Context, id string, gastado int64) error
}

type MailRepository interface {
	Add(ctx context.Context, mail models.Mail) (models.Mail, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Mail, error)
	SetRead(ctx context.Context, userID, id string, read bool) error
	Delete(ctx context.Context, userID, id string) error
}

type PasswordResetRepository interface {
	Add(ctx context.Context, reset models.PasswordReset) (models.PasswordReset, error)
	GetByToken(ctx context.Context, token string) (models.PasswordReset, error)
	MarkUsed(ctx context.Context, id string) error
}

type Repositories interface {
	Users() UserRepository
	Meta() MetaRepository
	Transactions() TransactionRepository
	Budgets() BudgetRepository
	Mail() MailRepository
	PasswordResets() PasswordResetRepository
}

// Store is the capability contract shared by the SQL and key-value backends.
// Writes made through the Repositories handed to fn are committed together or not at all.
type Store interface {
	Repositories
	WithTx(ctx context.Context, fn func(Repositories) error) error
	Ping(ctx context.Context) error
	Close() error
}

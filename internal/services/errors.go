package services

import (
	"errors"
	"fmt"

	"ahorra/internal/money"
	"ahorra/internal/store"
)

var (
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrSameAccountTransfer = errors.New("cannot transfer to same account")
	ErrResetTokenUsed      = errors.New("reset token already used")
	ErrResetTokenExpired   = errors.New("reset token expired")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == store.ErrNotFound
}

type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return e.Field + " already in use"
}

func (e *DuplicateError) Is(target error) bool {
	return target == store.ErrDuplicate
}

type InsufficientFundsError struct {
	Shortfall int64
}

func (e *InsufficientFundsError) Error() string {
	return "insufficient funds: short by " + money.FormatMinor(e.Shortfall)
}

// BudgetExceededError is a warning: the caller may resubmit with confirmation.
type BudgetExceededError struct {
	BudgetID string
	Limit    int64
	Spent    int64
	Excess   int64
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("budget %s exceeded by %s", e.BudgetID, money.FormatMinor(e.Excess))
}

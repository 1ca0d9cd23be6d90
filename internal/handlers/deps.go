package handlers

import (
	"context"

	"ahorra/internal/models"
	"ahorra/internal/services"
)

type SessionService interface {
	CheckCredentials(ctx context.Context, correo, password string) (services.CredentialResult, error)
	Logout(ctx context.Context)
	GetCurrentUser(ctx context.Context) (models.User, bool, error)
	RequireCurrent(ctx context.Context, userID string) (models.User, error)
}

type UserService interface {
	Register(ctx context.Context, req services.RegisterRequest) (models.User, error)
	GetProfile(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, id string, update services.ProfileUpdate) (models.User, error)
}

type AccountService interface {
	Balance(ctx context.Context, userID string) (int64, error)
	Transactions(ctx context.Context, userID string) ([]models.Transaction, error)
}

type TransferService interface {
	SubmitTransfer(ctx context.Context, req services.TransferRequest) error
}

type BudgetService interface {
	CreateBudget(ctx context.Context, userID, nombre, limite string) (services.BudgetView, error)
	ListBudgets(ctx context.Context, userID string) ([]services.BudgetView, error)
	GetBudget(ctx context.Context, userID, id string) (services.BudgetView, error)
}

type Mailbox interface {
	GetMails(ctx context.Context, userID string, limit int) ([]models.Mail, error)
	UpdateMail(ctx context.Context, userID, id string, read bool) error
	DeleteMail(ctx context.Context, userID, id string) error
}

type PasswordResetService interface {
	RequestReset(ctx context.Context, correo string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Sessions  SessionService
	Users     UserService
	Accounts  AccountService
	Transfers TransferService
	Budgets   BudgetService
	Mailbox   Mailbox
	Resets    PasswordResetService
	Health    HealthChecker
}

package services

import (
	"context"
	"errors"
	"strings"

	"ahorra/internal/models"
	"ahorra/internal/money"
	"ahorra/internal/store"
)

type BudgetView struct {
	models.Budget
	Usage string `json:"usage"`
}

func newBudgetView(budget models.Budget) BudgetView {
	return BudgetView{Budget: budget, Usage: money.UsagePercent(budget.Gastado, budget.Limite)}
}

type BudgetService struct {
	budgets store.BudgetRepository
}

func NewBudgetService(budgets store.BudgetRepository) *BudgetService {
	return &BudgetService{budgets: budgets}
}

func (s *BudgetService) CreateBudget(ctx context.Context, userID, nombre, limite string) (BudgetView, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return BudgetView{}, &ValidationError{Field: "nombre", Message: "nombre is required"}
	}
	limit, err := money.ParseMinor(limite)
	if err != nil || limit <= 0 {
		return BudgetView{}, &ValidationError{Field: "limite", Message: "limite must be a positive amount"}
	}
	budget, err := s.budgets.Add(ctx, models.Budget{UserID: userID, Nombre: nombre, Limite: limit})
	if err != nil {
		return BudgetView{}, err
	}
	return newBudgetView(budget), nil
}

func (s *BudgetService) ListBudgets(ctx context.Context, userID string) ([]BudgetView, error) {
	budgets, err := s.budgets.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]BudgetView, 0, len(budgets))
	for _, budget := range budgets {
		views = append(views, newBudgetView(budget))
	}
	return views, nil
}

func (s *BudgetService) GetBudget(ctx context.Context, userID, id string) (BudgetView, error) {
	budget, err := s.budgets.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && budget.UserID != userID) {
		return BudgetView{}, &NotFoundError{Entity: "budget", Key: id}
	}
	if err != nil {
		return BudgetView{}, err
	}
	return newBudgetView(budget), nil
}

package store

import (
	"context"
	"time"

	"ahorra/internal/models"

	"github.com/google/uuid"
)

type BudgetStore struct {
	db DB
}

func NewBudgetStore(db DB) *BudgetStore {
	return &BudgetStore{db: db}
}

const budgetColumns = `id, user_id, nombre, limite, gastado, fecha_creacion`

func (s *BudgetStore) Add(ctx context.Context, budget models.Budget) (models.Budget, error) {
	if budget.ID == "" {
		budget.ID = uuid.NewString()
	}
	if budget.FechaCreacion.IsZero() {
		budget.FechaCreacion = time.Now().UTC()
	}
	query := `
		INSERT INTO budgets (id, user_id, nombre, limite, gastado, fecha_creacion)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		budget.ID, budget.UserID, budget.Nombre, budget.Limite, budget.Gastado, budget.FechaCreacion)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Budget{}, ErrDuplicate
		}
		return models.Budget{}, wrap("budgets.add", err)
	}
	return budget, nil
}

func (s *BudgetStore) GetByID(ctx context.Context, id string) (models.Budget, error) {
	var budget models.Budget
	err := s.db.GetContext(ctx, &budget, s.db.Rebind(`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`), id)
	if err != nil {
		return models.Budget{}, wrap("budgets.get_by_id", notFoundOr(err))
	}
	return budget, nil
}

func (s *BudgetStore) ListByUser(ctx context.Context, userID string) ([]models.Budget, error) {
	budgets := []models.Budget{}
	err := s.db.SelectContext(ctx, &budgets, s.db.Rebind(`SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? ORDER BY seq`), userID)
	if err != nil {
		return nil, wrap("budgets.list_by_user", err)
	}
	return budgets, nil
}

func (s *BudgetStore) UpdateSpent(ctx context.Context, id string, gastado int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE budgets SET gastado = ? WHERE id = ?`), gastado, id)
	if err != nil {
		return wrap("budgets.update_spent", err)
	}
	return wrap("budgets.update_spent", expectAffected(result))
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ahorra/internal/models"

	"github.com/google/uuid"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

type transactionRow struct {
	ID       string    `db:"id"`
	UserID   string    `db:"user_id"`
	Tipo     string    `db:"tipo"`
	Concepto string    `db:"concepto"`
	Monto    int64     `db:"monto"`
	Fecha    time.Time `db:"fecha"`
	Metadata string    `db:"metadata"`
}

func (r transactionRow) toModel() (models.Transaction, error) {
	txn := models.Transaction{
		ID:       r.ID,
		UserID:   r.UserID,
		Tipo:     r.Tipo,
		Concepto: r.Concepto,
		Monto:    r.Monto,
		Fecha:    r.Fecha,
	}
	if r.Metadata == "" {
		return txn, nil
	}
	if err := json.Unmarshal([]byte(r.Metadata), &txn.Metadata); err != nil {
		return models.Transaction{}, fmt.Errorf("transaction %s metadata: %w", r.ID, err)
	}
	return txn, nil
}

func (s *TransactionStore) Add(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if txn.Fecha.IsZero() {
		txn.Fecha = time.Now().UTC()
	}
	metadata, err := json.Marshal(txn.Metadata)
	if err != nil {
		return models.Transaction{}, err
	}
	query := `
		INSERT INTO transactions (id, user_id, tipo, concepto, monto, fecha, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, s.db.Rebind(query),
		txn.ID, txn.UserID, txn.Tipo, txn.Concepto, txn.Monto, txn.Fecha, string(metadata))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Transaction{}, ErrDuplicate
		}
		return models.Transaction{}, wrap("transactions.add", err)
	}
	return txn, nil
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	var rows []transactionRow
	query := `
		SELECT id, user_id, tipo, concepto, monto, fecha, metadata
		FROM transactions
		WHERE user_id = ?
		ORDER BY fecha DESC, seq DESC
	`
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), userID); err != nil {
		return nil, wrap("transactions.list_by_user", err)
	}
	txns := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		txn, err := row.toModel()
		if err != nil {
			return nil, wrap("transactions.list_by_user", err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func (s *TransactionStore) SumByUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := s.db.GetContext(ctx, &total, s.db.Rebind(`SELECT COALESCE(SUM(monto), 0) FROM transactions WHERE user_id = ?`), userID)
	if err != nil {
		return 0, wrap("transactions.sum_by_user", err)
	}
	return total, nil
}

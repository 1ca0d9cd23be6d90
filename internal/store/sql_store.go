package store

import (
	"context"

	"ahorra/internal/db"

	"github.com/jmoiron/sqlx"
)

type sqlRepositories struct {
	db DB
}

func (r sqlRepositories) Users() UserRepository { return NewUserStore(r.db) }
func (r sqlRepositories) Meta() MetaRepository { return NewMetaStore(r.db) }
func (r sqlRepositories) Transactions() TransactionRepository { return NewTransactionStore(r.db) }
func (r sqlRepositories) Budgets() BudgetRepository { return NewBudgetStore(r.db) }
func (r sqlRepositories) Mail() MailRepository { return NewMailStore(r.db) }
func (r sqlRepositories) PasswordResets() PasswordResetRepository { return NewPasswordResetStore(r.db) }

// SQLStore serves the contract from sqlite or postgres through sqlx.
type SQLStore struct {
	sqlRepositories
	conn   *sqlx.DB
	runner db.TxRunner
}

func NewSQLStore(conn *sqlx.DB, runner db.TxRunner) *SQLStore {
	return &SQLStore{
		sqlRepositories: sqlRepositories{db: conn},
		conn:            conn,
		runner:          runner,
	}
}

func (s *SQLStore) WithTx(ctx context.Context, fn func(Repositories) error) error {
	return s.runner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(sqlRepositories{db: tx})
	})
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return wrap("ping", s.conn.PingContext(ctx))
}

func (s *SQLStore) Close() error {
	return s.conn.Close()
}

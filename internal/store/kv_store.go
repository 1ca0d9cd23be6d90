package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"ahorra/internal/kv"
	"ahorra/internal/models"

	"github.com/google/uuid"
)

const (
	keyUsers          = "usuarios"
	keyTransactions   = "transactions"
	keyBudgets        = "budgets"
	keyMails          = "mails"
	keyPasswordResets = "password_resets"
	metaKeyPrefix     = "meta:"
)

type unitFunc func(ctx context.Context, fn func(kv.Client) error) error

// KVStore keeps every collection as one JSON document in a kv.Client.
// Each call is a unit of work: writes are staged and committed in one batch,
// and units are serialized within the process.
type KVStore struct {
	client kv.Client
	mu     sync.Mutex
}

func NewKVStore(client kv.Client) *KVStore {
	return &KVStore{client: client}
}

func (s *KVStore) unit(ctx context.Context, fn func(kv.Client) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := kv.NewStaged(s.client)
	if err := fn(staged); err != nil {
		staged.Discard()
		return err
	}
	if staged.Pending() == 0 {
		return nil
	}
	return wrap("kv.commit", staged.Commit(ctx))
}

func (s *KVStore) repositories() kvRepositories {
	return kvRepositories{run: s.unit}
}

func (s *KVStore) Users() UserRepository { return s.repositories().Users() }
func (s *KVStore) Meta() MetaRepository { return s.repositories().Meta() }
func (s *KVStore) Transactions() TransactionRepository { return s.repositories().Transactions() }
func (s *KVStore) Budgets() BudgetRepository { return s.repositories().Budgets() }
func (s *KVStore) Mail() MailRepository { return s.repositories().Mail() }
func (s *KVStore) PasswordResets() PasswordResetRepository { return s.repositories().PasswordResets() }

func (s *KVStore) WithTx(ctx context.Context, fn func(Repositories) error) error {
	return s.unit(ctx, func(c kv.Client) error {
		return fn(kvRepositories{run: func(_ context.Context, inner func(kv.Client) error) error {
			return inner(c)
		}})
	})
}

func (s *KVStore) Ping(ctx context.Context) error {
	return wrap("ping", s.client.Ping(ctx))
}

func (s *KVStore) Close() error {
	return s.client.Close()
}

type kvRepositories struct {
	run unitFunc
}

func (r kvRepositories) Users() UserRepository { return kvUsers{run: r.run} }
func (r kvRepositories) Meta() MetaRepository { return kvMeta{run: r.run} }
func (r kvRepositories) Transactions() TransactionRepository { return kvTransactions{run: r.run} }
func (r kvRepositories) Budgets() BudgetRepository { return kvBudgets{run: r.run} }
func (r kvRepositories) Mail() MailRepository { return kvMails{run: r.run} }
func (r kvRepositories) PasswordResets() PasswordResetRepository { return kvPasswordResets{run: r.run} }

func loadDocument[T any](ctx context.Context, c kv.Client, key string) ([]T, error) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	items := []T{}
	if !ok || raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func saveDocument[T any](ctx context.Context, c kv.Client, key string, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return kv.Set(ctx, c, key, string(raw))
}

type kvUsers struct {
	run unitFunc
}

func (r kvUsers) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.run(ctx, func(c kv.Client) error {
		var err error
		users, err = loadDocument[models.User](ctx, c, keyUsers)
		return err
	})
	return users, wrap("users.get_all", err)
}

func (r kvUsers) GetByID(ctx context.Context, id string) (models.User, error) {
	var found models.User
	err := r.run(ctx, func(c kv.Client) error {
		users, err := loadDocument[models.User](ctx, c, keyUsers)
		if err != nil {
			return err
		}
		for _, user := range users {
			if user.ID == id {
				found = user
				return nil
			}
		}
		return ErrNotFound
	})
	return found, wrap("users.get_by_id", err)
}

func (r kvUsers) Add(ctx context.Context, user models.User) (models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.FechaCreacion.IsZero() {
		user.FechaCreacion = time.Now().UTC()
	}
	err := r.run(ctx, func(c kv.Client) error {
		users, err := loadDocument[models.User](ctx, c, keyUsers)
		if err != nil {
			return err
		}
		if conflictsWith(users, user) {
			return ErrDuplicate
		}
		return saveDocument(ctx, c, keyUsers, append(users, user))
	})
	if err != nil {
		return models.User{}, wrap("users.add", err)
	}
	return user, nil
}

func (r kvUsers) Update(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	var updated models.User
	err := r.run(ctx, func(c kv.Client) error {
		users, err := loadDocument[models.User](ctx, c, keyUsers)
		if err != nil {
			return err
		}
		for i, user := range users {
			if user.ID != id {
				continue
			}
			updated = patch.Apply(user)
			others := append(append([]models.User{}, users[:i]...), users[i+1:]...)
			if conflictsWith(others, updated) {
				return ErrDuplicate
			}
			users[i] = updated
			return saveDocument(ctx, c, keyUsers, users)
		}
		return ErrNotFound
	})
	if err != nil {
		return models.User{}, wrap("users.update", err)
	}
	return updated, nil
}

func (r kvUsers) Delete(ctx context.Context, id string) error {
	err := r.run(ctx, func(c kv.Client) error {
		users, err := loadDocument[models.User](ctx, c, keyUsers)
		if err != nil {
			return err
		}
		for i, user := range users {
			if user.ID == id {
				return saveDocument(ctx, c, keyUsers, append(users[:i], users[i+1:]...))
			}
		}
		return ErrNotFound
	})
	return wrap("users.delete", err)
}

// conflictsWith mirrors the SQL constraints: unique id, case-insensitive correo, unique cuenta.
func conflictsWith(users []models.User, candidate models.User) bool {
	for _, user := range users {
		if user.ID == candidate.ID ||
			strings.EqualFold(user.Correo, candidate.Correo) ||
			(candidate.Cuenta != "" && user.Cuenta == candidate.Cuenta) {
			return true
		}
	}
	return false
}

type kvMeta struct {
	run unitFunc
}

func (r kvMeta) Set(ctx context.Context, key, value string) error {
	return wrap("meta.set", r.run(ctx, func(c kv.Client) error {
		return kv.Set(ctx, c, metaKeyPrefix+key, value)
	}))
}

func (r kvMeta) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := r.run(ctx, func(c kv.Client) error {
		var err error
		value, found, err = c.Get(ctx, metaKeyPrefix+key)
		return err
	})
	if err != nil {
		return "", false, wrap("meta.get", err)
	}
	return value, found, nil
}

func (r kvMeta) Delete(ctx context.Context, key string) error {
	return wrap("meta.delete", r.run(ctx, func(c kv.Client) error {
		return kv.Delete(ctx, c, metaKeyPrefix+key)
	}))
}

type kvTransactions struct {
	run unitFunc
}

func (r kvTransactions) Add(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if txn.Fecha.IsZero() {
		txn.Fecha = time.Now().UTC()
	}
	err := r.run(ctx, func(c kv.Client) error {
		txns, err := loadDocument[models.Transaction](ctx, c, keyTransactions)
		if err != nil {
			return err
		}
		for _, existing := range txns {
			if existing.ID == txn.ID {
				return ErrDuplicate
			}
		}
		return saveDocument(ctx, c, keyTransactions, append(txns, txn))
	})
	if err != nil {
		return models.Transaction{}, wrap("transactions.add", err)
	}
	return txn, nil
}

func (r kvTransactions) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	result := []models.Transaction{}
	err := r.run(ctx, func(c kv.Client) error {
		txns, err := loadDocument[models.Transaction](ctx, c, keyTransactions)
		if err != nil {
			return err
		}
		for i := len(txns) - 1; i >= 0; i-- {
			if txns[i].UserID == userID {
				result = append(result, txns[i])
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrap("transactions.list_by_user", err)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Fecha.After(result[j].Fecha)
	})
	return result, nil
}

func (r kvTransactions) SumByUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.run(ctx, func(c kv.Client) error {
		txns, err := loadDocument[models.Transaction](ctx, c, keyTransactions)
		if err != nil {
			return err
		}
		for _, txn := range txns {
			if txn.UserID == userID {
				total += txn.Monto
			}
		}
		return nil
	})
	if err != nil {
		return 0, wrap("transactions.sum_by_user", err)
	}
	return total, nil
}

type kvBudgets struct {
	run unitFunc
}

func (r kvBudgets) Add(ctx context.Context, budget models.Budget) (models.Budget, error) {
	if budget.ID == "" {
		budget.ID = uuid.NewString()
	}
	if budget.FechaCreacion.IsZero() {
		budget.FechaCreacion = time.Now().UTC()
	}
	err := r.run(ctx, func(c kv.Client) error {
		budgets, err := loadDocument[models.Budget](ctx, c, keyBudgets)
		if err != nil {
			return err
		}
		for _, existing := range budgets {
			if existing.ID == budget.ID {
				return ErrDuplicate
			}
		}
		return saveDocument(ctx, c, keyBudgets, append(budgets, budget))
	})
	if err != nil {
		return models.Budget{}, wrap("budgets.add", err)
	}
	return budget, nil
}

func (r kvBudgets) GetByID(ctx context.Context, id string) (models.Budget, error) {
	var found models.Budget
	err := r.run(ctx, func(c kv.Client) error {
		budgets, err := loadDocument[models.Budget](ctx, c, keyBudgets)
		if err != nil {
			return err
		}
		for _, budget := range budgets {
			if budget.ID == id {
				found = budget
				return nil
			}
		}
		return ErrNotFound
	})
	return found, wrap("budgets.get_by_id", err)
}

func (r kvBudgets) ListByUser(ctx context.Context, userID string) ([]models.Budget, error) {
	result := []models.Budget{}
	err := r.run(ctx, func(c kv.Client) error {
		budgets, err := loadDocument[models.Budget](ctx, c, keyBudgets)
		if err != nil {
			return err
		}
		for _, budget := range budgets {
			if budget.UserID == userID {
				result = append(result, budget)
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrap("budgets.list_by_user", err)
	}
	return result, nil
}

func (r kvBudgets) UpdateSpent(ctx context.Context, id string, gastado int64) error {
	err := r.run(ctx, func(c kv.Client) error {
		budgets, err := loadDocument[models.Budget](ctx, c, keyBudgets)
		if err != nil {
			return err
		}
		for i := range budgets {
			if budgets[i].ID == id {
				budgets[i].Gastado = gastado
				return saveDocument(ctx, c, keyBudgets, budgets)
			}
		}
		return ErrNotFound
	})
	return wrap("budgets.update_spent", err)
}

type kvMails struct {
	run unitFunc
}

func (r kvMails) Add(ctx context.Context, mail models.Mail) (models.Mail, error) {
	if mail.ID == "" {
		mail.ID = uuid.NewString()
	}
	if mail.Fecha.IsZero() {
		mail.Fecha = time.Now().UTC()
	}
	err := r.run(ctx, func(c kv.Client) error {
		mails, err := loadDocument[models.Mail](ctx, c, keyMails)
		if err != nil {
			return err
		}
		return saveDocument(ctx, c, keyMails, append(mails, mail))
	})
	if err != nil {
		return models.Mail{}, wrap("mails.add", err)
	}
	return mail, nil
}

func (r kvMails) ListByUser(ctx context.Context, userID string, limit int) ([]models.Mail, error) {
	result := []models.Mail{}
	err := r.run(ctx, func(c kv.Client) error {
		mails, err := loadDocument[models.Mail](ctx, c, keyMails)
		if err != nil {
			return err
		}
		for i := len(mails) - 1; i >= 0; i-- {
			if limit > 0 && len(result) == limit {
				break
			}
			if mails[i].UserID == userID {
				result = append(result, mails[i])
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrap("mails.list_by_user", err)
	}
	return result, nil
}

func (r kvMails) SetRead(ctx context.Context, userID, id string, read bool) error {
	err := r.run(ctx, func(c kv.Client) error {
		mails, err := loadDocument[models.Mail](ctx, c, keyMails)
		if err != nil {
			return err
		}
		for i := range mails {
			if mails[i].ID == id && mails[i].UserID == userID {
				mails[i].Read = read
				return saveDocument(ctx, c, keyMails, mails)
			}
		}
		return ErrNotFound
	})
	return wrap("mails.set_read", err)
}

func (r kvMails) Delete(ctx context.Context, userID, id string) error {
	err := r.run(ctx, func(c kv.Client) error {
		mails, err := loadDocument[models.Mail](ctx, c, keyMails)
		if err != nil {
			return err
		}
		for i := range mails {
			if mails[i].ID == id && mails[i].UserID == userID {
				return saveDocument(ctx, c, keyMails, append(mails[:i], mails[i+1:]...))
			}
		}
		return ErrNotFound
	})
	return wrap("mails.delete", err)
}

type kvPasswordResets struct {
	run unitFunc
}

func (r kvPasswordResets) Add(ctx context.Context, reset models.PasswordReset) (models.PasswordReset, error) {
	if reset.ID == "" {
		reset.ID = uuid.NewString()
	}
	if reset.CreatedAt.IsZero() {
		reset.CreatedAt = time.Now().UTC()
	}
	err := r.run(ctx, func(c kv.Client) error {
		resets, err := loadDocument[models.PasswordReset](ctx, c, keyPasswordResets)
		if err != nil {
			return err
		}
		for _, existing := range resets {
			if existing.ID == reset.ID || existing.Token == reset.Token {
				return ErrDuplicate
			}
		}
		return saveDocument(ctx, c, keyPasswordResets, append(resets, reset))
	})
	if err != nil {
		return models.PasswordReset{}, wrap("password_resets.add", err)
	}
	return reset, nil
}

func (r kvPasswordResets) GetByToken(ctx context.Context, token string) (models.PasswordReset, error) {
	var found models.PasswordReset
	err := r.run(ctx, func(c kv.Client) error {
		resets, err := loadDocument[models.PasswordReset](ctx, c, keyPasswordResets)
		if err != nil {
			return err
		}
		for _, reset := range resets {
			if reset.Token == token {
				found = reset
				return nil
			}
		}
		return ErrNotFound
	})
	return found, wrap("password_resets.get_by_token", err)
}

func (r kvPasswordResets) MarkUsed(ctx context.Context, id string) error {
	err := r.run(ctx, func(c kv.Client) error {
		resets, err := loadDocument[models.PasswordReset](ctx, c, keyPasswordResets)
		if err != nil {
			return err
		}
		for i := range resets {
			if resets[i].ID == id {
				resets[i].Used = true
				return saveDocument(ctx, c, keyPasswordResets, resets)
			}
		}
		return ErrNotFound
	})
	return wrap("password_resets.mark_used", err)
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ahorra/internal/kv"
	"ahorra/internal/models"
	"ahorra/internal/store"
	"ahorra/internal/websocket"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const openingBalance = 100000

type recordingHub struct {
	mu      sync.Mutex
	notices map[string][]websocket.Notice
}

func newRecordingHub() *recordingHub {
	return &recordingHub{notices: make(map[string][]websocket.Notice)}
}

func (h *recordingHub) Publish(userID string, notice websocket.Notice) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notices[userID] = append(h.notices[userID], notice)
}

func (h *recordingHub) For(userID string) []websocket.Notice {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]websocket.Notice(nil), h.notices[userID]...)
}

type fixture struct {
	store     store.Store
	hub       *recordingHub
	logs      *test.Hook
	sessions  *SessionService
	mailbox   *Mailbox
	users     *UserService
	transfers *TransferService
	budgets   *BudgetService
	accounts  *AccountService
	resets    *PasswordResetService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return buildFixture(t, store.NewKVStore(kv.NewMemory()))
}

func buildFixture(t *testing.T, st store.Store) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	hub := newRecordingHub()
	sessions := NewSessionService(st.Users(), NewSessionStore(st.Meta()), logger)
	mailbox := NewMailbox(st.Mail(), hub, 50, logger)
	return &fixture{
		store:     st,
		hub:       hub,
		logs:      hook,
		sessions:  sessions,
		mailbox:   mailbox,
		users:     NewUserService(st, mailbox, openingBalance, logger),
		transfers: NewTransferService(st, sessions, mailbox, hub, logger),
		budgets:   NewBudgetService(st.Budgets()),
		accounts:  NewAccountService(st.Transactions()),
		resets:    NewPasswordResetService(st, mailbox, time.Hour, logger),
	}
}

func (f *fixture) register(t *testing.T, nombre, correo, telefono string) models.User {
	t.Helper()
	user, err := f.users.Register(context.Background(), RegisterRequest{
		Nombre:   nombre,
		Correo:   correo,
		Telefono: telefono,
		Password: "password123",
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) login(t *testing.T, correo string) {
	t.Helper()
	result, err := f.sessions.CheckCredentials(context.Background(), correo, "password123")
	require.NoError(t, err)
	require.Equal(t, CredentialsOK, result.Status)
}

func (f *fixture) balance(t *testing.T, userID string) int64 {
	t.Helper()
	balance, err := f.accounts.Balance(context.Background(), userID)
	require.NoError(t, err)
	return balance
}

func (f *fixture) mails(t *testing.T, userID string) []models.Mail {
	t.Helper()
	mails, err := f.mailbox.GetMails(context.Background(), userID, 0)
	require.NoError(t, err)
	return mails
}

func subjects(mails []models.Mail) []string {
	out := make([]string, 0, len(mails))
	for _, mail := range mails {
		out = append(out, mail.Subject)
	}
	return out
}

// failingStore fails every transaction row written for failUserID inside WithTx.
type failingStore struct {
	store.Store
	failUserID string
}

func (s failingStore) WithTx(ctx context.Context, fn func(store.Repositories) error) error {
	return s.Store.WithTx(ctx, func(repos store.Repositories) error {
		return fn(failingRepositories{Repositories: repos, failUserID: s.failUserID})
	})
}

type failingRepositories struct {
	store.Repositories
	failUserID string
}

func (r failingRepositories) Transactions() store.TransactionRepository {
	return failingTransactions{TransactionRepository: r.Repositories.Transactions(), failUserID: r.failUserID}
}

type failingTransactions struct {
	store.TransactionRepository
	failUserID string
}

var errDiskFull = errors.New("disk full")

func (t failingTransactions) Add(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	if txn.UserID == t.failUserID {
		return models.Transaction{}, errDiskFull
	}
	return t.TransactionRepository.Add(ctx, txn)
}

type stubMeta struct {
	getFn    func(ctx context.Context, key string) (string, bool, error)
	setFn    func(ctx context.Context, key, value string) error
	deleteFn func(ctx context.Context, key string) error
}

func (s stubMeta) Get(ctx context.Context, key string) (string, bool, error) {
	if s.getFn == nil {
		return "", false, nil
	}
	return s.getFn(ctx, key)
}

func (s stubMeta) Set(ctx context.Context, key, value string) error {
	if s.setFn == nil {
		return nil
	}
	return s.setFn(ctx, key, value)
}

func (s stubMeta) Delete(ctx context.Context, key string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, key)
}

type stubMailRepository struct {
	store.MailRepository
	addFn func(ctx context.Context, mail models.Mail) (models.Mail, error)
}

func (s stubMailRepository) Add(ctx context.Context, mail models.Mail) (models.Mail, error) {
	return s.addFn(ctx, mail)
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ahorra/internal/auth"
	"ahorra/internal/config"
	"ahorra/internal/models"
	"ahorra/internal/services"
	"ahorra/internal/websocket"

	"github.com/sirupsen/logrus/hooks/test"
)

const testSecret = "secret"

type stubSessions struct {
	current       string
	checkFn       func(ctx context.Context, correo, password string) (services.CredentialResult, error)
	logoutCalls   int
	getCurrentErr error
}

func (s *stubSessions) CheckCredentials(ctx context.Context, correo, password string) (services.CredentialResult, error) {
	return s.checkFn(ctx, correo, password)
}

func (s *stubSessions) Logout(context.Context) {
	s.logoutCalls++
	s.current = ""
}

func (s *stubSessions) GetCurrentUser(context.Context) (models.User, bool, error) {
	if s.getCurrentErr != nil {
		return models.User{}, false, s.getCurrentErr
	}
	if s.current == "" {
		return models.User{}, false, nil
	}
	return models.User{ID: s.current}, true, nil
}

func (s *stubSessions) RequireCurrent(_ context.Context, userID string) (models.User, error) {
	if s.current == "" || s.current != userID {
		return models.User{}, services.ErrUnauthenticated
	}
	return models.User{ID: userID}, nil
}

type stubUsers struct {
	registerFn func(ctx context.Context, req services.RegisterRequest) (models.User, error)
	getFn      func(ctx context.Context, id string) (models.User, error)
	updateFn   func(ctx context.Context, id string, update services.ProfileUpdate) (models.User, error)
}

func (s stubUsers) Register(ctx context.Context, req services.RegisterRequest) (models.User, error) {
	return s.registerFn(ctx, req)
}

func (s stubUsers) GetProfile(ctx context.Context, id string) (models.User, error) {
	return s.getFn(ctx, id)
}

func (s stubUsers) UpdateProfile(ctx context.Context, id string, update services.ProfileUpdate) (models.User, error) {
	return s.updateFn(ctx, id, update)
}

type stubAccounts struct {
	balanceFn      func(ctx context.Context, userID string) (int64, error)
	transactionsFn func(ctx context.Context, userID string) ([]models.Transaction, error)
}

func (s stubAccounts) Balance(ctx context.Context, userID string) (int64, error) {
	return s.balanceFn(ctx, userID)
}

func (s stubAccounts) Transactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.transactionsFn(ctx, userID)
}

type stubTransfers struct {
	submitFn func(ctx context.Context, req services.TransferRequest) error
}

func (s stubTransfers) SubmitTransfer(ctx context.Context, req services.TransferRequest) error {
	return s.submitFn(ctx, req)
}

type stubBudgets struct {
	createFn func(ctx context.Context, userID, nombre, limite string) (services.BudgetView, error)
	listFn   func(ctx context.Context, userID string) ([]services.BudgetView, error)
	getFn    func(ctx context.Context, userID, id string) (services.BudgetView, error)
}

func (s stubBudgets) CreateBudget(ctx context.Context, userID, nombre, limite string) (services.BudgetView, error) {
	return s.createFn(ctx, userID, nombre, limite)
}

func (s stubBudgets) ListBudgets(ctx context.Context, userID string) ([]services.BudgetView, error) {
	return s.listFn(ctx, userID)
}

func (s stubBudgets) GetBudget(ctx context.Context, userID, id string) (services.BudgetView, error) {
	return s.getFn(ctx, userID, id)
}

type stubMailbox struct {
	getFn    func(ctx context.Context, userID string, limit int) ([]models.Mail, error)
	updateFn func(ctx context.Context, userID, id string, read bool) error
	deleteFn func(ctx context.Context, userID, id string) error
}

func (s stubMailbox) GetMails(ctx context.Context, userID string, limit int) ([]models.Mail, error) {
	return s.getFn(ctx, userID, limit)
}

func (s stubMailbox) UpdateMail(ctx context.Context, userID, id string, read bool) error {
	return s.updateFn(ctx, userID, id, read)
}

func (s stubMailbox) DeleteMail(ctx context.Context, userID, id string) error {
	return s.deleteFn(ctx, userID, id)
}

type stubResets struct {
	requestFn func(ctx context.Context, correo string) (string, error)
	resetFn   func(ctx context.Context, token, password string) error
}

func (s stubResets) RequestReset(ctx context.Context, correo string) (string, error) {
	return s.requestFn(ctx, correo)
}

func (s stubResets) ResetPassword(ctx context.Context, token, password string) error {
	return s.resetFn(ctx, token, password)
}

type stubHealth struct {
	err error
}

func (s stubHealth) Ping(context.Context) error {
	return s.err
}

func testConfig() config.Config {
	return config.Config{AppEnv: "test", JWTSecret: testSecret, TokenTTL: time.Minute, AllowedOrigins: "*"}
}

func newTestHandler(deps Deps) http.Handler {
	logger, _ := test.NewNullLogger()
	if deps.Sessions == nil {
		deps.Sessions = &stubSessions{}
	}
	if deps.Health == nil {
		deps.Health = stubHealth{}
	}
	return New(testConfig(), logger, deps, websocket.NewHub()).Routes()
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, userID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return body
}

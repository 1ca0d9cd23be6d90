package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"ahorra/internal/services"
)

func newTransferHandler(t *testing.T, submit func(ctx context.Context, req services.TransferRequest) error) http.Handler {
	t.Helper()
	return newTestHandler(Deps{
		Sessions:  &stubSessions{current: "u1"},
		Transfers: stubTransfers{submitFn: submit},
	})
}

func TestTransferSuccess(t *testing.T) {
	var got services.TransferRequest
	handler := newTransferHandler(t, func(_ context.Context, req services.TransferRequest) error {
		got = req
		return nil
	})
	rr := doRequest(t, handler, http.MethodPost, "/transfers", tokenFor(t, "u1"), map[string]any{
		"destination": "1234567812345678",
		"amount":      "12.50",
		"concept":     "Cena",
		"date":        "2024-05-01",
		"budgetId":    "b1",
		"confirm":     true,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.SenderID != "u1" || got.Amount != "12.50" || got.BudgetID != "b1" || !got.ConfirmOverBudget {
		t.Fatalf("unexpected request %#v", got)
	}
	if !got.Date.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %s", got.Date)
	}
}

func TestTransferBudgetExceededReportsExcess(t *testing.T) {
	handler := newTransferHandler(t, func(context.Context, services.TransferRequest) error {
		return &services.BudgetExceededError{BudgetID: "b1", Limit: 100000, Spent: 80000, Excess: 10000}
	})
	rr := doRequest(t, handler, http.MethodPost, "/transfers", tokenFor(t, "u1"), map[string]any{"destination": "x", "amount": "300", "budgetId": "b1"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["error"] != "budget_exceeded" || body["excess"] != "100.00" || body["budgetId"] != "b1" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestTransferErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "amount", err: services.ErrInvalidAmount, status: http.StatusBadRequest, code: "invalid_amount"},
		{name: "funds", err: &services.InsufficientFundsError{Shortfall: 1}, status: http.StatusUnprocessableEntity, code: "insufficient_funds"},
		{name: "destination", err: &services.NotFoundError{Entity: "destination", Key: "x"}, status: http.StatusNotFound, code: "destination_not_found"},
		{name: "self", err: services.ErrSameAccountTransfer, status: http.StatusBadRequest, code: "same_account"},
		{name: "session", err: services.ErrUnauthenticated, status: http.StatusUnauthorized, code: "session_required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTransferHandler(t, func(context.Context, services.TransferRequest) error { return tc.err })
			rr := doRequest(t, handler, http.MethodPost, "/transfers", tokenFor(t, "u1"), map[string]any{"destination": "x", "amount": "1"})
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
			if code := decodeBody(t, rr)["error"]; code != tc.code {
				t.Fatalf("expected %q, got %v", tc.code, code)
			}
		})
	}
}

func TestTransferRejectsBadDate(t *testing.T) {
	handler := newTransferHandler(t, func(context.Context, services.TransferRequest) error {
		t.Fatalf("service must not be called")
		return nil
	})
	rr := doRequest(t, handler, http.MethodPost, "/transfers", tokenFor(t, "u1"), map[string]any{"destination": "x", "amount": "1", "date": "yesterday"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestTransferRequiresCurrentSession(t *testing.T) {
	handler := newTransferHandler(t, func(context.Context, services.TransferRequest) error {
		t.Fatalf("service must not be called")
		return nil
	})
	rr := doRequest(t, handler, http.MethodPost, "/transfers", tokenFor(t, "u2"), map[string]any{"destination": "x", "amount": "1"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

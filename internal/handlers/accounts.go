package handlers

import (
	"net/http"

	"ahorra/internal/middleware"
	"ahorra/internal/money"
	"ahorra/internal/websocket"
)

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	balance, err := h.accounts.Balance(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"userId":  userID,
		"balance": money.FormatMinor(balance),
	})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	txns, err := h.accounts.Transactions(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	out := make([]transactionResponse, 0, len(txns))
	for _, txn := range txns {
		out = append(out, newTransactionResponse(txn))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) WSNotices(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	websocket.ServeWS(w, r, h.hub, userID)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		h.logger.WithError(err).Warn("health check failed")
		respondError(w, http.StatusServiceUnavailable, "unavailable", "storage unreachable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"ahorra/internal/models"
	"ahorra/internal/money"
	"ahorra/internal/services"

	"github.com/sirupsen/logrus"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]any{"error": code, "message": message})
}

func respondErrorWith(w http.ResponseWriter, status int, code, message string, extra map[string]any) {
	body := map[string]any{"error": code, "message": message}
	for key, value := range extra {
		body[key] = value
	}
	respondJSON(w, status, body)
}

// respondServiceError maps the service error taxonomy onto status codes and stable error codes.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation   *services.ValidationError
		notFound     *services.NotFoundError
		duplicate    *services.DuplicateError
		insufficient *services.InsufficientFundsError
		exceeded     *services.BudgetExceededError
	)
	switch {
	case errors.As(err, &validation):
		respondErrorWith(w, http.StatusBadRequest, "validation_error", validation.Message, map[string]any{"field": validation.Field})
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, strings.ReplaceAll(notFound.Entity, " ", "_")+"_not_found", notFound.Error())
	case errors.As(err, &duplicate):
		respondErrorWith(w, http.StatusConflict, "duplicate", duplicate.Error(), map[string]any{"field": duplicate.Field})
	case errors.As(err, &insufficient):
		respondErrorWith(w, http.StatusUnprocessableEntity, "insufficient_funds", insufficient.Error(), map[string]any{
			"shortfall": money.FormatMinor(insufficient.Shortfall),
		})
	case errors.As(err, &exceeded):
		respondErrorWith(w, http.StatusConflict, "budget_exceeded", "transfer exceeds the budget; resubmit with confirm to proceed", map[string]any{
			"budgetId": exceeded.BudgetID,
			"limite":   money.FormatMinor(exceeded.Limit),
			"gastado":  money.FormatMinor(exceeded.Spent),
			"excess":   money.FormatMinor(exceeded.Excess),
		})
	case errors.Is(err, services.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "session_required", "login required")
	case errors.Is(err, services.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, "invalid_amount", "amount must be a positive number with at most 2 decimals")
	case errors.Is(err, services.ErrSameAccountTransfer):
		respondError(w, http.StatusBadRequest, "same_account", err.Error())
	case errors.Is(err, services.ErrResetTokenUsed):
		respondError(w, http.StatusGone, "reset_token_used", err.Error())
	case errors.Is(err, services.ErrResetTokenExpired):
		respondError(w, http.StatusGone, "reset_token_expired", err.Error())
	default:
		h.logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("request failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

type userResponse struct {
	ID            string    `json:"id"`
	Nombre        string    `json:"nombre"`
	Apellidos     string    `json:"apellidos"`
	Telefono      string    `json:"telefono"`
	Correo        string    `json:"correo"`
	Cuenta        string    `json:"cuenta"`
	FechaCreacion time.Time `json:"fechaCreacion"`
}

func newUserResponse(user models.User) userResponse {
	return userResponse{
		ID:            user.ID,
		Nombre:        user.Nombre,
		Apellidos:     user.Apellidos,
		Telefono:      user.Telefono,
		Correo:        user.Correo,
		Cuenta:        user.Cuenta,
		FechaCreacion: user.FechaCreacion,
	}
}

type transactionResponse struct {
	ID       string                     `json:"id"`
	Tipo     string                     `json:"tipo"`
	Concepto string                     `json:"concepto"`
	Monto    string                     `json:"monto"`
	Fecha    time.Time                  `json:"fecha"`
	Metadata models.TransactionMetadata `json:"metadata"`
}

func newTransactionResponse(txn models.Transaction) transactionResponse {
	return transactionResponse{
		ID:       txn.ID,
		Tipo:     txn.Tipo,
		Concepto: txn.Concepto,
		Monto:    money.FormatMinor(txn.Monto),
		Fecha:    txn.Fecha,
		Metadata: txn.Metadata,
	}
}

type budgetResponse struct {
	ID            string    `json:"id"`
	Nombre        string    `json:"nombre"`
	Limite        string    `json:"limite"`
	Gastado       string    `json:"gastado"`
	Usage         string    `json:"usage"`
	FechaCreacion time.Time `json:"fechaCreacion"`
}

func newBudgetResponse(view services.BudgetView) budgetResponse {
	return budgetResponse{
		ID:            view.ID,
		Nombre:        view.Nombre,
		Limite:        money.FormatMinor(view.Limite),
		Gastado:       money.FormatMinor(view.Gastado),
		Usage:         view.Usage,
		FechaCreacion: view.FechaCreacion,
	}
}

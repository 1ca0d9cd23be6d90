package handlers

import (
	"net/http"

	"ahorra/internal/middleware"
	"ahorra/internal/services"
)

type transferRequest struct {
	Destination string `json:"destination"`
	Amount      string `json:"amount"`
	Concept     string `json:"concept"`
	Date        string `json:"date"`
	BudgetID    string `json:"budgetId"`
	Confirm     bool   `json:"confirm"`
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondErrorWith(w, http.StatusBadRequest, "validation_error", "date must be RFC 3339 or YYYY-MM-DD", map[string]any{"field": "date"})
		return
	}
	err = h.transfers.SubmitTransfer(r.Context(), services.TransferRequest{
		SenderID:          userID,
		Destination:       req.Destination,
		Amount:            req.Amount,
		Concept:           req.Concept,
		Date:              date,
		BudgetID:          req.BudgetID,
		ConfirmOverBudget: req.Confirm,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "completed"})
}

package handlers

import (
	"net/http"

	"ahorra/internal/middleware"

	"github.com/go-chi/chi/v5"
)

type createBudgetRequest struct {
	Nombre string `json:"nombre"`
	Limite string `json:"limite"`
}

func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	views, err := h.budgets.ListBudgets(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	out := make([]budgetResponse, 0, len(views))
	for _, view := range views {
		out = append(out, newBudgetResponse(view))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	var req createBudgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := h.budgets.CreateBudget(r.Context(), userID, req.Nombre, req.Limite)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newBudgetResponse(view))
}

func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	view, err := h.budgets.GetBudget(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newBudgetResponse(view))
}

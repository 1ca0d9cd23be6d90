package handlers

import (
	"net/http"

	"ahorra/internal/middleware"
	"ahorra/internal/services"
)

type updateProfileRequest struct {
	Nombre    *string `json:"nombre"`
	Apellidos *string `json:"apellidos"`
	Telefono  *string `json:"telefono"`
	Correo    *string `json:"correo"`
	Password  *string `json:"password"`
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), userID, services.ProfileUpdate{
		Nombre:    req.Nombre,
		Apellidos: req.Apellidos,
		Telefono:  req.Telefono,
		Correo:    req.Correo,
		Password:  req.Password,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newUserResponse(user))
}

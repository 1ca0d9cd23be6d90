package handlers

import (
	"net/http"

	"ahorra/internal/auth"
	"ahorra/internal/config"
	"ahorra/internal/middleware"
	"ahorra/internal/services"
)

type registerRequest struct {
	Nombre    string `json:"nombre"`
	Apellidos string `json:"apellidos"`
	Telefono  string `json:"telefono"`
	Correo    string `json:"correo"`
	Password  string `json:"password"`
	Cuenta    string `json:"cuenta"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.users.Register(r.Context(), services.RegisterRequest{
		Nombre:    req.Nombre,
		Apellidos: req.Apellidos,
		Telefono:  req.Telefono,
		Correo:    req.Correo,
		Password:  req.Password,
		Cuenta:    req.Cuenta,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newUserResponse(user))
}

type loginRequest struct {
	Correo   string `json:"correo"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.sessions.CheckCredentials(r.Context(), req.Correo, req.Password)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	switch result.Status {
	case services.CredentialsNotFound:
		respondError(w, http.StatusNotFound, "user_not_found", "no user with that correo")
		return
	case services.CredentialsWrongPassword:
		respondError(w, http.StatusUnauthorized, "wrong_password", "wrong password")
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, result.User.ID, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to generate token")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  newUserResponse(result.User),
	})
}

// Logout clears the session only when it belongs to the caller; either way the answer is success.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	current, ok, err := h.sessions.GetCurrentUser(r.Context())
	if err != nil {
		h.logger.WithError(err).Warn("resolve session before logout failed")
	}
	if err != nil || !ok || current.ID == userID {
		h.sessions.Logout(r.Context())
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newUserResponse(user))
}

type passwordResetRequest struct {
	Correo string `json:"correo"`
}

func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token, err := h.resets.RequestReset(r.Context(), req.Correo)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	body := map[string]string{"status": "sent"}
	if h.cfg.AppEnv != config.EnvProduction {
		body["token"] = token
	}
	respondJSON(w, http.StatusAccepted, body)
}

type passwordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.resets.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password_updated"})
}

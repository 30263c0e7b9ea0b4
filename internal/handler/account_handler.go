package handler

import (
	"net/http"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Username string `json:"username" validate:"max=50"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=50"`
	Bio         string `json:"bio" validate:"max=1000"`
}

// Register — регистрация по email и паролю.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.accounts.Register(r.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		h.respondWithUseCaseError(w, r, "Register", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, res, h.logger)
}

// Login — вход, возвращает токен и пользователя.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondWithUseCaseError(w, r, "Login", err)
		return
	}
	respondWithJSON(w, http.StatusOK, res, h.logger)
}

// Logout ничего не хранит на сервере: клиент просто забывает токен.
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Me — профиль текущего пользователя.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.accounts.Profile(r.Context(), SessionFromContext(r.Context()))
	if err != nil {
		h.respondWithUseCaseError(w, r, "Profile", err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile, h.logger)
}

// UpdateMe меняет отображаемое имя и описание.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.accounts.UpdateProfile(r.Context(), SessionFromContext(r.Context()), req.DisplayName, req.Bio)
	if err != nil {
		h.respondWithUseCaseError(w, r, "UpdateProfile", err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile, h.logger)
}

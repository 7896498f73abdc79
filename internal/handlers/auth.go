package handlers

import (
	"net/http"

	"pulse-backend/internal/services"
)

// AuthHandler handles sign-up and sign-in
type AuthHandler struct {
	userService *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeAndValidate(r, &in); err != nil {
		writeError(w, r, err, "Invalid register request")
		return
	}

	res, err := h.userService.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "Failed to register user")
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decodeAndValidate(r, &in); err != nil {
		writeError(w, r, err, "Invalid login request")
		return
	}

	res, err := h.userService.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "Failed to log in")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

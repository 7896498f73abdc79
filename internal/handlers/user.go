package handlers

import (
	"net/http"

	"pulse-backend/internal/middleware"
	"pulse-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

type pushTokenRequest struct {
	PushToken string `json:"push_token" validate:"max=512"`
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetMe(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "Failed to get user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateMe handles PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var upd services.ProfileUpdate
	if err := decodeAndValidate(r, &upd); err != nil {
		writeError(w, r, err, "Invalid profile update")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), upd)
	if err != nil {
		writeError(w, r, err, "Failed to update profile")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdatePushToken handles PUT /api/v1/users/me/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	var req pushTokenRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "Invalid push token request")
		return
	}

	if err := h.userService.UpdatePushToken(r.Context(), middleware.GetUserID(r.Context()), req.PushToken); err != nil {
		writeError(w, r, err, "Failed to update push token")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /api/v1/users/{id}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.userService.GetPublicProfile(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to get profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

package handlers

import (
	"net/http"

	"pulse-backend/internal/middleware"
	"pulse-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// ModerationHandler serves the moderator queue endpoints
type ModerationHandler struct {
	photoService  *services.PhotoService
	safetyService *services.SafetyService
}

// NewModerationHandler creates a new moderation handler
func NewModerationHandler(photoService *services.PhotoService, safetyService *services.SafetyService) *ModerationHandler {
	return &ModerationHandler{
		photoService:  photoService,
		safetyService: safetyService,
	}
}

type decisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Reason   string `json:"reason" validate:"max=500"`
}

// ListPendingPhotos handles GET /api/v1/moderation/photos
func (h *ModerationHandler) ListPendingPhotos(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	page, err := h.photoService.ListPending(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err, "Failed to list pending photos")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// ModeratePhoto handles POST /api/v1/moderation/photos/{id}
func (h *ModerationHandler) ModeratePhoto(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "Invalid moderation request")
		return
	}

	photo, err := h.photoService.Moderate(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req.Decision, req.Reason)
	if err != nil {
		writeError(w, r, err, "Failed to moderate photo")
		return
	}
	respondJSON(w, http.StatusOK, photo)
}

// ListVerifications handles GET /api/v1/moderation/verifications
func (h *ModerationHandler) ListVerifications(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	list, err := h.safetyService.ListPendingVerifications(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err, "Failed to list verifications")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"verifications": list})
}

// ReviewVerification handles POST /api/v1/moderation/verifications/{id}
func (h *ModerationHandler) ReviewVerification(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "Invalid review request")
		return
	}

	v, err := h.safetyService.ReviewVerification(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req.Decision)
	if err != nil {
		writeError(w, r, err, "Failed to review verification")
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// Suspend handles POST /api/v1/moderation/users/{id}/suspend
func (h *ModerationHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.setSuspended(w, r, true)
}

// Unsuspend handles POST /api/v1/moderation/users/{id}/unsuspend
func (h *ModerationHandler) Unsuspend(w http.ResponseWriter, r *http.Request) {
	h.setSuspended(w, r, false)
}

func (h *ModerationHandler) setSuspended(w http.ResponseWriter, r *http.Request, suspended bool) {
	err := h.safetyService.SetSuspended(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), suspended)
	if err != nil {
		writeError(w, r, err, "Failed to change user status")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"pulse-backend/internal/middleware"
	"pulse-backend/internal/models"
	"pulse-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// ContactHandler handles contact requests and blocks
type ContactHandler struct {
	contactService *services.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

type blockRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// RequestContact handles POST /api/v1/contacts
func (h *ContactHandler) RequestContact(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "Invalid contact request")
		return
	}

	contact, err := h.contactService.Request(r.Context(), middleware.GetUserID(r.Context()), req.Code)
	if err != nil {
		writeError(w, r, err, "Failed to request contact")
		return
	}

	status := http.StatusCreated
	if contact.Status == models.ContactAccepted {
		status = http.StatusOK
	}
	respondJSON(w, status, contact)
}

// ListContacts handles GET /api/v1/contacts
func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	status := models.ContactStatus(r.URL.Query().Get("status"))

	contacts, err := h.contactService.List(r.Context(), middleware.GetUserID(r.Context()), status)
	if err != nil {
		writeError(w, r, err, "Failed to list contacts")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

// AcceptContact handles POST /api/v1/contacts/{id}/accept
func (h *ContactHandler) AcceptContact(w http.ResponseWriter, r *http.Request) {
	contact, err := h.contactService.Accept(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to accept contact")
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

// DeleteContact handles DELETE /api/v1/contacts/{id}
func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.contactService.Remove(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, "Failed to remove contact")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BlockUser handles POST /api/v1/contacts/block
func (h *ContactHandler) BlockUser(w http.ResponseWriter, r *http.Request) {
	var req blockRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "Invalid block request")
		return
	}

	contact, err := h.contactService.Block(r.Context(), middleware.GetUserID(r.Context()), req.UserID)
	if err != nil {
		writeError(w, r, err, "Failed to block user")
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

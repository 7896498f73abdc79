package handlers

import (
	"net/http"

	"pulse-backend/internal/middleware"
	"pulse-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photoService *services.PhotoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

// GetPhotos handles GET /api/v1/photos
func (h *PhotoHandler) GetPhotos(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	page, err := h.photoService.List(r.Context(), middleware.GetUserID(r.Context()), limit, offset)
	if err != nil {
		writeError(w, r, err, "Failed to get photos")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// UploadPhoto handles POST /api/v1/photos/upload
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	var req services.UploadRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "Invalid upload request")
		return
	}

	res, err := h.photoService.RequestUpload(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeError(w, r, err, "Failed to generate upload URL")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// ConfirmPhoto handles POST /api/v1/photos/{id}/confirm
func (h *PhotoHandler) ConfirmPhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := h.photoService.Confirm(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to confirm photo")
		return
	}
	respondJSON(w, http.StatusOK, photo)
}

// DeletePhoto handles DELETE /api/v1/photos/{id}
func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	if err := h.photoService.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, "Failed to delete photo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

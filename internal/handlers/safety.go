package handlers

import (
	"net/http"

	"pulse-backend/internal/middleware"
	"pulse-backend/internal/models"
	"pulse-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// SafetyHandler handles user reports and risk lookups
type SafetyHandler struct {
	safetyService *services.SafetyService
}

// NewSafetyHandler creates a new safety handler
func NewSafetyHandler(safetyService *services.SafetyService) *SafetyHandler {
	return &SafetyHandler{safetyService: safetyService}
}

type reportRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Reason  string `json:"reason" validate:"required,oneof=spam harassment fake_profile underage other"`
	Details string `json:"details" validate:"max=1000"`
}

// Report handles POST /api/v1/safety/reports
func (h *SafetyHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "Invalid report")
		return
	}

	report, err := h.safetyService.Report(r.Context(), middleware.GetUserID(r.Context()), services.ReportInput{
		TargetID: req.UserID,
		Reason:   models.ReportReason(req.Reason),
		Details:  req.Details,
	})
	if err != nil {
		writeError(w, r, err, "Failed to file report")
		return
	}
	respondJSON(w, http.StatusCreated, report)
}

// Risk handles GET /api/v1/safety/users/{id}/risk
func (h *SafetyHandler) Risk(w http.ResponseWriter, r *http.Request) {
	assessment, err := h.safetyService.Risk(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to assess risk")
		return
	}
	respondJSON(w, http.StatusOK, assessment)
}

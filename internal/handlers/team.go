package handlers

import (
	"net/http"

	"pulse-backend/internal/middleware"
	"pulse-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// TeamHandler handles team requests
type TeamHandler struct {
	teamService *services.TeamService
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

type joinTeamRequest struct {
	JoinCode string `json:"join_code" validate:"required,len=6"`
}

// CreateTeam handles POST /api/v1/teams
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var in services.CreateTeamInput
	if err := decodeAndValidate(r, &in); err != nil {
		writeError(w, r, err, "Invalid team request")
		return
	}

	team, err := h.teamService.Create(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		writeError(w, r, err, "Failed to create team")
		return
	}
	respondJSON(w, http.StatusCreated, team)
}

// ListTeams handles GET /api/v1/teams
func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "Failed to list teams")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"teams": teams})
}

// GetTeam handles GET /api/v1/teams/{id}
func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamService.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to get team")
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// JoinTeam handles POST /api/v1/teams/join
func (h *TeamHandler) JoinTeam(w http.ResponseWriter, r *http.Request) {
	var req joinTeamRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "Invalid join request")
		return
	}

	team, err := h.teamService.Join(r.Context(), middleware.GetUserID(r.Context()), req.JoinCode)
	if err != nil {
		writeError(w, r, err, "Failed to join team")
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// LeaveTeam handles POST /api/v1/teams/{id}/leave
func (h *TeamHandler) LeaveTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamService.Leave(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to leave team")
		return
	}
	if team == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// LockTeam handles POST /api/v1/teams/{id}/lock
func (h *TeamHandler) LockTeam(w http.ResponseWriter, r *http.Request) {
	h.setLocked(w, r, true)
}

// UnlockTeam handles POST /api/v1/teams/{id}/unlock
func (h *TeamHandler) UnlockTeam(w http.ResponseWriter, r *http.Request) {
	h.setLocked(w, r, false)
}

func (h *TeamHandler) setLocked(w http.ResponseWriter, r *http.Request, locked bool) {
	team, err := h.teamService.SetLocked(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), locked)
	if err != nil {
		writeError(w, r, err, "Failed to change team lock")
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// KickMember handles DELETE /api/v1/teams/{id}/members/{user_id}
func (h *TeamHandler) KickMember(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamService.Kick(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, r, err, "Failed to remove member")
		return
	}
	respondJSON(w, http.StatusOK, team)
}

package handlers

import (
	"context"
	"net/http"

	"pulse-backend/internal/middleware"
	"pulse-backend/internal/models"
	"pulse-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// RoomHandler handles game room requests
type RoomHandler struct {
	roomService *services.RoomService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomService *services.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

type codeRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// CreateRoom handles POST /api/v1/rooms
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var in services.CreateRoomInput
	if err := decodeAndValidate(r, &in); err != nil {
		writeError(w, r, err, "Invalid room request")
		return
	}

	room, err := h.roomService.Create(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		writeError(w, r, err, "Failed to create room")
		return
	}
	respondJSON(w, http.StatusCreated, room)
}

// ListRooms handles GET /api/v1/rooms
func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomService.ListOpen(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to list rooms")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

// GetRoom handles GET /api/v1/rooms/{id}
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Failed to get room")
		return
	}
	respondJSON(w, http.StatusOK, room)
}

// JoinRoom handles POST /api/v1/rooms/join
func (h *RoomHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, "Invalid join request")
		return
	}

	room, err := h.roomService.Join(r.Context(), middleware.GetUserID(r.Context()), req.Code)
	if err != nil {
		writeError(w, r, err, "Failed to join room")
		return
	}
	respondJSON(w, http.StatusOK, room)
}

// LeaveRoom handles POST /api/v1/rooms/{id}/leave
func (h *RoomHandler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	h.roomAction(w, r, h.roomService.Leave)
}

// StartRoom handles POST /api/v1/rooms/{id}/start
func (h *RoomHandler) StartRoom(w http.ResponseWriter, r *http.Request) {
	h.roomAction(w, r, h.roomService.Start)
}

// NextRound handles POST /api/v1/rooms/{id}/next
func (h *RoomHandler) NextRound(w http.ResponseWriter, r *http.Request) {
	h.roomAction(w, r, h.roomService.Next)
}

// FinishRoom handles POST /api/v1/rooms/{id}/finish
func (h *RoomHandler) FinishRoom(w http.ResponseWriter, r *http.Request) {
	h.roomAction(w, r, h.roomService.Finish)
}

func (h *RoomHandler) roomAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, userID, roomID string) (*models.Room, error),
) {
	room, err := action(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Room action failed")
		return
	}
	respondJSON(w, http.StatusOK, room)
}

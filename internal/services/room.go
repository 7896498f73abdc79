package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"pulse-backend/internal/models"
	"pulse-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxPlayers = 8
	openRoomsLimit    = 50
)

// CreateRoomInput is the payload for a new room
type CreateRoomInput struct {
	Game       models.Game `json:"game" validate:"required,oneof=truth_or_dare would_you_rather quiz"`
	MaxPlayers int         `json:"max_players" validate:"omitempty,min=2,max=12"`
}

// RoomService handles game rooms
type RoomService struct {
	rooms    RoomStore
	notifier Notifier
	now      func() time.Time
}

// NewRoomService creates a new room service
func NewRoomService(rooms RoomStore, notifier Notifier) *RoomService {
	return &RoomService{
		rooms:    rooms,
		notifier: notifier,
		now:      time.Now,
	}
}

// Create opens a room with the caller as host
func (s *RoomService) Create(ctx context.Context, userID string, in CreateRoomInput) (*models.Room, error) {
	if !validGame(in.Game) {
		return nil, ErrInvalidInput
	}
	maxPlayers := in.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = defaultMaxPlayers
	}
	if maxPlayers < 2 || maxPlayers > 12 {
		return nil, ErrInvalidInput
	}

	code, err := uniqueCode(ctx, s.rooms.CodeExists)
	if err != nil {
		return nil, err
	}

	now := s.now()
	room := &models.Room{
		ID:         uuid.New().String(),
		Code:       code,
		HostID:     userID,
		Game:       in.Game,
		MaxPlayers: maxPlayers,
		Status:     models.RoomWaiting,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID).
		Str("room_id", room.ID).
		Str("game", string(room.Game)).
		Msg("Room created")

	return room, nil
}

// ListOpen returns waiting rooms with free seats
func (s *RoomService) ListOpen(ctx context.Context) ([]*models.Room, error) {
	rooms, err := s.rooms.ListOpen(ctx, openRoomsLimit)
	if err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []*models.Room{}
	}
	return rooms, nil
}

// Get returns a room with its members
func (s *RoomService) Get(ctx context.Context, roomID string) (*models.Room, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, roomErr(err)
	}
	return room, nil
}

// Join seats the caller in the room identified by code
func (s *RoomService) Join(ctx context.Context, userID, code string) (*models.Room, error) {
	roomID, err := s.rooms.GetIDByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, roomErr(err)
	}

	room, err := s.rooms.AddMember(ctx, roomID, userID, func(r *models.Room) error {
		switch {
		case r.IsMember(userID):
			return ErrAlreadyMember
		case r.Status != models.RoomWaiting:
			return ErrRoomNotWaiting
		case len(r.Members) >= r.MaxPlayers:
			return ErrRoomFull
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyMember
		}
		return nil, roomErr(err)
	}

	log.Info().Str("user_id", userID).Str("room_id", room.ID).Msg("Joined room")
	s.broadcast(room)
	return room, nil
}

// Leave removes the caller from a room
func (s *RoomService) Leave(ctx context.Context, userID, roomID string) (*models.Room, error) {
	room, err := s.rooms.RemoveMember(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// distinguish a missing room from a missing seat
			if _, getErr := s.rooms.GetByID(ctx, roomID); getErr == nil {
				return nil, ErrNotMember
			}
		}
		return nil, roomErr(err)
	}

	log.Info().Str("user_id", userID).Str("room_id", roomID).Msg("Left room")
	s.broadcast(room, userID)
	return room, nil
}

// Start begins the first round
func (s *RoomService) Start(ctx context.Context, userID, roomID string) (*models.Room, error) {
	return s.hostAction(ctx, userID, roomID, "started", func(r *models.Room) error {
		if r.Status != models.RoomWaiting {
			return ErrRoomNotWaiting
		}
		if len(r.Members) < 2 {
			return ErrNotEnoughPlayers
		}
		r.Status = models.RoomPlaying
		r.Round = 1
		r.Prompt = nextPrompt(r.Game, "")
		return nil
	})
}

// Next advances to the next round
func (s *RoomService) Next(ctx context.Context, userID, roomID string) (*models.Room, error) {
	return s.hostAction(ctx, userID, roomID, "advanced", func(r *models.Room) error {
		if r.Status != models.RoomPlaying {
			return ErrRoomNotPlaying
		}
		r.Round++
		r.Prompt = nextPrompt(r.Game, r.Prompt)
		return nil
	})
}

// Finish ends the game
func (s *RoomService) Finish(ctx context.Context, userID, roomID string) (*models.Room, error) {
	return s.hostAction(ctx, userID, roomID, "finished", func(r *models.Room) error {
		if r.Status == models.RoomFinished {
			return ErrRoomNotPlaying
		}
		r.Status = models.RoomFinished
		r.Prompt = ""
		return nil
	})
}

func (s *RoomService) hostAction(ctx context.Context, userID, roomID, action string, fn func(*models.Room) error) (*models.Room, error) {
	room, err := s.rooms.Update(ctx, roomID, func(r *models.Room) error {
		if r.HostID != userID {
			return ErrNotHost
		}
		return fn(r)
	})
	if err != nil {
		return nil, roomErr(err)
	}

	log.Info().
		Str("user_id", userID).
		Str("room_id", roomID).
		Int("round", room.Round).
		Msg("Room " + action)

	s.broadcast(room)
	return room, nil
}

// broadcast sends the room state to its members and any extra users
func (s *RoomService) broadcast(room *models.Room, extra ...string) {
	s.notifier.Broadcast(append(room.MemberIDs(), extra...), WSMessage{
		Type:   MsgRoomUpdated,
		RoomID: room.ID,
		Data:   room,
	})
}

func roomErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRoomNotFound
	}
	return err
}

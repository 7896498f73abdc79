package repository

import (
	"context"
	"fmt"
	"time"

	"pulse-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const roomColumns = `id, code, host_id, game, max_players, status, round, prompt, created_at, updated_at`

// RoomRepository handles database operations for game rooms
type RoomRepository struct {
	db DB
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func scanRoom(row pgx.Row) (*models.Room, error) {
	var room models.Room
	err := row.Scan(
		&room.ID, &room.Code, &room.HostID, &room.Game, &room.MaxPlayers,
		&room.Status, &room.Round, &room.Prompt, &room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func loadRoomMembers(ctx context.Context, q querier, room *models.Room) error {
	query := `
		SELECT m.user_id, u.display_name, m.joined_at
		FROM room_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_id = $1
		ORDER BY m.joined_at ASC
	`
	rows, err := q.Query(ctx, query, room.ID)
	if err != nil {
		return fmt.Errorf("failed to get room members: %w", err)
	}
	defer rows.Close()

	room.Members = room.Members[:0]
	for rows.Next() {
		var m models.RoomMember
		if err := rows.Scan(&m.UserID, &m.DisplayName, &m.JoinedAt); err != nil {
			return fmt.Errorf("failed to scan room member: %w", err)
		}
		room.Members = append(room.Members, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating room members: %w", err)
	}
	room.Players = len(room.Members)
	return nil
}

func lockRoom(ctx context.Context, tx pgx.Tx, roomID string) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1 FOR UPDATE`
	room, err := scanRoom(tx.QueryRow(ctx, query, roomID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock room: %w", translate(err))
	}
	if err := loadRoomMembers(ctx, tx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// Create creates a room and seats its host
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO rooms (` + roomColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err := tx.Exec(ctx, query,
			room.ID, room.Code, room.HostID, room.Game, room.MaxPlayers,
			room.Status, room.Round, room.Prompt, room.CreatedAt, room.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create room: %w", translate(err))
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO room_members (room_id, user_id, joined_at) VALUES ($1, $2, $3)`,
			room.ID, room.HostID, room.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to seat host: %w", err)
		}
		return loadRoomMembers(ctx, tx, room)
	})
}

// GetByID retrieves a room with its members
func (r *RoomRepository) GetByID(ctx context.Context, id string) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	room, err := scanRoom(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", translate(err))
	}
	if err := loadRoomMembers(ctx, r.db, room); err != nil {
		return nil, err
	}
	return room, nil
}

// GetIDByCode resolves a join code to a room id
func (r *RoomRepository) GetIDByCode(ctx context.Context, code string) (string, error) {
	var id string
	err := r.db.QueryRow(ctx, `SELECT id FROM rooms WHERE code = $1`, code).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to get room by code: %w", translate(err))
	}
	return id, nil
}

// CodeExists checks if a room code is taken
func (r *RoomRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM rooms WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check room code: %w", err)
	}
	return exists, nil
}

// ListOpen returns waiting rooms that still have free seats, newest first
func (r *RoomRepository) ListOpen(ctx context.Context, limit int) ([]*models.Room, error) {
	query := `
		SELECT r.id, r.code, r.host_id, r.game, r.max_players, r.status, r.round, r.prompt,
		       r.created_at, r.updated_at, COUNT(m.user_id)
		FROM rooms r
		LEFT JOIN room_members m ON m.room_id = r.id
		WHERE r.status = 'waiting'
		GROUP BY r.id
		HAVING COUNT(m.user_id) < r.max_players
		ORDER BY r.created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		var room models.Room
		err := rows.Scan(
			&room.ID, &room.Code, &room.HostID, &room.Game, &room.MaxPlayers,
			&room.Status, &room.Round, &room.Prompt, &room.CreatedAt, &room.UpdatedAt,
			&room.Players,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, &room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rooms: %w", err)
	}
	return rooms, nil
}

// AddMember seats a user after check accepts the locked room state
func (r *RoomRepository) AddMember(ctx context.Context, roomID, userID string, check func(*models.Room) error) (*models.Room, error) {
	var room *models.Room
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		room, err = lockRoom(ctx, tx, roomID)
		if err != nil {
			return err
		}
		if err := check(room); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO room_members (room_id, user_id, joined_at) VALUES ($1, $2, $3)`,
			roomID, userID, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to join room: %w", translate(err))
		}
		return loadRoomMembers(ctx, tx, room)
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// RemoveMember unseats a user. The host seat passes to the earliest-joined
// remaining member and an empty room is finished.
func (r *RoomRepository) RemoveMember(ctx context.Context, roomID, userID string) (*models.Room, error) {
	var room *models.Room
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		room, err = lockRoom(ctx, tx, roomID)
		if err != nil {
			return err
		}
		if !room.IsMember(userID) {
			return fmt.Errorf("user is not in room: %w", ErrNotFound)
		}
		_, err = tx.Exec(ctx, `DELETE FROM room_members WHERE room_id = $1 AND user_id = $2`, roomID, userID)
		if err != nil {
			return fmt.Errorf("failed to leave room: %w", err)
		}

		remaining := room.Members[:0]
		for _, m := range room.Members {
			if m.UserID != userID {
				remaining = append(remaining, m)
			}
		}
		room.Members = remaining
		room.Players = len(remaining)

		switch {
		case len(remaining) == 0:
			room.Status = models.RoomFinished
		case room.HostID == userID:
			room.HostID = remaining[0].UserID
		}
		room.UpdatedAt = time.Now()
		return saveRoom(ctx, tx, room)
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// Update applies fn to the locked room and persists host, status, round and prompt
func (r *RoomRepository) Update(ctx context.Context, roomID string, fn func(*models.Room) error) (*models.Room, error) {
	var room *models.Room
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		room, err = lockRoom(ctx, tx, roomID)
		if err != nil {
			return err
		}
		if err := fn(room); err != nil {
			return err
		}
		room.UpdatedAt = time.Now()
		return saveRoom(ctx, tx, room)
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

func saveRoom(ctx context.Context, tx pgx.Tx, room *models.Room) error {
	query := `
		UPDATE rooms
		SET host_id = $1, status = $2, round = $3, prompt = $4, updated_at = $5
		WHERE id = $6
	`
	_, err := tx.Exec(ctx, query, room.HostID, room.Status, room.Round, room.Prompt, room.UpdatedAt, room.ID)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	return nil
}

package services

import (
	"context"
	"time"

	"pulse-backend/internal/models"
)

// UserStore persists user accounts
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByCode(ctx context.Context, code string) (*models.User, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
	SetStatus(ctx context.Context, userID string, status models.UserStatus) error
	SetVerified(ctx context.Context, userID string, verified bool) error
}

// PhotoStore persists photo metadata
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	CreateWithinLimit(ctx context.Context, photo *models.Photo, limit int) error
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	ListByUser(ctx context.Context, userID string, statuses []models.PhotoStatus, limit, offset int) ([]*models.Photo, int, error)
	CountRejected(ctx context.Context, userID string) (int, error)
	ListPending(ctx context.Context, limit, offset int) ([]*models.Photo, int, error)
	UpdateStatus(ctx context.Context, photoID string, from, to models.PhotoStatus) error
	Moderate(ctx context.Context, photoID, moderatorID string, status models.PhotoStatus, reason *string) error
	Delete(ctx context.Context, id string) error
}

// ContactStore persists relationships between users
type ContactStore interface {
	Create(ctx context.Context, c *models.Contact) error
	GetByID(ctx context.Context, id string) (*models.Contact, error)
	GetBetween(ctx context.Context, userA, userB string) (*models.Contact, error)
	ListByUser(ctx context.Context, userID string, status models.ContactStatus) ([]*models.Contact, error)
	UpdateStatus(ctx context.Context, id string, status models.ContactStatus) error
	Block(ctx context.Context, id, userID string) (*models.Contact, error)
	Unblock(ctx context.Context, id, userID string) error
	Delete(ctx context.Context, id string) error
	CountBlockedBy(ctx context.Context, userID string) (int, error)
}

// RoomStore persists game rooms. AddMember, RemoveMember and Update run
// against a row-locked room.
type RoomStore interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id string) (*models.Room, error)
	GetIDByCode(ctx context.Context, code string) (string, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListOpen(ctx context.Context, limit int) ([]*models.Room, error)
	AddMember(ctx context.Context, roomID, userID string, check func(*models.Room) error) (*models.Room, error)
	RemoveMember(ctx context.Context, roomID, userID string) (*models.Room, error)
	Update(ctx context.Context, roomID string, fn func(*models.Room) error) (*models.Room, error)
}

// TeamStore persists teams and memberships
type TeamStore interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	GetIDByJoinCode(ctx context.Context, code string) (string, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListByMember(ctx context.Context, userID string) ([]*models.Team, error)
	AddMember(ctx context.Context, teamID, userID string, check func(*models.Team) error) (*models.Team, error)
	RemoveMember(ctx context.Context, teamID, userID string, check func(*models.Team) error) (*models.Team, error)
	SetLocked(ctx context.Context, teamID string, locked bool) error
}

// SafetyStore persists reports and verification requests
type SafetyStore interface {
	CreateReport(ctx context.Context, report *models.Report) error
	CountReporters(ctx context.Context, targetID string, since time.Time) (int, error)
	CreateVerification(ctx context.Context, v *models.Verification) error
	GetVerification(ctx context.Context, id string) (*models.Verification, error)
	ListPendingVerifications(ctx context.Context, limit, offset int) ([]*models.Verification, error)
	ReviewVerification(ctx context.Context, id, reviewerID string, status models.ReviewStatus) error
}

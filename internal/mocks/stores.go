package mocks

import (
	"context"
	"time"

	"pulse-backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) GetByCode(ctx context.Context, code string) (*models.User, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) UpdateProfile(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	args := m.Called(ctx, userID, pushToken)
	return args.Error(0)
}

func (m *MockUserStore) SetStatus(ctx context.Context, userID string, status models.UserStatus) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

func (m *MockUserStore) SetVerified(ctx context.Context, userID string, verified bool) error {
	args := m.Called(ctx, userID, verified)
	return args.Error(0)
}

type MockPhotoStore struct {
	mock.Mock
}

func (m *MockPhotoStore) Create(ctx context.Context, photo *models.Photo) error {
	args := m.Called(ctx, photo)
	return args.Error(0)
}

func (m *MockPhotoStore) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Photo), args.Error(1)
}

func (m *MockPhotoStore) ListByUser(ctx context.Context, userID string, statuses []models.PhotoStatus, limit, offset int) ([]*models.Photo, int, error) {
	args := m.Called(ctx, userID, statuses, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Photo), args.Int(1), args.Error(2)
}

func (m *MockPhotoStore) CreateWithinLimit(ctx context.Context, photo *models.Photo, limit int) error {
	args := m.Called(ctx, photo, limit)
	return args.Error(0)
}

func (m *MockPhotoStore) CountRejected(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockPhotoStore) ListPending(ctx context.Context, limit, offset int) ([]*models.Photo, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Photo), args.Int(1), args.Error(2)
}

func (m *MockPhotoStore) UpdateStatus(ctx context.Context, photoID string, from, to models.PhotoStatus) error {
	args := m.Called(ctx, photoID, from, to)
	return args.Error(0)
}

func (m *MockPhotoStore) Moderate(ctx context.Context, photoID, moderatorID string, status models.PhotoStatus, reason *string) error {
	args := m.Called(ctx, photoID, moderatorID, status, reason)
	return args.Error(0)
}

func (m *MockPhotoStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockContactStore struct {
	mock.Mock
}

func (m *MockContactStore) Create(ctx context.Context, c *models.Contact) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContactStore) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *MockContactStore) GetBetween(ctx context.Context, userA, userB string) (*models.Contact, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *MockContactStore) ListByUser(ctx context.Context, userID string, status models.ContactStatus) ([]*models.Contact, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Contact), args.Error(1)
}

func (m *MockContactStore) UpdateStatus(ctx context.Context, id string, status models.ContactStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockContactStore) Block(ctx context.Context, id, userID string) (*models.Contact, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *MockContactStore) Unblock(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockContactStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContactStore) CountBlockedBy(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// MockRoomStore runs the check and update callbacks against the room
// returned by the test, so services can be exercised end to end.
type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) Create(ctx context.Context, room *models.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRoomStore) GetByID(ctx context.Context, id string) (*models.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockRoomStore) GetIDByCode(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *MockRoomStore) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoomStore) ListOpen(ctx context.Context, limit int) ([]*models.Room, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Room), args.Error(1)
}

func (m *MockRoomStore) AddMember(ctx context.Context, roomID, userID string, check func(*models.Room) error) (*models.Room, error) {
	args := m.Called(ctx, roomID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	room := args.Get(0).(*models.Room)
	if err := check(room); err != nil {
		return nil, err
	}
	room.Members = append(room.Members, models.RoomMember{UserID: userID, JoinedAt: time.Now()})
	room.Players = len(room.Members)
	return room, args.Error(1)
}

func (m *MockRoomStore) RemoveMember(ctx context.Context, roomID, userID string) (*models.Room, error) {
	args := m.Called(ctx, roomID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockRoomStore) Update(ctx context.Context, roomID string, fn func(*models.Room) error) (*models.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	room := args.Get(0).(*models.Room)
	if err := fn(room); err != nil {
		return nil, err
	}
	return room, args.Error(1)
}

// MockTeamStore runs the check callback the same way as MockRoomStore
type MockTeamStore struct {
	mock.Mock
}

func (m *MockTeamStore) Create(ctx context.Context, team *models.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamStore) GetByID(ctx context.Context, id string) (*models.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamStore) GetIDByJoinCode(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *MockTeamStore) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockTeamStore) ListByMember(ctx context.Context, userID string) ([]*models.Team, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Team), args.Error(1)
}

func (m *MockTeamStore) AddMember(ctx context.Context, teamID, userID string, check func(*models.Team) error) (*models.Team, error) {
	args := m.Called(ctx, teamID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	team := args.Get(0).(*models.Team)
	if err := check(team); err != nil {
		return nil, err
	}
	team.Members = append(team.Members, models.TeamMembership{UserID: userID, Role: models.TeamMember, JoinedAt: time.Now()})
	return team, args.Error(1)
}

func (m *MockTeamStore) RemoveMember(ctx context.Context, teamID, userID string, check func(*models.Team) error) (*models.Team, error) {
	args := m.Called(ctx, teamID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	team := args.Get(0).(*models.Team)
	if check != nil {
		if err := check(team); err != nil {
			return nil, err
		}
	}
	remaining := team.Members[:0]
	for _, member := range team.Members {
		if member.UserID != userID {
			remaining = append(remaining, member)
		}
	}
	team.Members = remaining
	return team, args.Error(1)
}

func (m *MockTeamStore) SetLocked(ctx context.Context, teamID string, locked bool) error {
	args := m.Called(ctx, teamID, locked)
	return args.Error(0)
}

type MockSafetyStore struct {
	mock.Mock
}

func (m *MockSafetyStore) CreateReport(ctx context.Context, report *models.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockSafetyStore) CountReporters(ctx context.Context, targetID string, since time.Time) (int, error) {
	args := m.Called(ctx, targetID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockSafetyStore) CreateVerification(ctx context.Context, v *models.Verification) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockSafetyStore) GetVerification(ctx context.Context, id string) (*models.Verification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Verification), args.Error(1)
}

func (m *MockSafetyStore) ListPendingVerifications(ctx context.Context, limit, offset int) ([]*models.Verification, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Verification), args.Error(1)
}

func (m *MockSafetyStore) ReviewVerification(ctx context.Context, id, reviewerID string, status models.ReviewStatus) error {
	args := m.Called(ctx, id, reviewerID, status)
	return args.Error(0)
}

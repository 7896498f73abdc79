package services

import (
	"context"
	"testing"
	"time"

	"pulse-backend/internal/auth"
	"pulse-backend/internal/config"
	"pulse-backend/internal/mocks"
	"pulse-backend/internal/models"
	"pulse-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	users    *mocks.MockUserStore
	contacts *mocks.MockContactStore
	photos   *mocks.MockPhotoStore
	store    *mocks.MockObjectStore
	jwt      *auth.JWTManager
	svc      *UserService
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:    new(mocks.MockUserStore),
		contacts: new(mocks.MockContactStore),
		photos:   new(mocks.MockPhotoStore),
		store:    new(mocks.MockObjectStore),
		jwt:      auth.NewJWTManager("test-secret", time.Hour),
	}
	photoSvc := NewPhotoService(f.photos, new(mocks.MockSafetyStore), f.store, &recordingNotifier{}, 6, time.Hour)
	f.svc = NewUserService(f.users, f.contacts, photoSvc, f.jwt, config.ModerationConfig{
		ModeratorEmails: []string{"mod@example.com"},
	})
	f.svc.now = fixedClock
	return f
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Email:       "  Jane@Example.com ",
		Password:    "correct-horse",
		DisplayName: "Jane",
		Birthdate:   "1995-06-01",
	}
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByEmail", mock.Anything, "jane@example.com").Return(nil, repository.ErrNotFound)
		f.users.On("CodeExists", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
		f.users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

		res, err := f.svc.Register(ctx, validRegistration())
		require.NoError(t, err)

		assert.Equal(t, "jane@example.com", res.User.Email)
		assert.Equal(t, models.RoleUser, res.User.Role)
		assert.Equal(t, models.UserActive, res.User.Status)
		assert.Len(t, res.User.Code, codeLength)
		assert.NotEqual(t, "correct-horse", res.User.PasswordHash)
		assert.NoError(t, auth.CheckPassword(res.User.PasswordHash, "correct-horse"))

		claims, err := f.jwt.Validate(res.Token)
		require.NoError(t, err)
		assert.Equal(t, res.User.ID, claims.UserID)
	})

	t.Run("moderator email", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByEmail", mock.Anything, "mod@example.com").Return(nil, repository.ErrNotFound)
		f.users.On("CodeExists", mock.Anything, mock.Anything).Return(false, nil)
		f.users.On("Create", mock.Anything, mock.Anything).Return(nil)

		in := validRegistration()
		in.Email = "MOD@example.com"
		res, err := f.svc.Register(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, models.RoleModerator, res.User.Role)
	})

	t.Run("underage", func(t *testing.T) {
		f := newUserFixture()
		in := validRegistration()
		in.Birthdate = "2008-03-15" // turns 18 the day after testNow
		_, err := f.svc.Register(ctx, in)
		assert.ErrorIs(t, err, ErrUnderage)
	})

	t.Run("weak password", func(t *testing.T) {
		f := newUserFixture()
		in := validRegistration()
		in.Password = "short"
		_, err := f.svc.Register(ctx, in)
		assert.ErrorIs(t, err, auth.ErrWeakPassword)
	})

	t.Run("bad birthdate", func(t *testing.T) {
		f := newUserFixture()
		in := validRegistration()
		in.Birthdate = "01/06/1995"
		_, err := f.svc.Register(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByEmail", mock.Anything, "jane@example.com").Return(&models.User{ID: "u1"}, nil)

		_, err := f.svc.Register(ctx, validRegistration())
		assert.ErrorIs(t, err, ErrEmailTaken)
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate on insert", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
		f.users.On("CodeExists", mock.Anything, mock.Anything).Return(false, nil)
		f.users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

		_, err := f.svc.Register(ctx, validRegistration())
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByEmail", mock.Anything, "jane@example.com").
			Return(&models.User{ID: "u1", PasswordHash: hash, Status: models.UserActive}, nil)

		res, err := f.svc.Login(ctx, LoginInput{Email: "Jane@example.com", Password: "correct-horse"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)

		_, err := f.svc.Login(ctx, LoginInput{Email: "x@example.com", Password: "whatever1"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByEmail", mock.Anything, mock.Anything).
			Return(&models.User{ID: "u1", PasswordHash: hash, Status: models.UserActive}, nil)

		_, err := f.svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "wrong-horse"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("suspended", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByEmail", mock.Anything, mock.Anything).
			Return(&models.User{ID: "u1", PasswordHash: hash, Status: models.UserSuspended}, nil)

		_, err := f.svc.Login(ctx, LoginInput{Email: "jane@example.com", Password: "correct-horse"})
		assert.ErrorIs(t, err, ErrAccountSuspended)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("bio with phone number", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByID", mock.Anything, "u1").Return(&models.User{ID: "u1"}, nil)

		_, err := f.svc.UpdateProfile(ctx, "u1", ProfileUpdate{Bio: strPtr("text me 555 123 4567")})
		assert.ErrorIs(t, err, ErrContactDetails)
		f.users.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
	})

	t.Run("partial update", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByID", mock.Anything, "u1").
			Return(&models.User{ID: "u1", DisplayName: "Jane", City: "Lisbon"}, nil)
		f.users.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Bio == "Loves surfing" && u.City == "Lisbon" && u.UpdatedAt.Equal(testNow)
		})).Return(nil)

		user, err := f.svc.UpdateProfile(ctx, "u1", ProfileUpdate{Bio: strPtr(" Loves surfing ")})
		require.NoError(t, err)
		assert.Equal(t, "Jane", user.DisplayName)
		f.users.AssertExpectations(t)
	})
}

func TestUserService_UpdatePushToken(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()

	f.users.On("UpdatePushToken", mock.Anything, "u1", (*string)(nil)).Return(nil).Once()
	f.users.On("UpdatePushToken", mock.Anything, "u1", strPtr("abc")).Return(nil).Once()

	require.NoError(t, f.svc.UpdatePushToken(ctx, "u1", "  "))
	require.NoError(t, f.svc.UpdatePushToken(ctx, "u1", "abc"))
	f.users.AssertExpectations(t)
}

func TestUserService_GetPublicProfile(t *testing.T) {
	ctx := context.Background()
	target := &models.User{
		ID:          "u2",
		Email:       "secret@example.com",
		DisplayName: "Sam",
		Birthdate:   time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:      models.UserActive,
	}

	t.Run("visible with approved photos", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByID", mock.Anything, "u2").Return(target, nil)
		f.contacts.On("GetBetween", mock.Anything, "u1", "u2").Return(nil, repository.ErrNotFound)
		f.photos.On("ListByUser", mock.Anything, "u2", []models.PhotoStatus{models.PhotoApproved}, 6, 0).
			Return([]*models.Photo{{ID: "p1", ObjectKey: "photos/u2/p1.jpg", Status: models.PhotoApproved}}, 1, nil)
		f.store.On("PresignGet", mock.Anything, "photos/u2/p1.jpg", time.Hour).Return("https://cdn/p1", nil)

		profile, err := f.svc.GetPublicProfile(ctx, "u1", "u2")
		require.NoError(t, err)
		assert.Equal(t, "Sam", profile.DisplayName)
		assert.Equal(t, 36, profile.Age)
		require.Len(t, profile.Photos, 1)
		assert.Equal(t, "https://cdn/p1", profile.Photos[0].URL)
	})

	t.Run("blocked looks missing", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByID", mock.Anything, "u2").Return(target, nil)
		f.contacts.On("GetBetween", mock.Anything, "u1", "u2").
			Return(&models.Contact{ID: "c1", RequesterID: "u1", AddresseeID: "u2", Status: models.ContactBlocked, BlockedByAddressee: true}, nil)

		_, err := f.svc.GetPublicProfile(ctx, "u1", "u2")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("suspended looks missing", func(t *testing.T) {
		f := newUserFixture()
		suspended := *target
		suspended.Status = models.UserSuspended
		f.users.On("GetByID", mock.Anything, "u2").Return(&suspended, nil)

		_, err := f.svc.GetPublicProfile(ctx, "u1", "u2")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

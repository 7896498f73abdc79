package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pulse-backend/internal/auth"
	"pulse-backend/internal/config"
	"pulse-backend/internal/models"
	"pulse-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	minAge     = 18
	dateLayout = "2006-01-02"
)

// RegisterInput is the payload of a sign-up
type RegisterInput struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,max=72"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=50"`
	Birthdate   string `json:"birthdate" validate:"required"`
}

// LoginInput is the payload of a sign-in
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate holds the editable profile fields; nil means unchanged
type ProfileUpdate struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=50"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
	Gender      *string `json:"gender" validate:"omitempty,max=30"`
	City        *string `json:"city" validate:"omitempty,max=80"`
}

// AuthResult is returned by register and login
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// UserService handles accounts, authentication and profiles
type UserService struct {
	users      UserStore
	contacts   ContactStore
	photos     *PhotoService
	jwt        *auth.JWTManager
	moderation config.ModerationConfig
	now        func() time.Time
}

// NewUserService creates a new user service
func NewUserService(
	users UserStore,
	contacts ContactStore,
	photos *PhotoService,
	jwt *auth.JWTManager,
	moderation config.ModerationConfig,
) *UserService {
	return &UserService{
		users:      users,
		contacts:   contacts,
		photos:     photos,
		jwt:        jwt,
		moderation: moderation,
		now:        time.Now,
	}
}

// Register creates an account and issues a token
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	birthdate, err := time.Parse(dateLayout, in.Birthdate)
	if err != nil {
		return nil, fmt.Errorf("birthdate must be YYYY-MM-DD: %w", ErrInvalidInput)
	}
	now := s.now()
	if models.AgeAt(birthdate, now) < minAge {
		return nil, ErrUnderage
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	code, err := uniqueCode(ctx, s.users.CodeExists)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	role := models.RoleUser
	if s.moderation.IsModerator(email) {
		role = models.RoleModerator
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		Birthdate:    birthdate,
		Code:         code,
		Role:         role,
		Status:       models.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", user.ID).
		Str("code", user.Code).
		Str("role", string(role)).
		Msg("User registered")

	return &AuthResult{User: user, Token: token}, nil
}

// Login checks credentials and issues a token
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.CheckPassword(user.PasswordHash, in.Password); err != nil {
		return nil, err
	}
	if user.Status == models.UserSuspended {
		return nil, ErrAccountSuspended
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID).Msg("User logged in")
	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate validates an access token and returns its claims
func (s *UserService) Authenticate(token string) (*auth.Claims, error) {
	return s.jwt.Validate(token)
}

// GetMe returns the caller's own account
func (s *UserService) GetMe(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies a partial profile update. The bio is screened for
// contact details.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	user, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.DisplayName != nil {
		name := strings.TrimSpace(*upd.DisplayName)
		if name == "" {
			return nil, fmt.Errorf("display_name cannot be empty: %w", ErrInvalidInput)
		}
		if err := CheckText(name); err != nil {
			return nil, err
		}
		user.DisplayName = name
	}
	if upd.Bio != nil {
		bio := strings.TrimSpace(*upd.Bio)
		if err := CheckText(bio); err != nil {
			return nil, err
		}
		user.Bio = bio
	}
	if upd.Gender != nil {
		user.Gender = strings.TrimSpace(*upd.Gender)
	}
	if upd.City != nil {
		user.City = strings.TrimSpace(*upd.City)
	}
	user.UpdatedAt = s.now()

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	log.Info().Str("user_id", userID).Msg("Profile updated")
	return user, nil
}

// UpdatePushToken stores the device token; an empty token clears it
func (s *UserService) UpdatePushToken(ctx context.Context, userID, token string) error {
	var ptr *string
	if token = strings.TrimSpace(token); token != "" {
		ptr = &token
	}
	return s.users.UpdatePushToken(ctx, userID, ptr)
}

// GetPublicProfile returns the public card of a user with approved photos.
// Blocked and suspended users look like missing users.
func (s *UserService) GetPublicProfile(ctx context.Context, viewerID, userID string) (*models.PublicProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Status == models.UserSuspended && viewerID != userID {
		return nil, ErrUserNotFound
	}

	if viewerID != userID {
		contact, err := s.contacts.GetBetween(ctx, viewerID, userID)
		switch {
		case err == nil && contact.Status == models.ContactBlocked:
			return nil, ErrUserNotFound
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}

	profile := user.Public(s.now())
	photos, err := s.photos.Approved(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Photos = photos
	return &profile, nil
}

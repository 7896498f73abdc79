package repository

import (
	"context"
	"fmt"
	"time"

	"pulse-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, password_hash, display_name, bio, birthdate, gender, city,
		code, role, status, verified, push_token, created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.DisplayName, &user.Bio,
		&user.Birthdate, &user.Gender, &user.City, &user.Code, &user.Role,
		&user.Status, &user.Verified, &user.PushToken, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.DisplayName, user.Bio,
		user.Birthdate, user.Gender, user.City, user.Code, user.Role,
		user.Status, user.Verified, user.PushToken, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", translate(err))
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", translate(err))
	}
	return user, nil
}

// GetByCode retrieves a user by code
func (r *UserRepository) GetByCode(ctx context.Context, code string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE code = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, code))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by code: %w", translate(err))
	}
	return user, nil
}

// CodeExists checks if a code already exists
func (r *UserRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE code = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check code existence: %w", err)
	}
	return exists, nil
}

// UpdateProfile stores the editable profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET display_name = $1, bio = $2, gender = $3, city = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := r.db.Exec(ctx, query,
		user.DisplayName, user.Bio, user.Gender, user.City, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("failed to update profile: %w", ErrNotFound)
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.Exec(ctx, query, pushToken, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}

// SetStatus changes the account status of a user
func (r *UserRepository) SetStatus(ctx context.Context, userID string, status models.UserStatus) error {
	query := `UPDATE users SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.Exec(ctx, query, status, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("failed to update user status: %w", ErrNotFound)
	}
	return nil
}

// SetVerified marks a user as verified
func (r *UserRepository) SetVerified(ctx context.Context, userID string, verified bool) error {
	query := `UPDATE users SET verified = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.Exec(ctx, query, verified, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update verified flag: %w", err)
	}
	return nil
}

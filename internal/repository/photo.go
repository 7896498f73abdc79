package repository

import (
	"context"
	"fmt"
	"time"

	"pulse-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const photoColumns = `id, user_id, kind, object_key, content_type, status,
		rejection_reason, moderated_by, moderated_at, created_at`

// PhotoRepository handles database operations for photos
type PhotoRepository struct {
	db DB
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	var photo models.Photo
	err := row.Scan(
		&photo.ID, &photo.UserID, &photo.Kind, &photo.ObjectKey, &photo.ContentType,
		&photo.Status, &photo.RejectionReason, &photo.ModeratedBy, &photo.ModeratedAt,
		&photo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

func collectPhotos(rows pgx.Rows) ([]*models.Photo, error) {
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}
	return photos, nil
}

// Create creates a new photo
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	return insertPhoto(ctx, r.db, photo)
}

// CreateWithinLimit creates a profile photo unless the user already has
// limit active ones. Uploads of the same user serialize on the user row.
func (r *PhotoRepository) CreateWithinLimit(ctx context.Context, photo *models.Photo, limit int) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, photo.UserID).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to lock user: %w", translate(err))
		}
		active, err := countActive(ctx, tx, photo.UserID)
		if err != nil {
			return err
		}
		if active >= limit {
			return ErrLimitReached
		}
		return insertPhoto(ctx, tx, photo)
	})
}

func insertPhoto(ctx context.Context, q querier, photo *models.Photo) error {
	query := `
		INSERT INTO photos (id, user_id, kind, object_key, content_type, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.Exec(ctx, query,
		photo.ID, photo.UserID, photo.Kind, photo.ObjectKey, photo.ContentType,
		photo.Status, photo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", translate(err))
	}
	return nil
}

// GetByID retrieves a photo by ID
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`
	photo, err := scanPhoto(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", translate(err))
	}
	return photo, nil
}

// ListByUser retrieves photos of a user with pagination, newest first.
// An empty status list returns photos in any status.
func (r *PhotoRepository) ListByUser(ctx context.Context, userID string, statuses []models.PhotoStatus, limit, offset int) ([]*models.Photo, int, error) {
	filter := make([]string, 0, len(statuses))
	for _, s := range statuses {
		filter = append(filter, string(s))
	}

	countQuery := `
		SELECT COUNT(*) FROM photos
		WHERE user_id = $1 AND kind = 'profile' AND (cardinality($2::text[]) = 0 OR status = ANY($2))
	`
	var total int
	if err := r.db.QueryRow(ctx, countQuery, userID, filter).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count photos: %w", err)
	}

	query := `
		SELECT ` + photoColumns + `
		FROM photos
		WHERE user_id = $1 AND kind = 'profile' AND (cardinality($2::text[]) = 0 OR status = ANY($2))
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, userID, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get photos: %w", err)
	}
	photos, err := collectPhotos(rows)
	if err != nil {
		return nil, 0, err
	}
	return photos, total, nil
}

// countActive counts profile photos that are not rejected
func countActive(ctx context.Context, q querier, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM photos WHERE user_id = $1 AND kind = 'profile' AND status <> 'rejected'`
	var n int
	if err := q.QueryRow(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return n, nil
}

// CountRejected counts rejected photos of any kind
func (r *PhotoRepository) CountRejected(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM photos WHERE user_id = $1 AND status = 'rejected'`
	var n int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rejected photos: %w", err)
	}
	return n, nil
}

// ListPending returns profile photos awaiting moderation, oldest first
func (r *PhotoRepository) ListPending(ctx context.Context, limit, offset int) ([]*models.Photo, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM photos WHERE status = 'pending' AND kind = 'profile'`
	if err := r.db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pending photos: %w", err)
	}

	query := `
		SELECT ` + photoColumns + `
		FROM photos
		WHERE status = 'pending' AND kind = 'profile'
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get pending photos: %w", err)
	}
	photos, err := collectPhotos(rows)
	if err != nil {
		return nil, 0, err
	}
	return photos, total, nil
}

// UpdateStatus moves a photo from one status to another.
// It returns ErrNotFound when the photo is not in the expected status.
func (r *PhotoRepository) UpdateStatus(ctx context.Context, photoID string, from, to models.PhotoStatus) error {
	query := `UPDATE photos SET status = $1 WHERE id = $2 AND status = $3`
	result, err := r.db.Exec(ctx, query, to, photoID, from)
	if err != nil {
		return fmt.Errorf("failed to update photo status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("failed to update photo status: %w", ErrNotFound)
	}
	return nil
}

// Moderate records a moderation decision on a pending photo
func (r *PhotoRepository) Moderate(ctx context.Context, photoID, moderatorID string, status models.PhotoStatus, reason *string) error {
	query := `
		UPDATE photos
		SET status = $1, rejection_reason = $2, moderated_by = $3, moderated_at = $4
		WHERE id = $5 AND status = 'pending' AND kind = 'profile'
	`
	result, err := r.db.Exec(ctx, query, status, reason, moderatorID, time.Now(), photoID)
	if err != nil {
		return fmt.Errorf("failed to moderate photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("failed to moderate photo: %w", ErrNotFound)
	}
	return nil
}

// Delete deletes a photo by ID
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM photos WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete photo: %w", ErrNotFound)
	}
	return nil
}

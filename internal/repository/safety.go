package repository

import (
	"context"
	"fmt"
	"time"

	"pulse-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const verificationColumns = `id, user_id, photo_id, status, reviewed_by, reviewed_at, created_at`

// SafetyRepository stores reports and verification requests
type SafetyRepository struct {
	db DB
}

// NewSafetyRepository creates a new safety repository
func NewSafetyRepository(db DB) *SafetyRepository {
	return &SafetyRepository{db: db}
}

// CreateReport stores a report
func (r *SafetyRepository) CreateReport(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (id, reporter_id, target_id, reason, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		report.ID, report.ReporterID, report.TargetID, report.Reason, report.Details, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", translate(err))
	}
	return nil
}

// CountReporters counts distinct users who reported target since the given time
func (r *SafetyRepository) CountReporters(ctx context.Context, targetID string, since time.Time) (int, error) {
	query := `SELECT COUNT(DISTINCT reporter_id) FROM reports WHERE target_id = $1 AND created_at >= $2`
	var n int
	if err := r.db.QueryRow(ctx, query, targetID, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count reporters: %w", err)
	}
	return n, nil
}

func scanVerification(row pgx.Row) (*models.Verification, error) {
	var v models.Verification
	err := row.Scan(&v.ID, &v.UserID, &v.PhotoID, &v.Status, &v.ReviewedBy, &v.ReviewedAt, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateVerification opens a verification request
func (r *SafetyRepository) CreateVerification(ctx context.Context, v *models.Verification) error {
	query := `
		INSERT INTO verifications (id, user_id, photo_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, v.ID, v.UserID, v.PhotoID, v.Status, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create verification: %w", translate(err))
	}
	return nil
}

// GetVerification retrieves a verification request by ID
func (r *SafetyRepository) GetVerification(ctx context.Context, id string) (*models.Verification, error) {
	query := `SELECT ` + verificationColumns + ` FROM verifications WHERE id = $1`
	v, err := scanVerification(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get verification: %w", translate(err))
	}
	return v, nil
}

// ListPendingVerifications returns open requests, oldest first
func (r *SafetyRepository) ListPendingVerifications(ctx context.Context, limit, offset int) ([]*models.Verification, error) {
	query := `
		SELECT ` + verificationColumns + `
		FROM verifications
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list verifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verification: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating verifications: %w", err)
	}
	return out, nil
}

// ReviewVerification records the decision on a pending verification and
// moves its selfie to the matching photo status.
func (r *SafetyRepository) ReviewVerification(ctx context.Context, id, reviewerID string, status models.ReviewStatus) error {
	photoStatus := models.PhotoApproved
	if status == models.ReviewRejected {
		photoStatus = models.PhotoRejected
	}

	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		now := time.Now()
		query := `
			UPDATE verifications
			SET status = $1, reviewed_by = $2, reviewed_at = $3
			WHERE id = $4 AND status = 'pending'
			RETURNING photo_id
		`
		var photoID string
		if err := tx.QueryRow(ctx, query, status, reviewerID, now, id).Scan(&photoID); err != nil {
			return fmt.Errorf("failed to review verification: %w", translate(err))
		}

		_, err := tx.Exec(ctx, `
			UPDATE photos
			SET status = $1, moderated_by = $2, moderated_at = $3
			WHERE id = $4 AND status = 'pending'
		`, photoStatus, reviewerID, now, photoID)
		if err != nil {
			return fmt.Errorf("failed to update verification photo: %w", err)
		}
		return nil
	})
}

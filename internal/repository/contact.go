package repository

import (
	"context"
	"fmt"
	"time"

	"pulse-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const contactColumns = `id, requester_id, addressee_id, status, blocked_by_requester, blocked_by_addressee, created_at, updated_at`

// ContactRepository handles database operations for contacts
type ContactRepository struct {
	db DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func scanContact(row pgx.Row) (*models.Contact, error) {
	var c models.Contact
	err := row.Scan(
		&c.ID, &c.RequesterID, &c.AddresseeID, &c.Status,
		&c.BlockedByRequester, &c.BlockedByAddressee, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create creates a new contact
func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	query := `
		INSERT INTO contacts (` + contactColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.RequesterID, c.AddresseeID, c.Status,
		c.BlockedByRequester, c.BlockedByAddressee, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", translate(err))
	}
	return nil
}

// GetByID retrieves a contact by ID
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`
	c, err := scanContact(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", translate(err))
	}
	return c, nil
}

// GetBetween retrieves the contact between two users regardless of direction
func (r *ContactRepository) GetBetween(ctx context.Context, userA, userB string) (*models.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE (requester_id = $1 AND addressee_id = $2)
		   OR (requester_id = $2 AND addressee_id = $1)
	`
	c, err := scanContact(r.db.QueryRow(ctx, query, userA, userB))
	if err != nil {
		return nil, fmt.Errorf("failed to get contact between users: %w", translate(err))
	}
	return c, nil
}

// ListByUser lists contacts of a user in the given status
func (r *ContactRepository) ListByUser(ctx context.Context, userID string, status models.ContactStatus) ([]*models.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE (requester_id = $1 OR addressee_id = $1) AND status = $2
		ORDER BY updated_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}
	return contacts, nil
}

// UpdateStatus changes the status of a contact that is not blocked
func (r *ContactRepository) UpdateStatus(ctx context.Context, id string, status models.ContactStatus) error {
	query := `UPDATE contacts SET status = $1, updated_at = $2 WHERE id = $3 AND status <> 'blocked'`
	result, err := r.db.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", translate(err))
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("failed to update contact: %w", ErrNotFound)
	}
	return nil
}

// Block records userID's block on the pair and returns the updated row.
// A block placed by the other side is left as it is.
func (r *ContactRepository) Block(ctx context.Context, id, userID string) (*models.Contact, error) {
	query := `
		UPDATE contacts SET
			status = 'blocked',
			blocked_by_requester = blocked_by_requester OR requester_id = $2,
			blocked_by_addressee = blocked_by_addressee OR addressee_id = $2,
			updated_at = $3
		WHERE id = $1 AND (requester_id = $2 OR addressee_id = $2)
		RETURNING ` + contactColumns
	c, err := scanContact(r.db.QueryRow(ctx, query, id, userID, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to block contact: %w", translate(err))
	}
	return c, nil
}

// Unblock lifts userID's own block. The row is deleted once neither side
// blocks any more.
func (r *ContactRepository) Unblock(ctx context.Context, id, userID string) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		lift := `
			UPDATE contacts SET
				blocked_by_requester = blocked_by_requester AND requester_id <> $2,
				blocked_by_addressee = blocked_by_addressee AND addressee_id <> $2,
				updated_at = $3
			WHERE id = $1
			  AND ((requester_id = $2 AND blocked_by_requester)
			    OR (addressee_id = $2 AND blocked_by_addressee))
		`
		result, err := tx.Exec(ctx, lift, id, userID, time.Now())
		if err != nil {
			return fmt.Errorf("failed to lift block: %w", translate(err))
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("failed to lift block: %w", ErrNotFound)
		}

		cleanup := `DELETE FROM contacts WHERE id = $1 AND NOT blocked_by_requester AND NOT blocked_by_addressee`
		if _, err := tx.Exec(ctx, cleanup, id); err != nil {
			return fmt.Errorf("failed to delete unblocked contact: %w", err)
		}
		return nil
	})
}

// Delete deletes a contact by ID
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM contacts WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete contact: %w", ErrNotFound)
	}
	return nil
}

// CountBlockedBy counts how many users have blocked userID
func (r *ContactRepository) CountBlockedBy(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM contacts
		WHERE (requester_id = $1 AND blocked_by_addressee)
		   OR (addressee_id = $1 AND blocked_by_requester)
	`
	var n int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count blocks: %w", err)
	}
	return n, nil
}

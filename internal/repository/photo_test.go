package repository

import (
	"context"
	"testing"
	"time"

	"pulse-backend/internal/models"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var photoColumnNames = []string{
	"id", "user_id", "kind", "object_key", "content_type", "status",
	"rejection_reason", "moderated_by", "moderated_at", "created_at",
}

func TestPhotoRepository_CreateWithinLimit(t *testing.T) {
	ctx := context.Background()
	photo := &models.Photo{
		ID:          "p1",
		UserID:      "u1",
		Kind:        models.PhotoProfile,
		ObjectKey:   "photos/u1/p1.jpg",
		ContentType: "image/jpeg",
		Status:      models.PhotoUploading,
		CreatedAt:   time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	t.Run("under limit", func(t *testing.T) {
		mock := newMock(t)
		repo := NewPhotoRepository(mock)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM users WHERE id = \$1 FOR UPDATE`).
			WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("u1"))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM photos WHERE user_id = \$1 AND kind = 'profile'`).
			WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))
		mock.ExpectExec("INSERT INTO photos").
			WithArgs("p1", "u1", models.PhotoProfile, "photos/u1/p1.jpg", "image/jpeg", models.PhotoUploading, photo.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		require.NoError(t, repo.CreateWithinLimit(ctx, photo, 6))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("at limit", func(t *testing.T) {
		mock := newMock(t)
		repo := NewPhotoRepository(mock)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM users WHERE id = \$1 FOR UPDATE`).
			WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("u1"))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM photos`).
			WithArgs("u1").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(6))
		mock.ExpectRollback()

		err := repo.CreateWithinLimit(ctx, photo, 6)
		assert.ErrorIs(t, err, ErrLimitReached)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPhotoRepository_ListPending(t *testing.T) {
	mock := newMock(t)
	repo := NewPhotoRepository(mock)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM photos WHERE status = 'pending' AND kind = 'profile'`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM photos\s+WHERE status = 'pending' AND kind = 'profile'\s+ORDER BY created_at ASC`).
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows(photoColumnNames).AddRow(
			"p1", "u1", models.PhotoProfile, "photos/u1/p1.jpg", "image/jpeg", models.PhotoPending,
			(*string)(nil), (*string)(nil), (*time.Time)(nil), now,
		))

	photos, total, err := repo.ListPending(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, photos, 1)
	assert.Equal(t, models.PhotoProfile, photos[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

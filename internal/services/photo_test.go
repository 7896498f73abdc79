package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"pulse-backend/internal/metrics"
	"pulse-backend/internal/mocks"
	"pulse-backend/internal/models"
	"pulse-backend/internal/repository"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type photoFixture struct {
	photos   *mocks.MockPhotoStore
	safety   *mocks.MockSafetyStore
	store    *mocks.MockObjectStore
	notifier *recordingNotifier
	svc      *PhotoService
}

func newPhotoFixture() *photoFixture {
	f := &photoFixture{
		photos:   new(mocks.MockPhotoStore),
		safety:   new(mocks.MockSafetyStore),
		store:    new(mocks.MockObjectStore),
		notifier: &recordingNotifier{},
	}
	f.svc = NewPhotoService(f.photos, f.safety, f.store, f.notifier, 6, time.Hour)
	f.svc.now = fixedClock
	return f
}

func TestPhotoService_RequestUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newPhotoFixture()
		f.store.On("PresignPut", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "photos/u1/") && strings.HasSuffix(key, ".png")
		}), "image/png", uploadURLExpiry).Return("https://upload", nil)
		f.photos.On("CreateWithinLimit", mock.Anything, mock.MatchedBy(func(p *models.Photo) bool {
			return p.Status == models.PhotoUploading && p.Kind == models.PhotoProfile
		}), 6).Return(nil)

		res, err := f.svc.RequestUpload(ctx, "u1", UploadRequest{Filename: "me.png", ContentType: "image/png"})
		require.NoError(t, err)
		assert.Equal(t, "https://upload", res.UploadURL)
		assert.Equal(t, 300, res.ExpiresIn)
		assert.NotEmpty(t, res.PhotoID)
		f.photos.AssertExpectations(t)
	})

	t.Run("content type from filename", func(t *testing.T) {
		f := newPhotoFixture()
		f.store.On("PresignPut", mock.Anything, mock.Anything, "image/jpeg", uploadURLExpiry).Return("https://upload", nil)
		f.photos.On("CreateWithinLimit", mock.Anything, mock.Anything, 6).Return(nil)

		_, err := f.svc.RequestUpload(ctx, "u1", UploadRequest{Filename: "me.JPEG"})
		require.NoError(t, err)
	})

	t.Run("unsupported type", func(t *testing.T) {
		f := newPhotoFixture()
		_, err := f.svc.RequestUpload(ctx, "u1", UploadRequest{Filename: "doc.pdf", ContentType: "application/pdf"})
		assert.ErrorIs(t, err, ErrUnsupportedMedia)
	})

	t.Run("limit reached", func(t *testing.T) {
		f := newPhotoFixture()
		f.store.On("PresignPut", mock.Anything, mock.Anything, "image/jpeg", uploadURLExpiry).Return("https://upload", nil)
		f.photos.On("CreateWithinLimit", mock.Anything, mock.Anything, 6).
			Return(fmt.Errorf("failed to create photo: %w", repository.ErrLimitReached))

		res, err := f.svc.RequestUpload(ctx, "u1", UploadRequest{Filename: "me.jpg", ContentType: "image/jpeg"})
		assert.ErrorIs(t, err, ErrPhotoLimit)
		assert.Nil(t, res)
		f.photos.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("verification selfie skips limit", func(t *testing.T) {
		f := newPhotoFixture()
		f.store.On("PresignPut", mock.Anything, mock.Anything, "image/jpeg", uploadURLExpiry).Return("https://upload", nil)
		f.photos.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Photo) bool {
			return p.Kind == models.PhotoVerification
		})).Return(nil)

		_, err := f.svc.RequestUpload(ctx, "u1", UploadRequest{
			Filename: "selfie.jpg", ContentType: "image/jpeg", Kind: models.PhotoVerification,
		})
		require.NoError(t, err)
		f.photos.AssertNotCalled(t, "CreateWithinLimit", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPhotoService_Confirm(t *testing.T) {
	ctx := context.Background()
	uploading := func(kind models.PhotoKind) *models.Photo {
		return &models.Photo{ID: "p1", UserID: "u1", Kind: kind, ObjectKey: "photos/u1/p1.jpg", Status: models.PhotoUploading}
	}

	t.Run("not owner", func(t *testing.T) {
		f := newPhotoFixture()
		f.photos.On("GetByID", mock.Anything, "p1").Return(uploading(models.PhotoProfile), nil)

		_, err := f.svc.Confirm(ctx, "u2", "p1")
		assert.ErrorIs(t, err, ErrPhotoNotFound)
	})

	t.Run("object missing", func(t *testing.T) {
		f := newPhotoFixture()
		f.photos.On("GetByID", mock.Anything, "p1").Return(uploading(models.PhotoProfile), nil)
		f.store.On("Exists", mock.Anything, "photos/u1/p1.jpg").Return(false, nil)

		_, err := f.svc.Confirm(ctx, "u1", "p1")
		assert.ErrorIs(t, err, ErrUploadMissing)
	})

	t.Run("profile photo goes pending", func(t *testing.T) {
		f := newPhotoFixture()
		f.photos.On("GetByID", mock.Anything, "p1").Return(uploading(models.PhotoProfile), nil)
		f.store.On("Exists", mock.Anything, "photos/u1/p1.jpg").Return(true, nil)
		f.photos.On("UpdateStatus", mock.Anything, "p1", models.PhotoUploading, models.PhotoPending).Return(nil)

		photo, err := f.svc.Confirm(ctx, "u1", "p1")
		require.NoError(t, err)
		assert.Equal(t, models.PhotoPending, photo.Status)
		f.safety.AssertNotCalled(t, "CreateVerification", mock.Anything, mock.Anything)
	})

	t.Run("verification selfie opens request", func(t *testing.T) {
		f := newPhotoFixture()
		f.photos.On("GetByID", mock.Anything, "p1").Return(uploading(models.PhotoVerification), nil)
		f.store.On("Exists", mock.Anything, "photos/u1/p1.jpg").Return(true, nil)
		f.photos.On("UpdateStatus", mock.Anything, "p1", models.PhotoUploading, models.PhotoPending).Return(nil)
		f.safety.On("CreateVerification", mock.Anything, mock.MatchedBy(func(v *models.Verification) bool {
			return v.UserID == "u1" && v.PhotoID == "p1" && v.Status == models.ReviewPending
		})).Return(nil).Once()

		_, err := f.svc.Confirm(ctx, "u1", "p1")
		require.NoError(t, err)
		f.safety.AssertExpectations(t)
	})
}

func TestPhotoService_Moderate(t *testing.T) {
	ctx := context.Background()
	pending := func() *models.Photo {
		return &models.Photo{ID: "p1", UserID: "u1", Status: models.PhotoPending}
	}

	t.Run("reject needs reason", func(t *testing.T) {
		f := newPhotoFixture()
		_, err := f.svc.Moderate(ctx, "mod", "p1", DecisionReject, "  ")
		assert.ErrorIs(t, err, ErrReasonRequired)
	})

	t.Run("unknown decision", func(t *testing.T) {
		f := newPhotoFixture()
		_, err := f.svc.Moderate(ctx, "mod", "p1", "later", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("verification selfie is not moderated here", func(t *testing.T) {
		f := newPhotoFixture()
		f.photos.On("GetByID", mock.Anything, "p1").
			Return(&models.Photo{ID: "p1", UserID: "u1", Kind: models.PhotoVerification, Status: models.PhotoPending}, nil)

		_, err := f.svc.Moderate(ctx, "mod", "p1", DecisionApprove, "")
		assert.ErrorIs(t, err, ErrPhotoNotFound)
		f.photos.AssertNotCalled(t, "Moderate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("only pending", func(t *testing.T) {
		f := newPhotoFixture()
		f.photos.On("GetByID", mock.Anything, "p1").
			Return(&models.Photo{ID: "p1", UserID: "u1", Status: models.PhotoApproved}, nil)

		_, err := f.svc.Moderate(ctx, "mod", "p1", DecisionApprove, "")
		assert.ErrorIs(t, err, ErrPhotoNotPending)
	})

	t.Run("lost race", func(t *testing.T) {
		f := newPhotoFixture()
		f.photos.On("GetByID", mock.Anything, "p1").Return(pending(), nil)
		f.photos.On("Moderate", mock.Anything, "p1", "mod", models.PhotoApproved, (*string)(nil)).
			Return(repository.ErrNotFound)

		_, err := f.svc.Moderate(ctx, "mod", "p1", DecisionApprove, "")
		assert.ErrorIs(t, err, ErrPhotoNotPending)
	})

	t.Run("reject notifies owner", func(t *testing.T) {
		f := newPhotoFixture()
		before := testutil.ToFloat64(metrics.PhotosModerated.WithLabelValues(DecisionReject))

		f.photos.On("GetByID", mock.Anything, "p1").Return(pending(), nil)
		f.photos.On("Moderate", mock.Anything, "p1", "mod", models.PhotoRejected, strPtr("blurry")).Return(nil)

		photo, err := f.svc.Moderate(ctx, "mod", "p1", DecisionReject, "blurry")
		require.NoError(t, err)
		assert.Equal(t, models.PhotoRejected, photo.Status)
		assert.Equal(t, "blurry", *photo.RejectionReason)

		require.Len(t, f.notifier.notified, 1)
		sent := f.notifier.notified[0]
		assert.Equal(t, "u1", sent.UserID)
		assert.Equal(t, MsgPhotoModerated, sent.Msg.Type)
		assert.Equal(t, "blurry", sent.Msg.Data.(map[string]string)["reason"])

		after := testutil.ToFloat64(metrics.PhotosModerated.WithLabelValues(DecisionReject))
		assert.Equal(t, before+1, after)
	})
}

func TestPhotoService_List(t *testing.T) {
	ctx := context.Background()
	f := newPhotoFixture()

	f.photos.On("ListByUser", mock.Anything, "u1", []models.PhotoStatus(nil), 100, 0).Return([]*models.Photo{
		{ID: "p1", ObjectKey: "photos/u1/p1.jpg", Status: models.PhotoApproved},
		{ID: "p2", ObjectKey: "photos/u1/p2.jpg", Status: models.PhotoUploading},
	}, 2, nil)
	f.store.On("PresignGet", mock.Anything, "photos/u1/p1.jpg", time.Hour).Return("https://cdn/p1", nil).Once()

	page, err := f.svc.List(ctx, "u1", 1000, -5)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Photos, 2)
	assert.Equal(t, "https://cdn/p1", page.Photos[0].URL)
	assert.Empty(t, page.Photos[1].URL)
	f.store.AssertExpectations(t)
}

func TestPhotoService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newPhotoFixture()

	f.photos.On("GetByID", mock.Anything, "p1").
		Return(&models.Photo{ID: "p1", UserID: "u1", ObjectKey: "photos/u1/p1.jpg"}, nil)
	f.store.On("Delete", mock.Anything, "photos/u1/p1.jpg").Return(nil).Once()
	f.photos.On("Delete", mock.Anything, "p1").Return(nil).Once()

	require.NoError(t, f.svc.Delete(ctx, "u1", "p1"))
	f.store.AssertExpectations(t)
	f.photos.AssertExpectations(t)
}

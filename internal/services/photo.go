package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"pulse-backend/internal/metrics"
	"pulse-backend/internal/models"
	"pulse-backend/internal/repository"
	"pulse-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const uploadURLExpiry = 5 * time.Minute

// allowedContentTypes maps accepted image types to object key extensions
var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// PhotoService handles photo uploads and moderation
type PhotoService struct {
	photos    PhotoStore
	safety    SafetyStore
	store     storage.ObjectStore
	notifier  Notifier
	maxPhotos int
	viewTTL   time.Duration
	now       func() time.Time
}

// NewPhotoService creates a new photo service
func NewPhotoService(
	photos PhotoStore,
	safety SafetyStore,
	store storage.ObjectStore,
	notifier Notifier,
	maxPhotos int,
	viewTTL time.Duration,
) *PhotoService {
	return &PhotoService{
		photos:    photos,
		safety:    safety,
		store:     store,
		notifier:  notifier,
		maxPhotos: maxPhotos,
		viewTTL:   viewTTL,
		now:       time.Now,
	}
}

// UploadRequest represents a request to get a pre-signed URL
type UploadRequest struct {
	Filename    string           `json:"filename" validate:"required,max=255"`
	ContentType string           `json:"content_type"`
	Kind        models.PhotoKind `json:"kind" validate:"omitempty,oneof=profile verification"`
}

// UploadResponse represents the response with pre-signed URL
type UploadResponse struct {
	PhotoID   string `json:"photo_id"`
	UploadURL string `json:"upload_url"`
	ExpiresIn int    `json:"expires_in"`
}

// PhotoPage is one page of photos
type PhotoPage struct {
	Photos []models.PhotoView `json:"photos"`
	Total  int                `json:"total"`
}

// RequestUpload registers a new photo and returns a pre-signed upload URL
func (s *PhotoService) RequestUpload(ctx context.Context, userID string, req UploadRequest) (*UploadResponse, error) {
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if contentType == "" {
		contentType = contentTypeFromName(req.Filename)
	}
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedMedia
	}

	kind := req.Kind
	if kind == "" {
		kind = models.PhotoProfile
	}

	photoID := uuid.New().String()
	photo := &models.Photo{
		ID:          photoID,
		UserID:      userID,
		Kind:        kind,
		ObjectKey:   fmt.Sprintf("photos/%s/%s%s", userID, photoID, ext),
		ContentType: contentType,
		Status:      models.PhotoUploading,
		CreatedAt:   s.now(),
	}

	url, err := s.store.PresignPut(ctx, photo.ObjectKey, contentType, uploadURLExpiry)
	if err != nil {
		return nil, err
	}

	if kind == models.PhotoProfile {
		err = s.photos.CreateWithinLimit(ctx, photo, s.maxPhotos)
	} else {
		err = s.photos.Create(ctx, photo)
	}
	if err != nil {
		if errors.Is(err, repository.ErrLimitReached) {
			return nil, ErrPhotoLimit
		}
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}

	log.Info().
		Str("user_id", userID).
		Str("photo_id", photoID).
		Str("kind", string(kind)).
		Msg("Pre-signed URL generated")

	return &UploadResponse{
		PhotoID:   photoID,
		UploadURL: url,
		ExpiresIn: int(uploadURLExpiry.Seconds()),
	}, nil
}

// Confirm marks an uploaded photo as ready for moderation. A verification
// selfie also opens a verification request.
func (s *PhotoService) Confirm(ctx context.Context, userID, photoID string) (*models.Photo, error) {
	photo, err := s.ownedPhoto(ctx, userID, photoID)
	if err != nil {
		return nil, err
	}
	if photo.Status != models.PhotoUploading {
		return nil, fmt.Errorf("photo already confirmed: %w", ErrPhotoNotPending)
	}

	exists, err := s.store.Exists(ctx, photo.ObjectKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUploadMissing
	}

	if err := s.photos.UpdateStatus(ctx, photoID, models.PhotoUploading, models.PhotoPending); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPhotoNotPending
		}
		return nil, err
	}
	photo.Status = models.PhotoPending

	if photo.Kind == models.PhotoVerification {
		v := &models.Verification{
			ID:        uuid.New().String(),
			UserID:    userID,
			PhotoID:   photoID,
			Status:    models.ReviewPending,
			CreatedAt: s.now(),
		}
		if err := s.safety.CreateVerification(ctx, v); err != nil {
			return nil, err
		}
		log.Info().Str("user_id", userID).Str("verification_id", v.ID).Msg("Verification requested")
	}

	return photo, nil
}

// List returns the caller's profile photos with view URLs, newest first
func (s *PhotoService) List(ctx context.Context, userID string, limit, offset int) (*PhotoPage, error) {
	limit, offset = pageBounds(limit, offset)

	photos, total, err := s.photos.ListByUser(ctx, userID, nil, limit, offset)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, photos)
	if err != nil {
		return nil, err
	}
	return &PhotoPage{Photos: views, Total: total}, nil
}

// Approved returns the approved profile photos of a user with view URLs
func (s *PhotoService) Approved(ctx context.Context, userID string) ([]models.PhotoView, error) {
	photos, _, err := s.photos.ListByUser(ctx, userID, []models.PhotoStatus{models.PhotoApproved}, s.maxPhotos, 0)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, photos)
}

// Delete removes the object and the photo record
func (s *PhotoService) Delete(ctx context.Context, userID, photoID string) error {
	photo, err := s.ownedPhoto(ctx, userID, photoID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, photo.ObjectKey); err != nil {
		return err
	}
	if err := s.photos.Delete(ctx, photoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPhotoNotFound
		}
		return err
	}

	log.Info().Str("user_id", userID).Str("photo_id", photoID).Msg("Photo deleted")
	return nil
}

// ListPending returns the moderation queue, oldest first
func (s *PhotoService) ListPending(ctx context.Context, limit, offset int) (*PhotoPage, error) {
	limit, offset = pageBounds(limit, offset)

	photos, total, err := s.photos.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, photos)
	if err != nil {
		return nil, err
	}
	return &PhotoPage{Photos: views, Total: total}, nil
}

// Moderate approves or rejects a pending photo and notifies its owner
func (s *PhotoService) Moderate(ctx context.Context, moderatorID, photoID, decision, reason string) (*models.Photo, error) {
	reason = strings.TrimSpace(reason)

	var status models.PhotoStatus
	var reasonPtr *string
	switch decision {
	case DecisionApprove:
		status = models.PhotoApproved
	case DecisionReject:
		if reason == "" {
			return nil, ErrReasonRequired
		}
		status = models.PhotoRejected
		reasonPtr = &reason
	default:
		return nil, ErrInvalidInput
	}

	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	if photo.Kind == models.PhotoVerification {
		// selfies are reviewed through their verification request
		return nil, ErrPhotoNotFound
	}
	if photo.Status != models.PhotoPending {
		return nil, ErrPhotoNotPending
	}

	if err := s.photos.Moderate(ctx, photoID, moderatorID, status, reasonPtr); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPhotoNotPending
		}
		return nil, err
	}

	now := s.now()
	photo.Status = status
	photo.RejectionReason = reasonPtr
	photo.ModeratedBy = &moderatorID
	photo.ModeratedAt = &now

	metrics.PhotosModerated.WithLabelValues(decision).Inc()

	data := map[string]string{"photo_id": photo.ID, "status": string(status)}
	if reasonPtr != nil {
		data["reason"] = reason
	}
	s.notifier.Notify(ctx, photo.UserID, WSMessage{
		Type:    MsgPhotoModerated,
		Message: "Your photo was " + string(status),
		Data:    data,
	})

	log.Info().
		Str("moderator_id", moderatorID).
		Str("photo_id", photoID).
		Str("decision", decision).
		Msg("Photo moderated")

	return photo, nil
}

func (s *PhotoService) ownedPhoto(ctx context.Context, userID, photoID string) (*models.Photo, error) {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	if photo.UserID != userID {
		return nil, ErrPhotoNotFound
	}
	return photo, nil
}

func (s *PhotoService) views(ctx context.Context, photos []*models.Photo) ([]models.PhotoView, error) {
	views := make([]models.PhotoView, 0, len(photos))
	for _, p := range photos {
		view := models.PhotoView{Photo: *p}
		if p.Status != models.PhotoUploading {
			url, err := s.store.PresignGet(ctx, p.ObjectKey, s.viewTTL)
			if err != nil {
				return nil, err
			}
			view.URL = url
		}
		views = append(views, view)
	}
	return views, nil
}

func contentTypeFromName(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	}
	return ""
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"pulse-backend/internal/models"
	"pulse-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ContactService handles contact requests and blocks
type ContactService struct {
	users    UserStore
	contacts ContactStore
	notifier Notifier
	now      func() time.Time
}

// NewContactService creates a new contact service
func NewContactService(users UserStore, contacts ContactStore, notifier Notifier) *ContactService {
	return &ContactService{
		users:    users,
		contacts: contacts,
		notifier: notifier,
		now:      time.Now,
	}
}

// Request sends a contact request to the user holding code. If that user
// already asked the caller, the pending request is accepted instead.
func (s *ContactService) Request(ctx context.Context, userID, code string) (*models.Contact, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	target, err := s.users.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if target.ID == userID {
		return nil, ErrSelfContact
	}
	if target.Status == models.UserSuspended {
		return nil, ErrUserNotFound
	}

	existing, err := s.contacts.GetBetween(ctx, userID, target.ID)
	switch {
	case err == nil:
		return s.resolveExisting(ctx, userID, existing)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	requester, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	contact := &models.Contact{
		ID:          uuid.New().String(),
		RequesterID: userID,
		AddresseeID: target.ID,
		Status:      models.ContactPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrContactExists
		}
		return nil, err
	}

	s.notifier.Notify(ctx, target.ID, WSMessage{
		Type:    MsgContactRequest,
		Message: requester.DisplayName + " wants to connect",
		Data: map[string]string{
			"contact_id":   contact.ID,
			"user_id":      requester.ID,
			"display_name": requester.DisplayName,
		},
	})

	log.Info().
		Str("user_id", userID).
		Str("addressee_id", target.ID).
		Str("contact_id", contact.ID).
		Msg("Contact requested")

	return contact, nil
}

func (s *ContactService) resolveExisting(ctx context.Context, userID string, c *models.Contact) (*models.Contact, error) {
	switch {
	case c.Status == models.ContactBlocked:
		return nil, ErrUserNotFound
	case c.Status == models.ContactAccepted:
		return nil, ErrContactExists
	case c.RequesterID == userID:
		return nil, ErrContactExists
	}
	return s.accept(ctx, c)
}

// List returns the caller's contacts in the given status with the other
// user's public card.
func (s *ContactService) List(ctx context.Context, userID string, status models.ContactStatus) ([]models.ContactView, error) {
	if status == "" {
		status = models.ContactAccepted
	}
	if status != models.ContactAccepted && status != models.ContactPending {
		return nil, ErrInvalidInput
	}

	contacts, err := s.contacts.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]models.ContactView, 0, len(contacts))
	for _, c := range contacts {
		other, err := s.users.GetByID(ctx, c.Other(userID))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		views = append(views, models.ContactView{Contact: *c, User: other.Public(now)})
	}
	return views, nil
}

// Accept accepts a pending request addressed to the caller
func (s *ContactService) Accept(ctx context.Context, userID, contactID string) (*models.Contact, error) {
	c, err := s.visibleContact(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}
	if c.Status != models.ContactPending {
		return nil, ErrNotPendingInvite
	}
	if c.AddresseeID != userID {
		return nil, ErrForbidden
	}
	return s.accept(ctx, c)
}

func (s *ContactService) accept(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	if err := s.contacts.UpdateStatus(ctx, c.ID, models.ContactAccepted); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	c.Status = models.ContactAccepted
	c.UpdatedAt = s.now()

	s.notifier.Notify(ctx, c.RequesterID, WSMessage{
		Type:    MsgContactAccepted,
		Message: "Your contact request was accepted",
		Data:    map[string]string{"contact_id": c.ID, "user_id": c.AddresseeID},
	})

	log.Info().Str("contact_id", c.ID).Msg("Contact accepted")
	return c, nil
}

// Remove declines, cancels or removes a contact. On a blocked pair it lifts
// the caller's own block only.
func (s *ContactService) Remove(ctx context.Context, userID, contactID string) error {
	c, err := s.visibleContact(ctx, userID, contactID)
	if err != nil {
		return err
	}

	if c.Status == models.ContactBlocked {
		err = s.contacts.Unblock(ctx, c.ID, userID)
	} else {
		err = s.contacts.Delete(ctx, c.ID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrContactNotFound
		}
		return err
	}
	log.Info().Str("user_id", userID).Str("contact_id", contactID).Msg("Contact removed")
	return nil
}

// Block blocks targetID for the caller, replacing any pending or accepted
// relationship. The result only ever carries the caller's own block.
func (s *ContactService) Block(ctx context.Context, userID, targetID string) (*models.Contact, error) {
	if targetID == userID {
		return nil, ErrSelfContact
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	existing, err := s.contacts.GetBetween(ctx, userID, targetID)
	switch {
	case err == nil:
		return s.block(ctx, userID, existing)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	now := s.now()
	contact := &models.Contact{
		ID:                 uuid.New().String(),
		RequesterID:        userID,
		AddresseeID:        targetID,
		Status:             models.ContactBlocked,
		BlockedByRequester: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		// the pair was created concurrently
		existing, err := s.contacts.GetBetween(ctx, userID, targetID)
		if err != nil {
			return nil, err
		}
		return s.block(ctx, userID, existing)
	}

	log.Info().Str("user_id", userID).Str("target_id", targetID).Msg("User blocked")
	return contact, nil
}

func (s *ContactService) block(ctx context.Context, userID string, c *models.Contact) (*models.Contact, error) {
	if !c.BlockedBy(userID) {
		updated, err := s.contacts.Block(ctx, c.ID, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrContactNotFound
			}
			return nil, err
		}
		c = updated
		log.Info().Str("user_id", userID).Str("target_id", c.Other(userID)).Msg("User blocked")
	}
	return c.ViewedBy(userID), nil
}

// visibleContact loads a contact the caller takes part in. A blocked pair is
// only visible to a user who blocks it.
func (s *ContactService) visibleContact(ctx context.Context, userID, contactID string) (*models.Contact, error) {
	c, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	if !c.Involves(userID) {
		return nil, ErrContactNotFound
	}
	if c.Status == models.ContactBlocked && !c.BlockedBy(userID) {
		return nil, ErrContactNotFound
	}
	return c.ViewedBy(userID), nil
}

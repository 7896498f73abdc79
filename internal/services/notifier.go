package services

import (
	"context"
	"errors"

	"pulse-backend/internal/push"

	"github.com/rs/zerolog/log"
)

// Notifier delivers realtime events to users
type Notifier interface {
	// Notify reaches a single user over websocket, falling back to push
	Notify(ctx context.Context, userID string, msg WSMessage)
	// Broadcast reaches the connected users among userIDs
	Broadcast(userIDs []string, msg WSMessage)
}

var pushTitles = map[string]string{
	MsgContactRequest:       "New contact request",
	MsgContactAccepted:      "Contact request accepted",
	MsgPhotoModerated:       "Photo reviewed",
	MsgVerificationReviewed: "Verification reviewed",
}

// HubNotifier sends through the websocket hub and uses push for offline users
type HubNotifier struct {
	hub    *WSHub
	users  UserStore
	pusher push.Pusher
}

// NewHubNotifier creates a notifier
func NewHubNotifier(hub *WSHub, users UserStore, pusher push.Pusher) *HubNotifier {
	return &HubNotifier{hub: hub, users: users, pusher: pusher}
}

// Notify implements Notifier
func (n *HubNotifier) Notify(ctx context.Context, userID string, msg WSMessage) {
	err := n.hub.SendToUser(userID, msg)
	if err == nil {
		return
	}
	if !errors.Is(err, ErrUserOffline) {
		log.Error().Err(err).Str("user_id", userID).Str("type", msg.Type).Msg("Failed to send websocket notification")
	}

	title, ok := pushTitles[msg.Type]
	if !ok {
		return
	}

	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load user for push")
		return
	}
	if user.PushToken == nil || *user.PushToken == "" {
		return
	}

	data := map[string]any{}
	if m, ok := msg.Data.(map[string]string); ok {
		for k, v := range m {
			data[k] = v
		}
	}

	err = n.pusher.Push(ctx, push.Notification{
		DeviceToken: *user.PushToken,
		Type:        msg.Type,
		Title:       title,
		Body:        msg.Message,
		Data:        data,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("type", msg.Type).Msg("Failed to send push notification")
		return
	}
	log.Debug().Str("user_id", userID).Str("type", msg.Type).Msg("Push notification sent")
}

// Broadcast implements Notifier
func (n *HubNotifier) Broadcast(userIDs []string, msg WSMessage) {
	n.hub.Broadcast(userIDs, msg)
}

// Package push delivers notifications to users who are not connected
// over websocket.
package push

import (
	"context"

	"pulse-backend/internal/config"
)

// Notification is a device-level alert
type Notification struct {
	DeviceToken string
	Type        string
	Title       string
	Body        string
	Data        map[string]any
}

// Pusher sends notifications to devices
type Pusher interface {
	Push(ctx context.Context, n Notification) error
}

// Noop discards every notification
type Noop struct{}

// Push implements Pusher
func (Noop) Push(context.Context, Notification) error { return nil }

// New returns an APNs pusher when push is enabled, otherwise Noop
func New(cfg config.PushConfig) (Pusher, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	return NewAPNsPusher(cfg)
}

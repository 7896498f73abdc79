package push

import (
	"context"
	"fmt"

	"pulse-backend/internal/config"
	"pulse-backend/internal/metrics"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// APNsPusher sends notifications through Apple Push Notification service
// using token-based (.p8) authentication.
type APNsPusher struct {
	client *apns2.Client
	topic  string
}

// NewAPNsPusher loads the signing key and creates an APNs client
func NewAPNsPusher(cfg config.PushConfig) (*APNsPusher, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	tkn := &token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	}

	client := apns2.NewTokenClient(tkn)
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsPusher{client: client, topic: cfg.Topic}, nil
}

// Push sends a single notification
func (p *APNsPusher) Push(ctx context.Context, n Notification) error {
	res, err := p.client.PushWithContext(ctx, buildNotification(p.topic, n))
	if err != nil {
		metrics.PushSent.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		metrics.PushSent.WithLabelValues("rejected").Inc()
		log.Warn().
			Int("status", res.StatusCode).
			Str("reason", res.Reason).
			Str("type", n.Type).
			Msg("APNs rejected notification")
		return fmt.Errorf("apns rejected notification: %d %s", res.StatusCode, res.Reason)
	}

	metrics.PushSent.WithLabelValues("sent").Inc()
	return nil
}

func buildNotification(topic string, n Notification) *apns2.Notification {
	p := payload.NewPayload().
		AlertTitle(n.Title).
		AlertBody(n.Body).
		Sound("default").
		Custom("type", n.Type)
	for k, v := range n.Data {
		p.Custom(k, v)
	}

	return &apns2.Notification{
		DeviceToken: n.DeviceToken,
		Topic:       topic,
		Payload:     p,
	}
}

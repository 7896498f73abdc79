package push

import (
	"context"
	"encoding/json"
	"testing"

	"pulse-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledReturnsNoop(t *testing.T) {
	p, err := New(config.PushConfig{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, p)
	assert.NoError(t, p.Push(context.Background(), Notification{DeviceToken: "abc"}))
}

func TestNew_MissingKey(t *testing.T) {
	_, err := New(config.PushConfig{Enabled: true, KeyPath: "/nonexistent/key.p8"})
	assert.Error(t, err)
}

func TestBuildNotification(t *testing.T) {
	n := buildNotification("com.example.pulse", Notification{
		DeviceToken: "device-1",
		Type:        "contact_request",
		Title:       "New contact request",
		Body:        "Alex wants to connect",
		Data:        map[string]any{"contact_id": "c1"},
	})

	assert.Equal(t, "device-1", n.DeviceToken)
	assert.Equal(t, "com.example.pulse", n.Topic)

	raw, err := json.Marshal(n.Payload)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "contact_request", body["type"])
	assert.Equal(t, "c1", body["contact_id"])

	aps := body["aps"].(map[string]any)
	alert := aps["alert"].(map[string]any)
	assert.Equal(t, "New contact request", alert["title"])
	assert.Equal(t, "Alex wants to connect", alert["body"])
}

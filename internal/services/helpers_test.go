package services

import (
	"context"
	"sync"
	"time"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type sentMessage struct {
	UserID string
	Msg    WSMessage
}

// recordingNotifier captures notifications instead of delivering them
type recordingNotifier struct {
	mu         sync.Mutex
	notified   []sentMessage
	broadcasts [][]string
	messages   []WSMessage
}

func (n *recordingNotifier) Notify(_ context.Context, userID string, msg WSMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, sentMessage{UserID: userID, Msg: msg})
}

func (n *recordingNotifier) Broadcast(userIDs []string, msg WSMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcasts = append(n.broadcasts, userIDs)
	n.messages = append(n.messages, msg)
}

func strPtr(s string) *string { return &s }

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"pulse-backend/internal/metrics"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Server and client message types
const (
	MsgHello                = "hello"
	MsgPing                 = "ping"
	MsgPong                 = "pong"
	MsgError                = "error"
	MsgContactRequest       = "contact_request"
	MsgContactAccepted      = "contact_accepted"
	MsgPhotoModerated       = "photo_moderated"
	MsgVerificationReviewed = "verification_reviewed"
	MsgRoomUpdated          = "room_updated"
	MsgRoomChat             = "room_chat"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	maxChatLength  = 500
)

// ErrUserOffline is returned when a user has no open connection
var ErrUserOffline = errors.New("user is not connected")

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp,omitempty"`
	RoomID    string `json:"room_id,omitempty"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// wsClient serializes writes to a single connection
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages WebSocket connections, one per user
type WSHub struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
	rooms   RoomStore
}

// NewWSHub creates a new WebSocket hub
func NewWSHub(rooms RoomStore) *WSHub {
	return &WSHub{
		clients: make(map[string]*wsClient),
		rooms:   rooms,
	}
}

// Register registers a connection for a user, closing any previous one
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.clients[userID]; ok {
		existing.conn.Close()
		log.Info().Str("user_id", userID).Msg("WebSocket connection replaced")
	}
	h.clients[userID] = &wsClient{conn: conn}
	metrics.WSConnections.Set(float64(len(h.clients)))

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes the user's connection if it is still conn
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[userID]
	if !ok || c.conn != conn {
		return
	}
	c.conn.Close()
	delete(h.clients, userID)
	metrics.WSConnections.Set(float64(len(h.clients)))

	log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	c, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return ErrUserOffline
	}

	if message.Timestamp == 0 {
		message.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := c.write(data); err != nil {
		h.Unregister(userID, c.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Broadcast sends a message to every connected user in userIDs
func (h *WSHub) Broadcast(userIDs []string, message WSMessage) {
	for _, id := range userIDs {
		if err := h.SendToUser(id, message); err != nil && !errors.Is(err, ErrUserOffline) {
			log.Error().Err(err).Str("user_id", id).Str("type", message.Type).Msg("Failed to broadcast message")
		}
	}
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// Serve registers conn for userID and processes client messages until the
// connection closes.
func (h *WSHub) Serve(ctx context.Context, userID string, conn *websocket.Conn) {
	h.Register(userID, conn)
	defer h.Unregister(userID, conn)

	conn.SetReadLimit(maxMessageSize)

	if err := h.SendToUser(userID, WSMessage{Type: MsgHello, Data: map[string]string{"user_id": userID}}); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send hello")
		return
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.sendError(userID, "Invalid message format")
			continue
		}

		if err := h.handleMessage(ctx, userID, msg); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Str("type", msg.Type).Msg("Failed to handle message")
			h.sendError(userID, err.Error())
		}
	}
}

func (h *WSHub) handleMessage(ctx context.Context, userID string, msg WSMessage) error {
	switch msg.Type {
	case MsgPing:
		return h.SendToUser(userID, WSMessage{Type: MsgPong})
	case MsgRoomChat:
		return h.roomChat(ctx, userID, msg)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// roomChat relays a chat line to every member of the room
func (h *WSHub) roomChat(ctx context.Context, userID string, msg WSMessage) error {
	if msg.RoomID == "" || msg.Message == "" {
		return fmt.Errorf("room_id and message are required")
	}
	if len(msg.Message) > maxChatLength {
		return fmt.Errorf("message is too long")
	}

	room, err := h.rooms.GetByID(ctx, msg.RoomID)
	if err != nil {
		return ErrRoomNotFound
	}
	if !room.IsMember(userID) {
		return ErrNotMember
	}

	h.Broadcast(room.MemberIDs(), WSMessage{
		Type:    MsgRoomChat,
		RoomID:  room.ID,
		Message: msg.Message,
		Data:    map[string]string{"user_id": userID},
	})
	return nil
}

func (h *WSHub) sendError(userID, message string) {
	if err := h.SendToUser(userID, WSMessage{Type: MsgError, Message: message}); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send error message")
	}
}

// Close closes every open connection
func (h *WSHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.mu.Unlock()
		c.conn.Close()
		delete(h.clients, id)
	}
	metrics.WSConnections.Set(0)
}

package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pulse-backend/internal/mocks"
	"pulse-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// startHub serves the hub over a test server; the user id comes from the query
func startHub(t *testing.T, rooms RoomStore) (*WSHub, string) {
	t.Helper()
	hub := NewWSHub(rooms)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(context.Background(), r.URL.Query().Get("user"), conn)
	}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url, userID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url+"?user="+userID, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	hello := readMessage(t, conn)
	require.Equal(t, MsgHello, hello.Type)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWSHub_PingPong(t *testing.T) {
	hub, url := startHub(t, new(mocks.MockRoomStore))
	conn := dial(t, url, "u1")

	assert.True(t, hub.IsOnline("u1"))

	require.NoError(t, conn.WriteJSON(WSMessage{Type: MsgPing}))
	pong := readMessage(t, conn)
	assert.Equal(t, MsgPong, pong.Type)
	assert.NotZero(t, pong.Timestamp)
}

func TestWSHub_UnknownType(t *testing.T) {
	_, url := startHub(t, new(mocks.MockRoomStore))
	conn := dial(t, url, "u1")

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "dance"}))
	msg := readMessage(t, conn)
	assert.Equal(t, MsgError, msg.Type)
	assert.Contains(t, msg.Message, "unknown message type")
}

func TestWSHub_RoomChat(t *testing.T) {
	rooms := new(mocks.MockRoomStore)
	rooms.On("GetByID", mock.Anything, "r1").Return(&models.Room{
		ID:      "r1",
		Members: []models.RoomMember{{UserID: "u1"}, {UserID: "u2"}},
	}, nil)

	_, url := startHub(t, rooms)
	alice := dial(t, url, "u1")
	bob := dial(t, url, "u2")
	eve := dial(t, url, "u3")

	require.NoError(t, alice.WriteJSON(WSMessage{Type: MsgRoomChat, RoomID: "r1", Message: "hi all"}))

	got := readMessage(t, bob)
	assert.Equal(t, MsgRoomChat, got.Type)
	assert.Equal(t, "r1", got.RoomID)
	assert.Equal(t, "hi all", got.Message)
	assert.Equal(t, map[string]any{"user_id": "u1"}, got.Data)

	echo := readMessage(t, alice)
	assert.Equal(t, MsgRoomChat, echo.Type)

	require.NoError(t, eve.WriteJSON(WSMessage{Type: MsgRoomChat, RoomID: "r1", Message: "let me in"}))
	denied := readMessage(t, eve)
	assert.Equal(t, MsgError, denied.Type)
	assert.Equal(t, ErrNotMember.Error(), denied.Message)
}

func TestWSHub_ReplacesConnection(t *testing.T) {
	hub, url := startHub(t, new(mocks.MockRoomStore))
	first := dial(t, url, "u1")
	second := dial(t, url, "u1")

	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := first.ReadMessage()
	assert.Error(t, err)

	require.NoError(t, hub.SendToUser("u1", WSMessage{Type: MsgRoomUpdated, RoomID: "r1"}))
	msg := readMessage(t, second)
	assert.Equal(t, MsgRoomUpdated, msg.Type)
	assert.True(t, hub.IsOnline("u1"))
}

func TestWSHub_SendToOffline(t *testing.T) {
	hub := NewWSHub(new(mocks.MockRoomStore))
	err := hub.SendToUser("ghost", WSMessage{Type: MsgPing})
	assert.ErrorIs(t, err, ErrUserOffline)
}

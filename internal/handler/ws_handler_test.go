package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/app/chat"
	"pairchat/internal/app/store"
	"pairchat/internal/app/user"
	"pairchat/internal/pkg/auth/jwt"
)

func identityToken(t *testing.T, u user.User) string {
	t.Helper()

	token, err := jwt.GenerateToken(&jwt.Payload{ID: u.ID, Name: u.Name}, testJWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func wsDial(srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	return websocket.DefaultDialer.Dial(url, nil)
}

func mustDial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	conn, _, err := wsDial(srv, token)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendText(t *testing.T, conn *websocket.Conn, receiverID, text string) {
	t.Helper()

	payload, err := json.Marshal(chat.SendPayload{ReceiverID: receiverID, Text: text})
	require.NoError(t, err)

	frame, err := json.Marshal(chat.Envelope{Type: chat.TypeSendMessage, Payload: payload})
	require.NoError(t, err)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func readMessageEvent(t *testing.T, conn *websocket.Conn) store.Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var envelope chat.Envelope
	require.NoError(t, json.Unmarshal(frame, &envelope))
	require.Equal(t, chat.TypeReceiveMessage, envelope.Type, "frame: %s", frame)

	var m store.Message
	require.NoError(t, json.Unmarshal(envelope.Payload, &m))
	return m
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	srv, _, _ := newTestServer(t)

	conn, res, err := wsDial(srv, "")
	require.Error(t, err)
	require.Nil(t, conn)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestWebSocketRejectsInvalidToken(t *testing.T) {
	srv, _, _ := newTestServer(t)

	conn, res, err := wsDial(srv, "not-a-real-token")
	require.Error(t, err)
	require.Nil(t, conn)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestWebSocketRejectsExpiredToken(t *testing.T) {
	srv, st, _ := newTestServer(t)
	alice := st.mustAddUser(t, "Alice", "1000001", "alice@example.com")

	expired, err := jwt.GenerateToken(&jwt.Payload{ID: alice.ID}, testJWTSecret, -time.Minute)
	require.NoError(t, err)

	conn, res, dialErr := wsDial(srv, expired)
	require.Error(t, dialErr)
	require.Nil(t, conn)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestConnectRecordsPresenceAndDisconnectClearsIt(t *testing.T) {
	srv, st, presence := newTestServer(t)
	alice := st.mustAddUser(t, "Alice", "1000001", "alice@example.com")

	conn := mustDial(t, srv, identityToken(t, alice))

	waitFor(t, "presence entry after connect", func() bool {
		_, ok := presence.Lookup(alice.ID)
		return ok
	})

	conn.Close()

	waitFor(t, "presence entry cleared after disconnect", func() bool {
		_, ok := presence.Lookup(alice.ID)
		return !ok
	})
}

func TestSendMessageDeliveredToReceiverAndEchoedToSender(t *testing.T) {
	srv, st, presence := newTestServer(t)
	alice := st.mustAddUser(t, "Alice", "1000001", "alice@example.com")
	bob := st.mustAddUser(t, "Bob", "1000002", "bob@example.com")

	aliceConn := mustDial(t, srv, identityToken(t, alice))
	bobConn := mustDial(t, srv, identityToken(t, bob))

	waitFor(t, "both users online", func() bool {
		_, aOK := presence.Lookup(alice.ID)
		_, bOK := presence.Lookup(bob.ID)
		return aOK && bOK
	})

	sendText(t, aliceConn, bob.ID, "hi")

	received := readMessageEvent(t, bobConn)
	echoed := readMessageEvent(t, aliceConn)

	assert.Equal(t, received, echoed, "receiver push and sender echo carry the identical record")
	assert.Equal(t, alice.ID, received.SenderID)
	assert.Equal(t, bob.ID, received.ReceiverID)
	assert.Equal(t, "hi", received.Text)
	assert.NotEmpty(t, received.ID)
	assert.False(t, received.CreatedAt.IsZero())
}

func TestOfflineReceiverMessageIsRetrievableViaHistory(t *testing.T) {
	srv, st, presence := newTestServer(t)
	alice := st.mustAddUser(t, "Alice", "1000001", "alice@example.com")
	bob := st.mustAddUser(t, "Bob", "1000002", "bob@example.com")

	aliceConn := mustDial(t, srv, identityToken(t, alice))

	waitFor(t, "alice online", func() bool {
		_, ok := presence.Lookup(alice.ID)
		return ok
	})

	sendText(t, aliceConn, bob.ID, "are you there?")

	echoed := readMessageEvent(t, aliceConn)
	assert.Equal(t, "are you there?", echoed.Text)

	res, parsed := getThread(t, srv.URL, alice.ID, bob.ID)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, parsed.Data, 1)
	assert.Equal(t, echoed.ID, parsed.Data[0].ID)
}

func TestPerConnectionSendOrderIsPreserved(t *testing.T) {
	srv, st, presence := newTestServer(t)
	alice := st.mustAddUser(t, "Alice", "1000001", "alice@example.com")
	bob := st.mustAddUser(t, "Bob", "1000002", "bob@example.com")

	aliceConn := mustDial(t, srv, identityToken(t, alice))
	bobConn := mustDial(t, srv, identityToken(t, bob))

	waitFor(t, "both users online", func() bool {
		_, aOK := presence.Lookup(alice.ID)
		_, bOK := presence.Lookup(bob.ID)
		return aOK && bOK
	})

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		sendText(t, aliceConn, bob.ID, text)
	}

	for _, want := range texts {
		got := readMessageEvent(t, bobConn)
		assert.Equal(t, want, got.Text)
	}
}

func TestStaleDisconnectDoesNotClearNewPresence(t *testing.T) {
	srv, st, presence := newTestServer(t)
	alice := st.mustAddUser(t, "Alice", "1000001", "alice@example.com")
	token := identityToken(t, alice)

	oldConn := mustDial(t, srv, token)

	waitFor(t, "first connection online", func() bool {
		_, ok := presence.Lookup(alice.ID)
		return ok
	})
	firstConn, _ := presence.Lookup(alice.ID)
	firstID := firstConn.ConnectionID()

	// Reconnect as the same identity; the registry entry is superseded.
	newConn := mustDial(t, srv, token)
	defer newConn.Close()

	waitFor(t, "presence superseded by reconnect", func() bool {
		conn, ok := presence.Lookup(alice.ID)
		return ok && conn.ConnectionID() != firstID
	})
	secondConn, _ := presence.Lookup(alice.ID)
	secondID := secondConn.ConnectionID()

	// Now the old connection's disconnect handler runs. It must not erase the
	// new connection's entry.
	oldConn.Close()
	time.Sleep(200 * time.Millisecond)

	conn, ok := presence.Lookup(alice.ID)
	require.True(t, ok, "user must remain online through the stale disconnect")
	assert.Equal(t, secondID, conn.ConnectionID())
}

package handler

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"groupchat/internal/app/chat"
	"groupchat/internal/app/store"
)

func wsURL(server *httptest.Server, name string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?name=" + name
}

func dialClient(t *testing.T, server *httptest.Server, name string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, name), nil)
	if err != nil {
		t.Fatalf("failed to dial websocket as %s: %v", name, err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func writeEvent(t *testing.T, conn *websocket.Conn, eventType chat.EventType, payload string) {
	t.Helper()

	env := chat.Envelope{
		Type:    eventType,
		Payload: json.RawMessage(payload),
	}
	if err := conn.WriteJSON(env); err != nil {
		t.Fatalf("failed to write %s event: %v", eventType, err)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) chat.Envelope {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("failed to set read deadline: %v", err)
	}

	var env chat.Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("failed to read envelope: %v", err)
	}

	return env
}

func joinRoom(t *testing.T, conn *websocket.Conn, roomID string) []store.Message {
	t.Helper()

	writeEvent(t, conn, chat.EventJoinRoom, fmt.Sprintf(`{"roomId":%q}`, roomID))

	env := readEnvelope(t, conn)
	if env.Type != chat.EventTranscript {
		t.Fatalf("join reply type = %s, want %s", env.Type, chat.EventTranscript)
	}

	var payload chat.TranscriptPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("invalid transcript payload: %v", err)
	}

	return payload.Messages
}

func readBroadcast(t *testing.T, conn *websocket.Conn) store.Message {
	t.Helper()

	env := readEnvelope(t, conn)
	if env.Type != chat.EventBroadcast {
		t.Fatalf("envelope type = %s, want %s", env.Type, chat.EventBroadcast)
	}

	var payload chat.BroadcastPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("invalid broadcast payload: %v", err)
	}

	return payload.Message
}

// TestWebSocketRejectsMissingName verifies that a connection without an
// author name is refused before the upgrade.
func TestWebSocketRejectsMissingName(t *testing.T) {
	server := httptest.NewServer(Router(newTestDeps()))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		conn.Close()
		t.Fatal("dial without name succeeded, want handshake failure")
	}
}

// TestWebSocketChatScenario walks the full room lifecycle: two members join
// an empty room, one sends a message, both receive the broadcast, and a fresh
// join sees the complete ordered history.
func TestWebSocketChatScenario(t *testing.T) {
	server := httptest.NewServer(Router(newTestDeps()))
	defer server.Close()

	x := dialClient(t, server, "X")
	transcript := joinRoom(t, x, "general")
	if len(transcript) != 1 {
		t.Fatalf("X transcript has %d messages, want 1", len(transcript))
	}
	if transcript[0].Author != store.SystemAuthor {
		t.Errorf("X transcript[0].Author = %q, want %q", transcript[0].Author, store.SystemAuthor)
	}

	y := dialClient(t, server, "Y")
	transcript = joinRoom(t, y, "general")
	if len(transcript) != 1 {
		t.Fatalf("Y transcript has %d messages, want 1", len(transcript))
	}

	writeEvent(t, x, chat.EventSendMessage, `{"roomId":"general","message":"hello"}`)

	for name, conn := range map[string]*websocket.Conn{"X": x, "Y": y} {
		msg := readBroadcast(t, conn)
		if msg.Author != "X" || msg.Body != "hello" {
			t.Errorf("%s received {%s, %s}, want {X, hello}", name, msg.Author, msg.Body)
		}
	}

	z := dialClient(t, server, "Z")
	transcript = joinRoom(t, z, "general")
	if len(transcript) != 2 {
		t.Fatalf("Z transcript has %d messages, want 2", len(transcript))
	}
	if transcript[0].Author != store.SystemAuthor {
		t.Errorf("Z transcript[0].Author = %q, want creation message first", transcript[0].Author)
	}
	if transcript[1].Author != "X" || transcript[1].Body != "hello" {
		t.Errorf("Z transcript[1] = {%s, %s}, want {X, hello}", transcript[1].Author, transcript[1].Body)
	}
}

// TestWebSocketLeaveStopsDelivery verifies that an explicit leave removes the
// member from fan-out while other members keep receiving.
func TestWebSocketLeaveStopsDelivery(t *testing.T) {
	server := httptest.NewServer(Router(newTestDeps()))
	defer server.Close()

	stays := dialClient(t, server, "stays")
	joinRoom(t, stays, "general")

	leaves := dialClient(t, server, "leaves")
	joinRoom(t, leaves, "general")

	writeEvent(t, leaves, chat.EventLeaveRoom, `{"roomId":"general"}`)

	// The leave and the send race through independent connections; the send
	// goes last from the remaining member after a short settle.
	time.Sleep(100 * time.Millisecond)

	writeEvent(t, stays, chat.EventSendMessage, `{"roomId":"general","message":"still here"}`)

	msg := readBroadcast(t, stays)
	if msg.Body != "still here" {
		t.Errorf("remaining member received %q, want %q", msg.Body, "still here")
	}

	if err := leaves.SetReadDeadline(time.Now().Add(300 * time.Millisecond)); err != nil {
		t.Fatalf("failed to set read deadline: %v", err)
	}
	var env chat.Envelope
	if err := leaves.ReadJSON(&env); err == nil {
		t.Errorf("departed member received %s envelope after leaving", env.Type)
	}
}

// TestWebSocketRestrictedSendOnlyErrorsSender verifies that a restricted
// message yields an ERROR envelope for the sender and nothing for the room.
func TestWebSocketRestrictedSendOnlyErrorsSender(t *testing.T) {
	server := httptest.NewServer(Router(newTestDeps()))
	defer server.Close()

	sender := dialClient(t, server, "sender")
	joinRoom(t, sender, "general")

	other := dialClient(t, server, "other")
	joinRoom(t, other, "general")

	writeEvent(t, sender, chat.EventSendMessage, `{"roomId":"general","message":"h m m"}`)

	env := readEnvelope(t, sender)
	if env.Type != chat.EventError {
		t.Fatalf("sender received %s, want %s", env.Type, chat.EventError)
	}

	if err := other.SetReadDeadline(time.Now().Add(300 * time.Millisecond)); err != nil {
		t.Fatalf("failed to set read deadline: %v", err)
	}
	var leaked chat.Envelope
	if err := other.ReadJSON(&leaked); err == nil {
		t.Errorf("other member received %s envelope for a restricted message", leaked.Type)
	}
}

// TestWebSocketDisconnectSweepsMembership verifies that closing a connection
// without a leave removes it from the room and delivery continues for others.
func TestWebSocketDisconnectSweepsMembership(t *testing.T) {
	deps := newTestDeps()
	server := httptest.NewServer(Router(deps))
	defer server.Close()

	stays := dialClient(t, server, "stays")
	joinRoom(t, stays, "general")

	drops := dialClient(t, server, "drops")
	joinRoom(t, drops, "general")

	drops.Close()

	// Wait for the server-side read pump to observe the close and sweep.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(deps.Hub.Registry().MembersOf("general")) == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if got := len(deps.Hub.Registry().MembersOf("general")); got != 1 {
		t.Fatalf("room has %d members after disconnect, want 1", got)
	}

	writeEvent(t, stays, chat.EventSendMessage, `{"roomId":"general","message":"anyone"}`)

	msg := readBroadcast(t, stays)
	if msg.Body != "anyone" {
		t.Errorf("remaining member received %q, want %q", msg.Body, "anyone")
	}
}

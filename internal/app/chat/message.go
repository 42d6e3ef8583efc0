/*
Package chat contains the core logic for room membership, message fan-out, and transcript assembly.

This file defines the wire envelope exchanged over the WebSocket transport and
the payload types it carries in each direction.
*/
package chat

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"groupchat/internal/app/store"
)

// EventType identifies the kind of envelope on the wire.
type EventType string

// Inbound event types (client to server).
const (
	EventJoinRoom    EventType = "JOIN_ROOM"
	EventLeaveRoom   EventType = "LEAVE_ROOM"
	EventSendMessage EventType = "SEND_MESSAGE"
)

// Outbound event types (server to client).
const (
	EventTranscript EventType = "TRANSCRIPT"
	EventBroadcast  EventType = "BROADCAST_MESSAGE"
	EventError      EventType = "ERROR"
)

// Envelope is the framing for every WebSocket message in both directions.
type Envelope struct {
	ID      string          `json:"id,omitempty"`
	Type    EventType       `json:"type"`
	RoomID  string          `json:"roomId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope constructs an outbound envelope with a fresh message ID and the
// marshaled payload.
func NewEnvelope(eventType EventType, roomID string, payload any) (Envelope, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return Envelope{
		ID:      uuid.New().String(),
		Type:    eventType,
		RoomID:  roomID,
		Payload: encoded,
	}, nil
}

// RoomPayload is the inbound payload for JOIN_ROOM and LEAVE_ROOM.
type RoomPayload struct {
	RoomID string `json:"roomId"`
}

// SendPayload is the inbound payload for SEND_MESSAGE.
type SendPayload struct {
	RoomID string `json:"roomId"`
	Body   string `json:"message"`
}

// TranscriptPayload carries the assembled room history sent on join.
type TranscriptPayload struct {
	Messages []store.Message `json:"messages"`
}

// BroadcastPayload carries a single newly stored message fanned out to a room.
type BroadcastPayload struct {
	Message store.Message `json:"message"`
}

// ErrorPayload reports an error to a single client.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

/*
Package chat contains the core logic for room membership, message fan-out, and transcript assembly.

This file defines the Client struct, representing an active WebSocket connection. It manages the
client's lifecycle, the read and write pumps, and the handling of inbound join/leave/send events.
*/
package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"groupchat/internal/pkg/errs"
	"groupchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	// capacity of the per-client outbound queue.
	sendQueueSize = 256
)

// Client represents an active WebSocket connection and the author name it
// speaks as. Author names are user-supplied and not unique: two connections
// using the same name share one author log.
type Client struct {
	// hub coordinates sends and fan-out across rooms.
	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// name is the author name supplied at connect time.
	name string

	// a buffered channel used to queue frames waiting to be sent to the client.
	send chan []byte

	// closeOnce guards the send channel against double close.
	closeOnce sync.Once

	// structured logger with client context.
	logger zerolog.Logger
}

// NewClient constructs and returns a new Client instance.
func NewClient(hub *Hub, wsConn *websocket.Conn, name string) *Client {
	clientLogger := logx.Logger().With().
		Str("client_name", name).
		Logger()

	return &Client{
		hub:    hub,
		conn:   wsConn,
		name:   name,
		send:   make(chan []byte, sendQueueSize),
		logger: clientLogger,
	}
}

// ReadPump handles reading messages from the WebSocket connection.
// It handles heartbeats (Pong), event dispatch, and performs cleanup upon connection closure.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.processInboundEvent(frame)
	}
}

// cleanupOnDisconnect handles the necessary cleanup steps when the client's ReadPump terminates.
// The registry sweep runs first so no subsequent broadcast observes the dead connection.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.Registry().Disconnect(c)

	c.closeSend()

	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Client connection close error")
	}
}

// processInboundEvent handles raw frames received from the client.
func (c *Client) processInboundEvent(frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		c.logger.Warn().Err(err).
			Bytes("frame", frame).
			Msg("Client sent invalid JSON")
		return
	}

	switch env.Type {
	case EventJoinRoom:
		c.handleJoin(env.Payload)

	case EventLeaveRoom:
		c.handleLeave(env.Payload)

	case EventSendMessage:
		c.handleSend(env.Payload)

	default:
		c.logger.Warn().Str("event_type", string(env.Type)).Msg("Client sent unsupported event type")
	}
}

// handleJoin replies with the room's assembled transcript, then registers the
// connection as a member. A message broadcast between the transcript fetch and
// the registration can arrive twice (transcript and live) or only in the next
// transcript fetch; delivery across the join window is at-least-once and
// clients render duplicates as-is.
func (c *Client) handleJoin(payload json.RawMessage) {
	var join RoomPayload
	if err := json.Unmarshal(payload, &join); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JOIN_ROOM payload")
		c.SendError("", errs.NewError(errs.ErrInvalidParams))
		return
	}

	if join.RoomID == "" {
		c.SendError("", errs.NewError(errs.ErrRoomIDMissing))
		return
	}

	transcript, customErr := c.hub.Transcript(context.Background(), join.RoomID)
	if customErr != nil {
		c.SendError(join.RoomID, customErr)
		return
	}

	env, err := NewEnvelope(EventTranscript, join.RoomID, TranscriptPayload{Messages: transcript})
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build TRANSCRIPT envelope.")
		c.SendError(join.RoomID, errs.NewError(errs.ErrUnknown))
		return
	}

	// Membership starts before the transcript frame is queued: once the
	// client has its history in hand it is already receiving live fan-out.
	// The fetch above still precedes the join, so the at-least-once window
	// documented on Hub.Send applies.
	c.hub.Registry().Join(c, join.RoomID)

	if err := c.sendEnvelope(env); err != nil {
		c.logger.Error().Err(err).Msg("Failed to send TRANSCRIPT envelope.")
	}
}

// handleLeave removes the connection from the room's member set.
func (c *Client) handleLeave(payload json.RawMessage) {
	var leave RoomPayload
	if err := json.Unmarshal(payload, &leave); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid LEAVE_ROOM payload")
		return
	}

	if leave.RoomID == "" {
		c.SendError("", errs.NewError(errs.ErrRoomIDMissing))
		return
	}

	c.hub.Registry().Leave(c, leave.RoomID)
}

// handleSend runs the full send pipeline for an inbound message. Restricted
// content is dropped silently for everyone but the sender, who alone receives
// an ERROR envelope.
func (c *Client) handleSend(payload json.RawMessage) {
	var send SendPayload
	if err := json.Unmarshal(payload, &send); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid SEND_MESSAGE payload")
		c.SendError("", errs.NewError(errs.ErrInvalidParams))
		return
	}

	if send.RoomID == "" {
		c.SendError("", errs.NewError(errs.ErrRoomIDMissing))
		return
	}

	if _, customErr := c.hub.Send(context.Background(), send.RoomID, c.name, send.Body); customErr != nil {
		c.SendError(send.RoomID, customErr)
	}
}

// WritePump handles writing frames from the Client.send channel to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame handles frames pulled from the send channel, writing them to the WebSocket.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Error().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// enqueue attempts a non-blocking hand-off of the frame to the write pump.
// It returns false when the queue is full; the caller decides what to drop.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// sendEnvelope marshals the envelope and queues it for the write pump.
func (c *Client) sendEnvelope(env Envelope) error {
	frame, err := json.Marshal(env)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling envelope for client")
		return err
	}

	if !c.enqueue(frame) {
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping envelope")
		return errs.NewError(errs.ErrUnknown)
	}

	return nil
}

// SendError constructs and sends an ERROR envelope to this client only.
func (c *Client) SendError(roomID string, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	env, err := NewEnvelope(EventError, roomID, ErrorPayload{
		Code:    customErr.Code,
		Message: customErr.Message,
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build ERROR envelope.")
		return
	}

	if err := c.sendEnvelope(env); err != nil {
		c.logger.Error().Err(err).Msg("Failed to queue ERROR envelope")
	}
}

// closeSend closes the outbound queue exactly once, ending the write pump.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

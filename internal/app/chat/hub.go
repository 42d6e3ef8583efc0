/*
Package chat contains the core logic for room membership, message fan-out, and transcript assembly.

This file defines the Hub, which wires the content guard, the message store,
and the registry into the send pipeline: validate, persist, then fan out to
every live member of the target room.
*/
package chat

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"groupchat/internal/app/store"
	"groupchat/internal/pkg/errs"
	"groupchat/internal/pkg/logx"
)

// Hub coordinates message sends and broadcasts across rooms.
type Hub struct {
	registry *Registry
	store    *store.MessageStore

	// sendLocks serializes the persist-then-broadcast step per room, so that
	// broadcast initiation order always matches persistence order within a
	// room. Sends to different rooms proceed independently.
	mu        sync.Mutex
	sendLocks map[string]*sync.Mutex

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs a Hub around the given registry and message store.
func NewHub(registry *Registry, messageStore *store.MessageStore) *Hub {
	hubLogger := logx.Logger().With().Str("component", "Hub").Logger()

	return &Hub{
		registry:  registry,
		store:     messageStore,
		sendLocks: make(map[string]*sync.Mutex),
		logger:    hubLogger,
	}
}

// Registry exposes the membership registry the Hub fans out through.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Send runs the full pipeline for a new message: content guard, durable
// append, then broadcast to every current member of the room (including the
// sender's own connection, if joined). Restricted content is rejected with
// ErrRestrictedContent before anything is persisted; storage failures surface
// as ErrStoreUnavailable and nothing is broadcast.
func (h *Hub) Send(ctx context.Context, roomID string, author string, body string) (store.Message, *errs.CustomError) {
	if IsRestricted(body) {
		h.logger.Debug().Str("room_id", roomID).Str("author", author).Msg("Message dropped by content guard.")
		return store.Message{}, errs.NewError(errs.ErrRestrictedContent)
	}

	lock := h.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	msg, customErr := h.store.Append(ctx, roomID, author, body)
	if customErr != nil {
		return store.Message{}, customErr
	}

	h.Broadcast(roomID, msg)

	return msg, nil
}

// Broadcast delivers the message to every connection currently joined to the
// room. Delivery is send-and-forget: a member whose outbound queue is full is
// skipped so a slow connection never delays the rest; there is no retry.
// Connections that join after this call catch up via the transcript instead.
func (h *Hub) Broadcast(roomID string, msg store.Message) {
	env, err := NewEnvelope(EventBroadcast, roomID, BroadcastPayload{Message: msg})
	if err != nil {
		h.logger.Error().Err(err).Str("room_id", roomID).Msg("Failed to build broadcast envelope.")
		return
	}

	frame, err := json.Marshal(env)
	if err != nil {
		h.logger.Error().Err(err).Str("room_id", roomID).Msg("Failed to marshal broadcast envelope.")
		return
	}

	for _, client := range h.registry.MembersOf(roomID) {
		if !client.enqueue(frame) {
			h.logger.Warn().
				Str("room_id", roomID).
				Str("client_name", client.name).
				Msg("Client send queue full, skipping delivery.")
		}
	}
}

// Transcript fetches every author log of the room and assembles the
// chronologically ordered history. Addressing a fresh room creates it, so the
// result always contains at least the system creation message.
func (h *Hub) Transcript(ctx context.Context, roomID string) ([]store.Message, *errs.CustomError) {
	logs, customErr := h.store.ListAuthorLogs(ctx, roomID)
	if customErr != nil {
		return nil, customErr
	}

	return Assemble(logs), nil
}

// roomLock returns the send lock for the room, creating it on first use.
func (h *Hub) roomLock(roomID string) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()

	lock, ok := h.sendLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		h.sendLocks[roomID] = lock
	}

	return lock
}

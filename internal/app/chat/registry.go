/*
Package chat contains the core logic for room membership, message fan-out, and transcript assembly.

This file defines the Registry, the single owner of the mapping between rooms
and live connections. A connection may be joined to several rooms at once;
disconnecting removes it from every room it had joined.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"groupchat/internal/pkg/logx"
)

// Registry tracks which live connections currently belong to which room.
// All methods are safe for concurrent use.
type Registry struct {
	// mu protects both maps below.
	mu sync.RWMutex

	// rooms maps room ID to the set of member connections.
	rooms map[string]map[*Client]struct{}

	// joined maps each connection to the set of rooms it is a member of.
	joined map[*Client]map[string]struct{}

	// structured logger with Registry context.
	logger zerolog.Logger
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	registryLogger := logx.Logger().With().Str("component", "Registry").Logger()

	return &Registry{
		rooms:  make(map[string]map[*Client]struct{}),
		joined: make(map[*Client]map[string]struct{}),
		logger: registryLogger,
	}
}

// Join adds the client to the room's member set. Joining a room the client is
// already a member of is a no-op. Joining a second room does not leave the first.
func (reg *Registry) Join(client *Client, roomID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	members, ok := reg.rooms[roomID]
	if !ok {
		members = make(map[*Client]struct{})
		reg.rooms[roomID] = members
	}

	if _, already := members[client]; already {
		return
	}

	members[client] = struct{}{}

	rooms, ok := reg.joined[client]
	if !ok {
		rooms = make(map[string]struct{})
		reg.joined[client] = rooms
	}
	rooms[roomID] = struct{}{}

	reg.logger.Info().
		Str("room_id", roomID).
		Int("total_members", len(members)).
		Msg("Client joined room.")
}

// Leave removes the client from the room's member set. A no-op if the client
// is not a member.
func (reg *Registry) Leave(client *Client, roomID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	reg.removeLocked(client, roomID)
}

// Disconnect removes the client from every room it had joined. It runs on
// connection termination, whether or not the client sent an explicit leave,
// so no subsequent broadcast attempts delivery to a dead connection.
func (reg *Registry) Disconnect(client *Client) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for roomID := range reg.joined[client] {
		reg.removeLocked(client, roomID)
	}
}

// removeLocked removes the membership entry in both directions.
// Callers must hold mu.
func (reg *Registry) removeLocked(client *Client, roomID string) {
	members, ok := reg.rooms[roomID]
	if !ok {
		return
	}

	if _, member := members[client]; !member {
		return
	}

	delete(members, client)
	if len(members) == 0 {
		delete(reg.rooms, roomID)
	}

	if rooms, ok := reg.joined[client]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(reg.joined, client)
		}
	}

	reg.logger.Info().
		Str("room_id", roomID).
		Int("total_members", len(members)).
		Msg("Client left room.")
}

// MembersOf returns a snapshot of the room's current member connections.
func (reg *Registry) MembersOf(roomID string) []*Client {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	members := make([]*Client, 0, len(reg.rooms[roomID]))
	for client := range reg.rooms[roomID] {
		members = append(members, client)
	}

	return members
}

// RoomsOf returns a snapshot of the rooms the client is currently joined to.
func (reg *Registry) RoomsOf(client *Client) []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	rooms := make([]string, 0, len(reg.joined[client]))
	for roomID := range reg.joined[client] {
		rooms = append(rooms, roomID)
	}

	return rooms
}

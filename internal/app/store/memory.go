/*
Package store implements durable, per-room, per-author message persistence.

This file provides the in-process DocumentStore backend. It backs the server
in development when no database DSN is configured, and the package tests.
*/
package store

import (
	"context"
	"sync"
)

// MemoryStore is a DocumentStore held entirely in process memory.
// All operations are safe for concurrent use.
type MemoryStore struct {
	mu sync.RWMutex

	// rooms maps room ID to author name to that author's document.
	rooms map[string]map[string]*AuthorDoc
}

// NewMemoryStore constructs an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]map[string]*AuthorDoc),
	}
}

// CreateDoc writes doc under (roomID, doc.Name) only if absent.
func (m *MemoryStore) CreateDoc(ctx context.Context, roomID string, doc AuthorDoc) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		room = make(map[string]*AuthorDoc)
		m.rooms[roomID] = room
	}

	if _, exists := room[doc.Name]; exists {
		return false, nil
	}

	stored := AuthorDoc{
		Name:     doc.Name,
		Messages: append([]StoredMessage(nil), doc.Messages...),
	}
	room[doc.Name] = &stored

	return true, nil
}

// AppendMessage appends msg to the existing document for (roomID, author).
func (m *MemoryStore) AppendMessage(ctx context.Context, roomID string, author string, msg StoredMessage) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return false, nil
	}

	doc, ok := room[author]
	if !ok {
		return false, nil
	}

	doc.Messages = append(doc.Messages, msg)
	return true, nil
}

// ListDocs returns copies of every author document stored under roomID.
func (m *MemoryStore) ListDocs(ctx context.Context, roomID string) ([]AuthorDoc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return nil, nil
	}

	docs := make([]AuthorDoc, 0, len(room))
	for _, doc := range room {
		docs = append(docs, AuthorDoc{
			Name:     doc.Name,
			Messages: append([]StoredMessage(nil), doc.Messages...),
		})
	}

	return docs, nil
}

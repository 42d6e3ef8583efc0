/*
Package store implements durable, per-room, per-author message persistence.

This file defines the MessageStore, the business-level append log built on top
of a DocumentStore collaborator. Rooms are created implicitly the first time
they are addressed, recording a synthetic system message; Append and
ListAuthorLogs share that path so a room never appears created to one call and
absent to the other.
*/
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"groupchat/internal/pkg/errs"
	"groupchat/internal/pkg/logx"
)

// SystemAuthor is the reserved author name under which room lifecycle
// messages are stored.
const SystemAuthor = "server"

// DocumentStore is the durable-storage collaborator the MessageStore depends
// on. Implementations must make CreateDoc atomic (create-if-absent) and
// serialize concurrent AppendMessage calls for the same (room, author) pair.
type DocumentStore interface {
	// CreateDoc writes doc under (roomID, doc.Name) only if no document
	// exists there yet. It returns false if a document was already present.
	CreateDoc(ctx context.Context, roomID string, doc AuthorDoc) (bool, error)

	// AppendMessage appends msg to the existing document for (roomID, author).
	// It returns false if no such document exists.
	AppendMessage(ctx context.Context, roomID string, author string, msg StoredMessage) (bool, error)

	// ListDocs returns every author document stored under roomID.
	ListDocs(ctx context.Context, roomID string) ([]AuthorDoc, error)
}

// MessageStore is the per-room, per-author append log.
type MessageStore struct {
	docs DocumentStore

	// ensured caches room IDs whose creation document is known to exist,
	// so the existence check runs once per room per process.
	mu      sync.RWMutex
	ensured map[string]struct{}

	logger zerolog.Logger
}

// NewMessageStore constructs a MessageStore on top of the given DocumentStore.
func NewMessageStore(docs DocumentStore) *MessageStore {
	storeLogger := logx.Logger().With().Str("component", "MessageStore").Logger()

	return &MessageStore{
		docs:    docs,
		ensured: make(map[string]struct{}),
		logger:  storeLogger,
	}
}

// Append stores a new message in the author's log for the given room,
// creating the room (with its system creation message) if it has never been
// addressed. The creation timestamp is assigned here, at persistence time.
// Storage collaborator failures surface as ErrStoreUnavailable.
func (s *MessageStore) Append(ctx context.Context, roomID string, author string, body string) (Message, *errs.CustomError) {
	if err := s.ensureRoom(ctx, roomID); err != nil {
		return Message{}, err
	}

	msg := StoredMessage{
		Body:      body,
		TimeStamp: TimestampFromTime(time.Now()),
	}

	appended, err := s.docs.AppendMessage(ctx, roomID, author, msg)
	if err != nil {
		s.logger.Error().Err(err).Str("room_id", roomID).Str("author", author).Msg("Failed to append message.")
		return Message{}, errs.NewError(errs.ErrStoreUnavailable)
	}

	if !appended {
		created, err := s.docs.CreateDoc(ctx, roomID, AuthorDoc{
			Name:     author,
			Messages: []StoredMessage{msg},
		})
		if err != nil {
			s.logger.Error().Err(err).Str("room_id", roomID).Str("author", author).Msg("Failed to create author document.")
			return Message{}, errs.NewError(errs.ErrStoreUnavailable)
		}

		if !created {
			// Lost a create race with a concurrent first message from the
			// same author; the document exists now, so the append must land.
			if _, err := s.docs.AppendMessage(ctx, roomID, author, msg); err != nil {
				s.logger.Error().Err(err).Str("room_id", roomID).Str("author", author).Msg("Failed to append message after create race.")
				return Message{}, errs.NewError(errs.ErrStoreUnavailable)
			}
		}
	}

	return Message{
		Author:    author,
		Body:      body,
		TimeStamp: msg.TimeStamp,
	}, nil
}

// ListAuthorLogs returns every author's ordered message log for the given
// room, creating the room (with its system creation message) if it has never
// been addressed. A fresh room therefore always yields at least the system log.
func (s *MessageStore) ListAuthorLogs(ctx context.Context, roomID string) (map[string][]StoredMessage, *errs.CustomError) {
	if err := s.ensureRoom(ctx, roomID); err != nil {
		return nil, err
	}

	docs, err := s.docs.ListDocs(ctx, roomID)
	if err != nil {
		s.logger.Error().Err(err).Str("room_id", roomID).Msg("Failed to list author documents.")
		return nil, errs.NewError(errs.ErrStoreUnavailable)
	}

	logs := make(map[string][]StoredMessage, len(docs))
	for _, doc := range docs {
		logs[doc.Name] = doc.Messages
	}

	return logs, nil
}

// ensureRoom guarantees that the room has its creation document. The first
// caller for a room writes the system message; concurrent creators are
// resolved by the DocumentStore's create-if-absent semantics.
func (s *MessageStore) ensureRoom(ctx context.Context, roomID string) *errs.CustomError {
	s.mu.RLock()
	_, ok := s.ensured[roomID]
	s.mu.RUnlock()

	if ok {
		return nil
	}

	docs, err := s.docs.ListDocs(ctx, roomID)
	if err != nil {
		s.logger.Error().Err(err).Str("room_id", roomID).Msg("Failed to check room existence.")
		return errs.NewError(errs.ErrStoreUnavailable)
	}

	if len(docs) == 0 {
		creationDoc := AuthorDoc{
			Name: SystemAuthor,
			Messages: []StoredMessage{{
				Body:      fmt.Sprintf("Room %s has been successfully created.", roomID),
				TimeStamp: TimestampFromTime(time.Now()),
			}},
		}

		created, err := s.docs.CreateDoc(ctx, roomID, creationDoc)
		if err != nil {
			s.logger.Error().Err(err).Str("room_id", roomID).Msg("Failed to create room.")
			return errs.NewError(errs.ErrStoreUnavailable)
		}

		if created {
			s.logger.Info().Str("room_id", roomID).Msg("Room created.")
		}
	}

	s.mu.Lock()
	s.ensured[roomID] = struct{}{}
	s.mu.Unlock()

	return nil
}

/*
Package store implements durable, per-room, per-author message persistence.

This file provides the PostgreSQL DocumentStore backend. Each (room, author)
pair is one row in author_logs with the message log held in a jsonb array;
appends concatenate onto that array in a single atomic statement, which
serializes concurrent appends to the same author log.
*/
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a DocumentStore backed by an author_logs table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgresStore on top of an initialized pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// CreateDoc inserts the author document only if the (roomID, author) row is absent.
func (p *PostgresStore) CreateDoc(ctx context.Context, roomID string, doc AuthorDoc) (bool, error) {
	messages, err := json.Marshal(doc.Messages)
	if err != nil {
		return false, fmt.Errorf("failed to marshal author log: %w", err)
	}

	tag, err := p.pool.Exec(ctx,
		`INSERT INTO author_logs (room_id, author, messages)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (room_id, author) DO NOTHING`,
		roomID, doc.Name, messages,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create author document: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// AppendMessage concatenates msg onto the existing row's messages array.
func (p *PostgresStore) AppendMessage(ctx context.Context, roomID string, author string, msg StoredMessage) (bool, error) {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return false, fmt.Errorf("failed to marshal message: %w", err)
	}

	tag, err := p.pool.Exec(ctx,
		`UPDATE author_logs
		 SET messages = messages || $3::jsonb
		 WHERE room_id = $1 AND author = $2`,
		roomID, author, encoded,
	)
	if err != nil {
		return false, fmt.Errorf("failed to append message: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListDocs returns every author document stored under roomID.
func (p *PostgresStore) ListDocs(ctx context.Context, roomID string) ([]AuthorDoc, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT author, messages FROM author_logs WHERE room_id = $1 ORDER BY author`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list author documents: %w", err)
	}
	defer rows.Close()

	var docs []AuthorDoc

	for rows.Next() {
		var author string
		var raw []byte

		if err := rows.Scan(&author, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan author document: %w", err)
		}

		var messages []StoredMessage
		if err := json.Unmarshal(raw, &messages); err != nil {
			return nil, fmt.Errorf("malformed message log for author %q: %w", author, err)
		}

		docs = append(docs, AuthorDoc{Name: author, Messages: messages})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read author documents: %w", err)
	}

	return docs, nil
}

/*
Package store implements durable, per-room, per-author message persistence.

This file defines the fixed record types for the stored document shape. Each
(room, author) pair owns exactly one document holding that author's ordered,
append-only message log. Timestamps cross the storage and wire boundary as a
(seconds, nanoseconds) pair.
*/
package store

import "time"

// Timestamp is the boundary representation of a message creation time.
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int32 `json:"nanoseconds"`
}

// TimestampFromTime converts a time.Time into its boundary representation.
func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp{
		Seconds:     t.Unix(),
		Nanoseconds: int32(t.Nanosecond()),
	}
}

// Time converts the boundary representation back into a time.Time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanoseconds))
}

// Before reports whether ts is strictly earlier than other.
func (ts Timestamp) Before(other Timestamp) bool {
	if ts.Seconds != other.Seconds {
		return ts.Seconds < other.Seconds
	}
	return ts.Nanoseconds < other.Nanoseconds
}

// StoredMessage is a single entry in an author's log, in the persisted shape.
type StoredMessage struct {
	Body      string    `json:"message"`
	TimeStamp Timestamp `json:"timeStamp"`
}

// AuthorDoc is the document persisted per (room, author): the author's name
// and their ordered message log.
type AuthorDoc struct {
	Name     string          `json:"name"`
	Messages []StoredMessage `json:"messages"`
}

// Message is a stored message projected with its author name. It is the unit
// the rest of the system works with: transcript entries and broadcast payloads.
type Message struct {
	Author    string    `json:"userName"`
	Body      string    `json:"message"`
	TimeStamp Timestamp `json:"timeStamp"`
}

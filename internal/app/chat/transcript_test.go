package chat

import (
	"testing"
	"time"

	"groupchat/internal/app/store"
)

func stampAt(sec int64, nanos int32) store.Timestamp {
	return store.Timestamp{Seconds: sec, Nanoseconds: nanos}
}

// TestAssembleEmpty verifies that an empty mapping yields an empty sequence.
func TestAssembleEmpty(t *testing.T) {
	entries := Assemble(nil)
	if len(entries) != 0 {
		t.Fatalf("Assemble(nil) returned %d entries, want 0", len(entries))
	}

	entries = Assemble(map[string][]store.StoredMessage{})
	if len(entries) != 0 {
		t.Fatalf("Assemble(empty map) returned %d entries, want 0", len(entries))
	}
}

// TestAssembleOrdersByTimestamp verifies that entries from interleaved author
// logs come out sorted non-decreasing by timestamp, tagged with their author,
// with no loss and no duplication.
func TestAssembleOrdersByTimestamp(t *testing.T) {
	logs := map[string][]store.StoredMessage{
		"alice": {
			{Body: "first", TimeStamp: stampAt(100, 0)},
			{Body: "fourth", TimeStamp: stampAt(400, 0)},
		},
		"bob": {
			{Body: "second", TimeStamp: stampAt(200, 0)},
			{Body: "third", TimeStamp: stampAt(300, 0)},
		},
		"server": {
			{Body: "created", TimeStamp: stampAt(50, 0)},
		},
	}

	entries := Assemble(logs)

	if len(entries) != 5 {
		t.Fatalf("Assemble returned %d entries, want 5", len(entries))
	}

	wantBodies := []string{"created", "first", "second", "third", "fourth"}
	wantAuthors := []string{"server", "alice", "bob", "bob", "alice"}

	for i, entry := range entries {
		if entry.Body != wantBodies[i] {
			t.Errorf("entries[%d].Body = %q, want %q", i, entry.Body, wantBodies[i])
		}
		if entry.Author != wantAuthors[i] {
			t.Errorf("entries[%d].Author = %q, want %q", i, entry.Author, wantAuthors[i])
		}
	}

	for i := 1; i < len(entries); i++ {
		if entries[i].TimeStamp.Before(entries[i-1].TimeStamp) {
			t.Errorf("entries[%d] is earlier than entries[%d]", i, i-1)
		}
	}
}

// TestAssembleNanosecondOrdering verifies that messages within the same
// second are ordered by the sub-second component.
func TestAssembleNanosecondOrdering(t *testing.T) {
	logs := map[string][]store.StoredMessage{
		"alice": {{Body: "later", TimeStamp: stampAt(100, 500)}},
		"bob":   {{Body: "earlier", TimeStamp: stampAt(100, 100)}},
	}

	entries := Assemble(logs)
	if len(entries) != 2 {
		t.Fatalf("Assemble returned %d entries, want 2", len(entries))
	}

	if entries[0].Body != "earlier" || entries[1].Body != "later" {
		t.Errorf("got order [%q, %q], want [earlier, later]", entries[0].Body, entries[1].Body)
	}
}

// TestAssembleKeepsStoreOrderOnTies verifies that equal timestamps within one
// author's log keep append order (stable sort).
func TestAssembleKeepsStoreOrderOnTies(t *testing.T) {
	ts := store.TimestampFromTime(time.Unix(100, 0))

	logs := map[string][]store.StoredMessage{
		"alice": {
			{Body: "a1", TimeStamp: ts},
			{Body: "a2", TimeStamp: ts},
			{Body: "a3", TimeStamp: ts},
		},
	}

	entries := Assemble(logs)
	if len(entries) != 3 {
		t.Fatalf("Assemble returned %d entries, want 3", len(entries))
	}

	for i, want := range []string{"a1", "a2", "a3"} {
		if entries[i].Body != want {
			t.Errorf("entries[%d].Body = %q, want %q", i, entries[i].Body, want)
		}
	}
}

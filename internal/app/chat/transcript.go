/*
Package chat contains the core logic for room membership, message fan-out, and transcript assembly.

This file defines transcript assembly: merging every author's log of a room
into one chronologically ordered sequence for display on join.
*/
package chat

import (
	"sort"

	"groupchat/internal/app/store"
)

// Assemble flattens every author's ordered log into a single sequence of
// messages tagged with their author, sorted non-decreasing by timestamp.
//
// The function is pure and total: an empty (or nil) mapping yields an empty
// sequence. Authors are flattened in lexicographic order and the sort is
// stable, so entries with equal timestamps keep store order within an author;
// their order across authors is fixed but otherwise unspecified.
func Assemble(logs map[string][]store.StoredMessage) []store.Message {
	authors := make([]string, 0, len(logs))
	total := 0
	for author, log := range logs {
		authors = append(authors, author)
		total += len(log)
	}
	sort.Strings(authors)

	entries := make([]store.Message, 0, total)
	for _, author := range authors {
		for _, msg := range logs[author] {
			entries = append(entries, store.Message{
				Author:    author,
				Body:      msg.Body,
				TimeStamp: msg.TimeStamp,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TimeStamp.Before(entries[j].TimeStamp)
	})

	return entries
}

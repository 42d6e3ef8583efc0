/*
Package chat contains the core logic for room membership, message fan-out, and transcript assembly.

This file defines the content guard. A message body is normalized by stripping
all whitespace and lower-casing, then checked for exact membership in the
restricted-token set. There is no partial or substring matching: "hmmm!" passes,
"H m m m" does not.
*/
package chat

import (
	"strings"
	"unicode"
)

// restrictedTokens is the fixed set of normalized message bodies that are
// dropped before persistence. Filler interjections and their repeated variants.
var restrictedTokens = map[string]struct{}{
	"m":      {},
	"hm":     {},
	"ha":     {},
	"mm":     {},
	"hmm":    {},
	"haa":    {},
	"mmm":    {},
	"hmmm":   {},
	"mmmm":   {},
	"hmmmm":  {},
	"haaaa":  {},
	"mmmmm":  {},
	"hmmmmm": {},
	"haaaaa": {},
}

// IsRestricted reports whether the message body normalizes to a restricted token.
func IsRestricted(body string) bool {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, body)

	_, restricted := restrictedTokens[normalized]
	return restricted
}

package chat

import "testing"

// TestIsRestricted verifies exact-match rejection after whitespace stripping
// and lower-casing, with no substring matching.
func TestIsRestricted(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"plain token", "hmm", true},
		{"mixed case", "Hmm", true},
		{"interior whitespace", "h m m", true},
		{"tabs and newlines", "h\tm\nm", true},
		{"single letter token", "m", true},
		{"longest variant", "haaaaa", true},
		{"punctuation defeats exact match", "hmmm!", false},
		{"token inside sentence", "hmm ok", false},
		{"ordinary message", "hello", false},
		{"empty body", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRestricted(tt.body); got != tt.want {
				t.Errorf("IsRestricted(%q) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplyRemainder(t *testing.T) {
	tests := []struct {
		name    string
		printed string
		full    string
		want    string
	}{
		{"fully streamed", "Hello, world", "Hello, world", ""},
		{"nothing streamed", "", "full reply", "full reply"},
		{"streamed prefix", "Hel", "Hello", "lo"},
		// A fallback reply replaces a discarded partial; the full reply is
		// printed on a fresh line so the half-written text is never the
		// last word.
		{"fallback after partial stream", "half-", "full reply", "\nfull reply"},
		{"offline after partial stream", "some text", "I'm currently offline", "\nI'm currently offline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, replyRemainder(tt.printed, tt.full))
		})
	}
}

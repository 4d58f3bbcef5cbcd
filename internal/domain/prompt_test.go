package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrivialPrompt(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		prompt string
		want   bool
	}{
		{name: "empty", prompt: "", want: true},
		{name: "whitespace only", prompt: "   \n\t", want: true},
		{name: "short", prompt: "fix this", want: true},
		{name: "greeting", prompt: "hi", want: true},
		{name: "greeting mixed case", prompt: "  Hello ", want: true},
		{name: "acknowledgement", prompt: "thanks", want: true},
		{name: "slash command", prompt: "/compact with extra instructions", want: true},
		{name: "real question", prompt: "How do I configure the Postgres connection pool for recall?", want: false},
		{name: "exactly min length", prompt: "abcdefghijkl", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, TrivialPrompt(tc.prompt))
		})
	}
}

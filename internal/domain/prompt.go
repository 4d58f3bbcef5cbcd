package domain

import "strings"

// MinPromptLength is the shortest prompt worth a retrieval round-trip.
const MinPromptLength = 12

// trivialPrompts are exact matches (trimmed, case-folded) that never trigger
// retrieval: greetings, bare acknowledgements, test noise.
var trivialPrompts = map[string]struct{}{
	"hi":        {},
	"hello":     {},
	"hey":       {},
	"yo":        {},
	"thanks":    {},
	"thank you": {},
	"thx":       {},
	"ty":        {},
	"ok":        {},
	"okay":      {},
	"k":         {},
	"yes":       {},
	"no":        {},
	"yep":       {},
	"nope":      {},
	"sure":      {},
	"cool":      {},
	"nice":      {},
	"great":     {},
	"good":      {},
	"continue":  {},
	"go on":     {},
	"test":      {},
	"testing":   {},
}

// TrivialPrompt reports whether a prompt should be rejected before any
// network work: too short, a known greeting/acknowledgement, or a
// slash-command addressed to the host rather than the model.
func TrivialPrompt(prompt string) bool {
	trimmed := strings.TrimSpace(prompt)
	if len(trimmed) < MinPromptLength {
		return true
	}
	if strings.HasPrefix(trimmed, "/") {
		return true
	}
	if _, ok := trivialPrompts[strings.ToLower(trimmed)]; ok {
		return true
	}

	return false
}

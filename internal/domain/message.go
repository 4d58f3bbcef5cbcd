package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TranscriptMessage is one role-tagged message derived from the host's
// conversation log. Messages are recomputed from the transcript on every
// read; nothing here is persisted.
type TranscriptMessage struct {
	Role      Role
	Text      string
	Timestamp time.Time
}

func UserMessages(msgs []TranscriptMessage) []TranscriptMessage {
	users := make([]TranscriptMessage, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Role == RoleUser {
			users = append(users, msg)
		}
	}

	return users
}

// AssistantText joins all assistant-authored text, newline separated.
func AssistantText(msgs []TranscriptMessage) string {
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Role == RoleAssistant && strings.TrimSpace(msg.Text) != "" {
			parts = append(parts, msg.Text)
		}
	}

	return strings.Join(parts, "\n")
}

func TotalUserChars(msgs []TranscriptMessage) int {
	total := 0
	for _, msg := range msgs {
		if msg.Role == RoleUser {
			total += len(msg.Text)
		}
	}

	return total
}

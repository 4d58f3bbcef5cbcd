// Package transcript parses the host's JSONL conversation log into ordered
// role-tagged messages. Parsing is pure and tolerant: malformed lines and
// non-conversational entries are skipped, never fatal.
package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/recallkit/recallkit/internal/domain"
	"github.com/recallkit/recallkit/internal/ports"
)

// maxLineBytes bounds a single transcript line. Tool results can embed whole
// files, so the buffer is generous.
const maxLineBytes = 4 << 20

type Reader struct{}

var _ ports.TranscriptReader = Reader{}

func NewReader() Reader {
	return Reader{}
}

type transcriptLine struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Message   json.RawMessage `json:"message"`
}

type messageBody struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (Reader) Read(path string) ([]domain.TranscriptMessage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidTranscript, path)
	}
	defer file.Close()

	var msgs []domain.TranscriptMessage
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry transcriptLine
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if entry.Type != "user" && entry.Type != "assistant" {
			continue
		}

		var body messageBody
		if err := json.Unmarshal(entry.Message, &body); err != nil {
			continue
		}
		role := domain.Role(body.Role)
		if role != domain.RoleUser && role != domain.RoleAssistant {
			continue
		}

		text := extractText(body.Content)
		if strings.TrimSpace(text) == "" {
			continue
		}

		msgs = append(msgs, domain.TranscriptMessage{
			Role:      role,
			Text:      text,
			Timestamp: parseTimestamp(entry.Timestamp),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcript: %w", err)
	}

	return msgs, nil
}

// extractText handles both content encodings the host emits: a plain string
// or an array of typed blocks, of which only text blocks carry prose.
func extractText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}

	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}

	return strings.Join(parts, "\n")
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return ts
}

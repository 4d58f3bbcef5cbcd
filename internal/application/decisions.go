package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/recallkit/recallkit/internal/domain"
	"github.com/recallkit/recallkit/internal/ports"
)

const decisionsPromptTemplate = `From this coding session, extract up to %d key decisions or findings worth remembering across sessions.
Respond with only a JSON array, no prose and no reasoning trace. Each element:
{"finding": "...", "domain": "...", "importance": 1-10, "tags": ["..."]}
Return [] if nothing qualifies.

Conversation:
%s`

const (
	decisionsTemperature = 0.2
	decisionsMaxTokens   = 1024
	maxFindingChars      = 600
)

// KeyDecisionExtractor is the opportunistic, higher-latency second LLM call.
// Anything malformed collapses to an empty list; a session losing its
// key-decision extraction is never an error.
type KeyDecisionExtractor struct {
	gen     ports.Generator
	model   string
	timeout time.Duration
	log     *slog.Logger
}

func NewKeyDecisionExtractor(gen ports.Generator, model string, timeout time.Duration, log *slog.Logger) *KeyDecisionExtractor {
	if log == nil {
		log = discardLogger()
	}

	return &KeyDecisionExtractor{gen: gen, model: model, timeout: timeout, log: log}
}

func (e *KeyDecisionExtractor) Extract(ctx context.Context, msgs []domain.TranscriptMessage) []domain.KeyDecision {
	if len(msgs) < domain.KeyDecisionMinMessages {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.gen.Generate(ctx, ports.GenerateRequest{
		Model:       e.model,
		Prompt:      fmt.Sprintf(decisionsPromptTemplate, domain.KeyDecisionMaxFindings, conversationDigest(msgs)),
		Temperature: decisionsTemperature,
		MaxTokens:   decisionsMaxTokens,
	})
	if err != nil {
		e.log.Warn("key-decision extraction failed", "model", e.model, "error", err)
		return nil
	}

	decisions := parseDecisions(resp)
	e.log.Info("key-decision extraction done", "findings", len(decisions))

	return decisions
}

// parseDecisions digs the JSON array out of whatever the model wrapped it in
// (code fences, stray prose) and drops unusable entries. A response that is
// not an array yields nil.
func parseDecisions(resp string) []domain.KeyDecision {
	raw := strings.TrimSpace(resp)
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil
	}

	var decisions []domain.KeyDecision
	if err := json.Unmarshal([]byte(raw[start:end+1]), &decisions); err != nil {
		return nil
	}

	kept := make([]domain.KeyDecision, 0, len(decisions))
	for _, decision := range decisions {
		if len(kept) == domain.KeyDecisionMaxFindings {
			break
		}
		finding := strings.TrimSpace(decision.Finding)
		if finding == "" || len(finding) > maxFindingChars {
			continue
		}
		decision.Finding = finding
		kept = append(kept, decision)
	}

	if len(kept) == 0 {
		return nil
	}

	return kept
}

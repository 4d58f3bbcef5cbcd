package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/recallkit/recallkit/internal/domain"
	"github.com/recallkit/recallkit/internal/ports"
)

// summaryPromptTemplate instructs the model to answer with prose only. Local
// reasoning models happily emit their scratchpad otherwise, which would blow
// the length validation and pollute the stored memory.
const summaryPromptTemplate = `Summarize this coding session in 2-4 sentences for a future session to pick up from.
Focus on what was being built, key decisions, and unresolved work.
Respond with only the summary text. Do not include any reasoning trace, preamble, or markdown.

Conversation:
%s`

const (
	summaryTemperature = 0.3
	summaryMaxTokens   = 512
	digestPerMessage   = 300
	digestMaxChars     = 8000
	topicFragmentChars = 120
)

// LLMSummarizer is the first summary tier. It declines short sessions and
// rejects responses outside the sane length band; both read as ok == false so
// the chain falls through.
type LLMSummarizer struct {
	gen     ports.Generator
	model   string
	timeout time.Duration
	log     *slog.Logger
}

var _ ports.Summarizer = (*LLMSummarizer)(nil)

func NewLLMSummarizer(gen ports.Generator, model string, timeout time.Duration, log *slog.Logger) *LLMSummarizer {
	if log == nil {
		log = discardLogger()
	}

	return &LLMSummarizer{gen: gen, model: model, timeout: timeout, log: log}
}

func (s *LLMSummarizer) Summarize(ctx context.Context, msgs []domain.TranscriptMessage) (domain.Summary, bool) {
	users := domain.UserMessages(msgs)
	if len(users) < domain.LLMSummaryMinUserMessages || domain.TotalUserChars(msgs) <= domain.LLMSummaryMinUserChars {
		return domain.Summary{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.gen.Generate(ctx, ports.GenerateRequest{
		Model:       s.model,
		Prompt:      fmt.Sprintf(summaryPromptTemplate, conversationDigest(msgs)),
		Temperature: summaryTemperature,
		MaxTokens:   summaryMaxTokens,
	})
	if err != nil {
		s.log.Warn("llm summary failed", "model", s.model, "error", err)
		return domain.Summary{}, false
	}

	content := strings.TrimSpace(resp)
	if len(content) < domain.SummaryMinLength || len(content) > domain.SummaryMaxLength {
		s.log.Warn("llm summary rejected by length validation", "chars", len(content))
		return domain.Summary{}, false
	}

	return domain.Summary{
		Content:    content,
		Importance: domain.ImportanceLLMSummary,
		Tags:       []string{"session", "summary"},
		Provenance: domain.ProvenanceLLM,
	}, true
}

// FallbackSummarizer is the deterministic tier: the first user message
// carries the intent, later user messages contribute topic fragments. No I/O,
// cannot fail once the message floor is met.
type FallbackSummarizer struct{}

var _ ports.Summarizer = FallbackSummarizer{}

func (FallbackSummarizer) Summarize(_ context.Context, msgs []domain.TranscriptMessage) (domain.Summary, bool) {
	users := domain.UserMessages(msgs)
	if len(users) < domain.FallbackMinUserMessages {
		return domain.Summary{}, false
	}

	intent := truncateFlat(users[0].Text, domain.SummaryMaxLength/2)
	topics := make([]string, 0, domain.FallbackTopicLimit)
	for _, msg := range users[1:] {
		if len(topics) == domain.FallbackTopicLimit {
			break
		}
		topics = append(topics, truncateFlat(msg.Text, topicFragmentChars))
	}

	content := "Session intent: " + intent
	if len(topics) > 0 {
		content += " Follow-up topics: " + strings.Join(topics, "; ") + "."
	}
	if len(content) > domain.SummaryMaxLength {
		content = content[:domain.SummaryMaxLength]
	}

	return domain.Summary{
		Content:    content,
		Importance: domain.ImportanceFallbackSummary,
		Tags:       []string{"session", "summary"},
		Provenance: domain.ProvenanceFallback,
	}, true
}

// SummaryChain tries tiers in order and stops at the first that produces a
// summary. New tiers slot in without touching call sites.
type SummaryChain struct {
	tiers []ports.Summarizer
}

var _ ports.Summarizer = (*SummaryChain)(nil)

func NewSummaryChain(tiers ...ports.Summarizer) *SummaryChain {
	return &SummaryChain{tiers: tiers}
}

func (c *SummaryChain) Summarize(ctx context.Context, msgs []domain.TranscriptMessage) (domain.Summary, bool) {
	for _, tier := range c.tiers {
		if summary, ok := tier.Summarize(ctx, msgs); ok {
			return summary, true
		}
	}

	return domain.Summary{}, false
}

// conversationDigest flattens the transcript into a bounded plain-text form
// for prompting.
func conversationDigest(msgs []domain.TranscriptMessage) string {
	var b strings.Builder
	for _, msg := range msgs {
		line := fmt.Sprintf("%s: %s\n", msg.Role, truncateFlat(msg.Text, digestPerMessage))
		if b.Len()+len(line) > digestMaxChars {
			break
		}
		b.WriteString(line)
	}

	return b.String()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

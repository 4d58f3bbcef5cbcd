package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/recallkit/recallkit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func longSession() []domain.TranscriptMessage {
	return []domain.TranscriptMessage{
		userMsg("I want to add a retrieval layer in front of the memory API so prompts get relevant context injected."),
		assistantMsg("Sounds good, let's start with the search client."),
		userMsg("The similarity floor should be configurable, defaulting to a quarter."),
		assistantMsg("Done."),
		userMsg("Now wire the feedback submission into the session-end hook as well please."),
	}
}

func newLLMTier(gen *fakeGenerator) *LLMSummarizer {
	return NewLLMSummarizer(gen, "qwen3:4b", time.Second, nil)
}

func TestLLMSummarizerDeclinesShortSessions(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{response: "A perfectly reasonable summary of the session."}
	tier := newLLMTier(gen)

	// Two user messages: below the three-message floor.
	_, ok := tier.Summarize(context.Background(), []domain.TranscriptMessage{
		userMsg(strings.Repeat("long enough text to pass the character gate. ", 10)),
		userMsg("second message"),
	})
	assert.False(t, ok)
	assert.Zero(t, gen.callCount(), "LLM must not be called below the message floor")

	// Three user messages but too few characters.
	_, ok = tier.Summarize(context.Background(), []domain.TranscriptMessage{
		userMsg("short"), userMsg("also short"), userMsg("still short"),
	})
	assert.False(t, ok)
	assert.Zero(t, gen.callCount())
}

func TestLLMSummarizerRejectsOutOfBandResponses(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		response string
	}{
		{name: "too short", response: "ten chars."},
		{name: "too long", response: strings.Repeat("x", domain.SummaryMaxLength+1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tier := newLLMTier(&fakeGenerator{response: tc.response})
			_, ok := tier.Summarize(context.Background(), longSession())
			assert.False(t, ok)
		})
	}
}

func TestLLMSummarizerHappyPath(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{response: "Built a retrieval layer with a configurable similarity floor and wired feedback into session end."}
	tier := newLLMTier(gen)

	summary, ok := tier.Summarize(context.Background(), longSession())
	require.True(t, ok)
	assert.Equal(t, domain.ProvenanceLLM, summary.Provenance)
	assert.InDelta(t, domain.ImportanceLLMSummary, summary.Importance, 1e-9)

	require.Equal(t, 1, gen.callCount())
	prompt := gen.calls[0].Prompt
	assert.Contains(t, prompt, "Do not include any reasoning trace")
	assert.Contains(t, prompt, "retrieval layer")
}

func TestFallbackSummarizerNeedsTwoUserMessages(t *testing.T) {
	t.Parallel()

	_, ok := FallbackSummarizer{}.Summarize(context.Background(), []domain.TranscriptMessage{
		userMsg("only one message"),
		assistantMsg("reply"),
	})
	assert.False(t, ok)
}

func TestFallbackSummarizerBuildsIntentPlusTopics(t *testing.T) {
	t.Parallel()

	msgs := []domain.TranscriptMessage{
		userMsg("build the retrieval layer"),
		userMsg("topic one"), userMsg("topic two"), userMsg("topic three"),
		userMsg("topic four"), userMsg("topic five"), userMsg("topic six"),
	}

	summary, ok := FallbackSummarizer{}.Summarize(context.Background(), msgs)
	require.True(t, ok)
	assert.Equal(t, domain.ProvenanceFallback, summary.Provenance)
	assert.InDelta(t, domain.ImportanceFallbackSummary, summary.Importance, 1e-9)
	assert.Contains(t, summary.Content, "build the retrieval layer")
	assert.Contains(t, summary.Content, "topic five")
	assert.NotContains(t, summary.Content, "topic six", "at most five topic fragments")
	assert.LessOrEqual(t, len(summary.Content), domain.SummaryMaxLength)
}

func TestChainFallsThroughOnLLMFailure(t *testing.T) {
	t.Parallel()

	// LLM tier returns a 10-character response: rejected, fallback takes over.
	gen := &fakeGenerator{response: "ten chars."}
	chain := NewSummaryChain(newLLMTier(gen), FallbackSummarizer{})

	summary, ok := chain.Summarize(context.Background(), longSession())
	require.True(t, ok)
	assert.Equal(t, domain.ProvenanceFallback, summary.Provenance)
	assert.Equal(t, 1, gen.callCount(), "fallback is conditional on LLM failure, not a cross-check")
}

func TestChainPrefersLLMWhenItSucceeds(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{response: "A valid summary of everything that happened in the session."}
	chain := NewSummaryChain(newLLMTier(gen), FallbackSummarizer{})

	summary, ok := chain.Summarize(context.Background(), longSession())
	require.True(t, ok)
	assert.Equal(t, domain.ProvenanceLLM, summary.Provenance)
}

func TestChainEmptyWhenAllTiersDecline(t *testing.T) {
	t.Parallel()

	chain := NewSummaryChain(newLLMTier(&fakeGenerator{response: "irrelevant"}), FallbackSummarizer{})
	_, ok := chain.Summarize(context.Background(), []domain.TranscriptMessage{userMsg("lone message")})
	assert.False(t, ok)
}

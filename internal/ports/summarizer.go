package ports

import (
	"context"

	"github.com/recallkit/recallkit/internal/domain"
)

// Summarizer is one tier of the summary fallback chain. ok == false means
// the tier declined (precondition unmet) or failed; the caller moves on to
// the next tier.
type Summarizer interface {
	Summarize(ctx context.Context, msgs []domain.TranscriptMessage) (domain.Summary, bool)
}

// TranscriptReader derives ordered role-tagged messages from the host's
// conversation log. Pure and stateless; re-run on every invocation.
type TranscriptReader interface {
	Read(path string) ([]domain.TranscriptMessage, error)
}

package application

import (
	"context"
	"log/slog"

	"github.com/recallkit/recallkit/internal/domain"
	"github.com/recallkit/recallkit/internal/ports"
)

// HandoffWorker runs inside the detached process. It has the timeout budget
// hooks lack, so it only carries the LLM tier: when that fails, the regular
// end-of-session summary is the continuity fallback and nothing is stored.
type HandoffWorker struct {
	reader     ports.TranscriptReader
	summarizer ports.Summarizer
	memories   ports.MemoryService
	log        *slog.Logger
}

func NewHandoffWorker(reader ports.TranscriptReader, summarizer ports.Summarizer, memories ports.MemoryService, log *slog.Logger) *HandoffWorker {
	if log == nil {
		log = discardLogger()
	}

	return &HandoffWorker{reader: reader, summarizer: summarizer, memories: memories, log: log}
}

func (w *HandoffWorker) Run(ctx context.Context, payload ports.HandoffPayload) {
	w.log.Info("handoff worker started",
		"transcript", payload.TranscriptPath,
		"used_pct", payload.UsedPercentage,
		"cost_usd", payload.TotalCostUSD,
	)

	msgs, err := w.reader.Read(payload.TranscriptPath)
	if err != nil {
		w.log.Warn("handoff transcript unreadable", "error", err)
		return
	}

	summary, ok := w.summarizer.Summarize(ctx, msgs)
	if !ok {
		w.log.Warn("handoff summary unavailable")
		return
	}

	draft := domain.MemoryDraft{
		Content:    summary.Content,
		Domain:     domainFromCWD(payload.CWD),
		Source:     "handoff",
		Type:       "handoff",
		Tags:       []string{"handoff", "continuity"},
		Importance: domain.ImportanceHandoff,
	}
	if err := w.memories.Store(ctx, draft); err != nil {
		w.log.Warn("handoff store failed", "error", err)
		return
	}

	w.log.Info("handoff stored", "chars", len(summary.Content))
}

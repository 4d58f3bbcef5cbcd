package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/recallkit/recallkit/internal/domain"
	"github.com/recallkit/recallkit/internal/ports"
)

// FeedbackService correlates the session's injected memories with the
// assistant's output. Consumption is at-most-once: the log is deleted when
// read, before the submission outcome is known. Retrying a failed submission
// against a stale log would double-count a possibly-changed session, so the
// feedback opportunity is simply spent.
type FeedbackService struct {
	store    ports.SessionStore
	memories ports.MemoryService
	log      *slog.Logger
}

func NewFeedbackService(store ports.SessionStore, memories ports.MemoryService, log *slog.Logger) *FeedbackService {
	if log == nil {
		log = discardLogger()
	}

	return &FeedbackService{store: store, memories: memories, log: log}
}

// Correlate runs once at session end. The assistant-text check happens before
// the log is consumed, so an inconclusive session deletes nothing it did not
// use.
func (s *FeedbackService) Correlate(ctx context.Context, sessionID string, msgs []domain.TranscriptMessage) {
	text := strings.ToLower(strings.TrimSpace(domain.AssistantText(msgs)))
	if len(text) < domain.MinFeedbackAssistantChars {
		s.log.Info("feedback skipped: assistant text below minimum", "chars", len(text))
		return
	}

	records, err := s.store.ConsumeInjected(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrLogNotFound) {
			s.log.Warn("injected-log consume failed", "error", err)
		}
		return
	}

	ids := domain.DedupeIDs(records)
	if len(ids) == 0 {
		return
	}

	if err := s.memories.SubmitFeedback(ctx, domain.Feedback{InjectedIDs: ids, AssistantText: text}); err != nil {
		// The log is already gone; this failure only costs one feedback signal.
		s.log.Warn("feedback submission failed", "injected", len(ids), "error", err)
		return
	}

	s.log.Info("feedback submitted", "injected", len(ids), "records", len(records))
}

package application

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/recallkit/recallkit/internal/domain"
	"github.com/recallkit/recallkit/internal/ports"
)

const defaultDecisionsGrace = 60 * time.Second

// SessionEndService orchestrates the end-of-session work: feedback
// correlation and summary storage fan out and join (independent, comparable
// latency); key-decision extraction is fire-and-forget, excluded from that
// join, and merely waited out before the process exits.
type SessionEndService struct {
	reader         ports.TranscriptReader
	feedback       *FeedbackService
	chain          ports.Summarizer
	extractor      *KeyDecisionExtractor
	memories       ports.MemoryService
	log            *slog.Logger
	decisionsGrace time.Duration
}

func NewSessionEndService(
	reader ports.TranscriptReader,
	feedback *FeedbackService,
	chain ports.Summarizer,
	extractor *KeyDecisionExtractor,
	memories ports.MemoryService,
	log *slog.Logger,
) *SessionEndService {
	if log == nil {
		log = discardLogger()
	}

	return &SessionEndService{
		reader:         reader,
		feedback:       feedback,
		chain:          chain,
		extractor:      extractor,
		memories:       memories,
		log:            log,
		decisionsGrace: defaultDecisionsGrace,
	}
}

func (s *SessionEndService) Run(ctx context.Context, sessionID, transcriptPath, cwd string) {
	msgs, err := s.reader.Read(transcriptPath)
	if err != nil {
		s.log.Warn("transcript unreadable, session-end skipped", "path", transcriptPath, "error", err)
		return
	}

	domainName := domainFromCWD(cwd)

	decisionsDone := make(chan struct{})
	go func() {
		defer close(decisionsDone)
		s.storeKeyDecisions(ctx, msgs, domainName)
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.feedback.Correlate(ctx, sessionID, msgs)
	}()
	go func() {
		defer wg.Done()
		s.storeSummary(ctx, msgs, domainName)
	}()
	wg.Wait()

	s.log.Info("session-end complete", "messages", len(msgs))

	// Extraction keeps running past the completion line; the process only
	// lingers for it, it never fails for it.
	select {
	case <-decisionsDone:
	case <-time.After(s.decisionsGrace):
		s.log.Info("key-decision extraction abandoned at process exit")
	}
}

func (s *SessionEndService) storeSummary(ctx context.Context, msgs []domain.TranscriptMessage, domainName string) {
	summary, ok := s.chain.Summarize(ctx, msgs)
	if !ok {
		s.log.Info("no summary produced")
		return
	}

	draft := domain.MemoryDraft{
		Content:    summary.Content,
		Domain:     domainName,
		Source:     "session_end",
		Type:       "session",
		Tags:       summary.Tags,
		Importance: summary.Importance,
	}
	if err := s.memories.Store(ctx, draft); err != nil {
		s.log.Warn("summary store failed", "provenance", summary.Provenance, "error", err)
		return
	}

	s.log.Info("summary stored", "provenance", summary.Provenance, "chars", len(summary.Content))
}

func (s *SessionEndService) storeKeyDecisions(ctx context.Context, msgs []domain.TranscriptMessage, domainName string) {
	for _, decision := range s.extractor.Extract(ctx, msgs) {
		decisionDomain := decision.Domain
		if decisionDomain == "" {
			decisionDomain = domainName
		}
		draft := domain.MemoryDraft{
			Content:    decision.Finding,
			Domain:     decisionDomain,
			Source:     "session_end",
			Type:       "decision",
			Tags:       append(decision.Tags, "key-decision"),
			Importance: decision.StoreImportance(),
		}
		if err := s.memories.Store(ctx, draft); err != nil {
			s.log.Warn("key-decision store failed", "error", err)
		}
	}
}

func domainFromCWD(cwd string) string {
	if cwd == "" {
		return "general"
	}

	return filepath.Base(filepath.Clean(cwd))
}

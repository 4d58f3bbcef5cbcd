package application

import (
	"context"
	"log/slog"

	"github.com/recallkit/recallkit/internal/domain"
	"github.com/recallkit/recallkit/internal/ports"
)

// StatusReport is what one status refresh renders: the usage snapshot plus
// the handoff state it resolved to.
type StatusReport struct {
	Window    domain.ContextWindow
	State     domain.HandoffState
	Threshold float64
}

// HandoffService is the per-session NOT_FIRED → FIRED state machine. The
// transition is owned by whichever invocation wins the atomic marker create;
// everything after that renders confirmation and does nothing.
type HandoffService struct {
	store     ports.SessionStore
	detacher  ports.Detacher
	threshold float64
	log       *slog.Logger
}

func NewHandoffService(store ports.SessionStore, detacher ports.Detacher, threshold float64, log *slog.Logger) *HandoffService {
	if threshold <= 0 {
		threshold = domain.DefaultHandoffThreshold
	}
	if log == nil {
		log = discardLogger()
	}

	return &HandoffService{store: store, detacher: detacher, threshold: threshold, log: log}
}

// Check evaluates one status refresh. It always produces a renderable report;
// the firing side effects happen at most once per session.
func (s *HandoffService) Check(ctx context.Context, sessionID string, window domain.ContextWindow, payload ports.HandoffPayload) StatusReport {
	report := StatusReport{Window: window, Threshold: s.threshold}

	if !window.Known {
		report.State = domain.HandoffUnknown
		return report
	}
	if !window.OverThreshold(s.threshold) {
		report.State = domain.HandoffWatching
		return report
	}

	first, err := s.store.MarkFired(ctx, sessionID)
	if err != nil {
		s.log.Warn("handoff marker write failed", "error", err)
		report.State = domain.HandoffWatching
		return report
	}
	if !first {
		report.State = domain.HandoffFired
		return report
	}

	s.log.Info("handoff firing", "used_pct", payload.UsedPercentage, "threshold", s.threshold)
	if err := s.detacher.Detach(payload); err != nil {
		// The marker stays: one spawn attempt per session, successful or not.
		// The end-of-session summary remains the continuity fallback.
		s.log.Warn("handoff worker spawn failed", "error", err)
	}
	report.State = domain.HandoffFiring

	return report
}

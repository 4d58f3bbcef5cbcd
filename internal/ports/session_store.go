package ports

import (
	"context"

	"github.com/recallkit/recallkit/internal/domain"
)

// SessionStore is the only long-lived mutable state in the subsystem: the
// per-session injected-memory log and the handoff fired marker. Hook
// processes are short-lived, so every method is a full round-trip to the
// backing medium.
type SessionStore interface {
	// AppendInjected adds a record to the session's bounded log, evicting the
	// oldest entry once the cap is reached.
	AppendInjected(ctx context.Context, sessionID string, rec domain.InjectedMemoryRecord) error

	// ConsumeInjected reads the session's log and deletes it in the same
	// operation. Returns domain.ErrLogNotFound when no log exists for the
	// session (including the legacy unscoped location).
	ConsumeInjected(ctx context.Context, sessionID string) ([]domain.InjectedMemoryRecord, error)

	// MarkFired records the handoff transition with an atomic create-if-absent.
	// The single caller that observes first == true owns the transition.
	MarkFired(ctx context.Context, sessionID string) (first bool, err error)

	// Fired reports whether the session's handoff marker exists.
	Fired(ctx context.Context, sessionID string) (bool, error)
}

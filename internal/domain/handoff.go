package domain

// DefaultHandoffThreshold is the context-window usage percentage at which the
// handoff fires.
const DefaultHandoffThreshold = 65.0

// HandoffState is the per-session handoff lifecycle. Fired is terminal for
// the session's lifetime.
type HandoffState int

const (
	// HandoffUnknown means the host supplied no usable context-window data.
	HandoffUnknown HandoffState = iota
	// HandoffWatching means usage is below the threshold.
	HandoffWatching
	// HandoffFiring means this invocation crossed the threshold first and
	// spawned the detached summary worker.
	HandoffFiring
	// HandoffFired means a previous invocation already fired.
	HandoffFired
)

// ContextWindow is the host-supplied usage snapshot.
type ContextWindow struct {
	UsedPercentage float64
	Known          bool
}

// OverThreshold reports whether usage has crossed the firing threshold.
func (w ContextWindow) OverThreshold(threshold float64) bool {
	return w.Known && w.UsedPercentage >= threshold
}

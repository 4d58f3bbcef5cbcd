package ports

// HandoffPayload is the closure of state carried to the detached summary
// worker. The worker runs in a separate OS process, so everything it needs
// travels by value.
type HandoffPayload struct {
	SessionID      string  `toml:"session_id"`
	TranscriptPath string  `toml:"transcript_path"`
	CWD            string  `toml:"cwd"`
	UsedPercentage float64 `toml:"used_percentage"`
	TotalCostUSD   float64 `toml:"total_cost_usd"`
}

// Detacher moves work whose latency exceeds the hook's timeout budget into a
// process detached from the caller. Detach returns as soon as the worker is
// launched; the caller never observes its completion.
type Detacher interface {
	Detach(payload HandoffPayload) error
}

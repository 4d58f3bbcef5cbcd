package cmd

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/recallkit/recallkit/internal/domain"
)

const (
	// The host enforces its own hook deadline; anything still missing from
	// stdin once the budget runs out is treated as absent, never waited for.
	stdinReadBudget = 2500 * time.Millisecond

	maxStdinBytes = 1 << 20
)

type hookInput struct {
	SessionID      string             `json:"session_id"`
	Prompt         string             `json:"prompt"`
	TranscriptPath string             `json:"transcript_path"`
	CWD            string             `json:"cwd"`
	Cost           costInfo           `json:"cost"`
	ContextWindow  *contextWindowInfo `json:"context_window"`
}

type costInfo struct {
	TotalCostUSD float64 `json:"total_cost_usd"`
}

type contextWindowInfo struct {
	UsedPercentage float64 `json:"used_percentage"`
}

// readHookInput decodes the single JSON object the host writes on stdin.
// Malformed or partial input yields the zero value; hooks degrade to a no-op
// rather than surface an error to the host.
func readHookInput(r io.Reader, budget time.Duration) hookInput {
	ch := make(chan hookInput, 1)
	go func() {
		var in hookInput
		if data, err := io.ReadAll(io.LimitReader(r, maxStdinBytes)); err == nil {
			_ = json.Unmarshal(data, &in)
		}
		ch <- in
	}()

	select {
	case in := <-ch:
		return in
	case <-time.After(budget):
		return hookInput{}
	}
}

func (in hookInput) session() string {
	if strings.TrimSpace(in.SessionID) == "" {
		return "unknown"
	}
	return in.SessionID
}

func (in hookInput) window() domain.ContextWindow {
	if in.ContextWindow == nil {
		return domain.ContextWindow{}
	}
	return domain.ContextWindow{
		UsedPercentage: in.ContextWindow.UsedPercentage,
		Known:          true,
	}
}

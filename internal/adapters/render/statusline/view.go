// Package statusline renders the single ANSI line the host shows on every
// status refresh. One line, no trailing newline; the host owns the rest.
package statusline

import (
	"fmt"

	"github.com/recallkit/recallkit/internal/application"
	"github.com/recallkit/recallkit/internal/domain"
)

func Render(report application.StatusReport) string {
	return renderView(report, newStyles())
}

func renderView(report application.StatusReport, s styles) string {
	return renderUsage(report, s) + "  " + renderState(report, s)
}

func renderUsage(report application.StatusReport, s styles) string {
	if !report.Window.Known {
		return s.unknown.Render("ctx —")
	}

	label := fmt.Sprintf("ctx %.0f%%", report.Window.UsedPercentage)
	switch {
	case report.Window.UsedPercentage >= report.Threshold:
		return s.usageHigh.Render(label)
	case report.Window.UsedPercentage >= report.Threshold-15:
		return s.usageWarn.Render(label)
	default:
		return s.usageLow.Render(label)
	}
}

func renderState(report application.StatusReport, s styles) string {
	switch report.State {
	case domain.HandoffFiring:
		return s.firing.Render("⚡ HANDOFF")
	case domain.HandoffFired:
		return s.fired.Render("✓ handoff sent")
	case domain.HandoffWatching:
		return s.watch.Render(fmt.Sprintf("◷ handoff pending at %.0f%%", report.Threshold))
	default:
		return s.unknown.Render("◌ no context data")
	}
}

package domain

import (
	"strings"
	"time"
)

type MemoryID string

// InjectedLogCap bounds the per-session injected-memory log. Appending past
// the cap evicts the oldest entry.
const InjectedLogCap = 500

// InjectedMemoryRecord marks one memory surfaced into the conversation. The
// same memory id may appear in multiple records; deduplication happens only
// when the log is consumed for feedback.
type InjectedMemoryRecord struct {
	MemoryID  MemoryID
	Timestamp time.Time
	Source    string
}

const MemoryTypeAntipattern = "antipattern"

// MemoryHit is one ranked search result from the memory service.
type MemoryHit struct {
	ID         MemoryID
	Content    string
	Type       string
	Tags       []string
	Similarity float64
}

// Antipattern reports whether the memory is flagged as something to avoid,
// either by type or by tag.
func (h MemoryHit) Antipattern() bool {
	if h.Type == MemoryTypeAntipattern {
		return true
	}
	for _, tag := range h.Tags {
		if strings.EqualFold(tag, MemoryTypeAntipattern) {
			return true
		}
	}

	return false
}

// FilterBySimilarity keeps hits at or above the floor, preserving order.
func FilterBySimilarity(hits []MemoryHit, floor float64) []MemoryHit {
	kept := make([]MemoryHit, 0, len(hits))
	for _, hit := range hits {
		if hit.Similarity >= floor {
			kept = append(kept, hit)
		}
	}

	return kept
}

// MinFeedbackAssistantChars is the least assistant output worth correlating;
// below this there is no signal to attribute to the injected memories.
const MinFeedbackAssistantChars = 50

// Feedback correlates the memories injected during a session with the
// assistant's output. Consumed at most once per session.
type Feedback struct {
	InjectedIDs   []MemoryID
	AssistantText string
}

// DedupeIDs collapses repeated injections of the same memory, first
// occurrence order preserved.
func DedupeIDs(records []InjectedMemoryRecord) []MemoryID {
	seen := make(map[MemoryID]struct{}, len(records))
	ids := make([]MemoryID, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.MemoryID]; ok {
			continue
		}
		seen[rec.MemoryID] = struct{}{}
		ids = append(ids, rec.MemoryID)
	}

	return ids
}

// MemoryDraft is the payload submitted to the memory store.
type MemoryDraft struct {
	Content    string
	Domain     string
	Source     string
	Type       string
	Tags       []string
	Importance float64
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/recallkit/recallkit/internal/domain"
	"github.com/recallkit/recallkit/internal/ports"
)

const (
	injectionHeader = "## Relevant memories from previous sessions"
	maxBulletChars  = 400
	recordSource    = "search"
)

type RetrievalConfig struct {
	Limit         int
	MinSimilarity float64
	Domain        string
}

// RetrievalService surfaces stored memories into the prompt and tracks what
// was surfaced. Every failure collapses to an empty injection; retrieval must
// never make the host conversation worse.
type RetrievalService struct {
	store    ports.SessionStore
	memories ports.MemoryService
	clock    ports.Clock
	log      *slog.Logger
	cfg      RetrievalConfig
}

func NewRetrievalService(store ports.SessionStore, memories ports.MemoryService, clock ports.Clock, log *slog.Logger, cfg RetrievalConfig) *RetrievalService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if log == nil {
		log = discardLogger()
	}

	return &RetrievalService{store: store, memories: memories, clock: clock, log: log, cfg: cfg}
}

// Inject returns the formatted context block for a prompt, or "" when there
// is nothing worth injecting. Surfaced memory ids are recorded in the session
// log before the block is returned, so tracking survives a crash between
// formatting and delivery.
func (s *RetrievalService) Inject(ctx context.Context, sessionID, prompt, cwd string) string {
	if domain.TrivialPrompt(prompt) {
		return ""
	}

	hits, err := s.memories.Search(ctx, ports.SearchQuery{
		Query:  prompt,
		Limit:  s.cfg.Limit,
		Domain: s.searchDomain(cwd),
	})
	if err != nil {
		s.log.Warn("memory search failed", "error", err)
		return ""
	}

	kept := domain.FilterBySimilarity(hits, s.cfg.MinSimilarity)
	if len(kept) == 0 {
		return ""
	}

	now := s.clock.Now()
	for _, hit := range kept {
		rec := domain.InjectedMemoryRecord{MemoryID: hit.ID, Timestamp: now, Source: recordSource}
		if err := s.store.AppendInjected(ctx, sessionID, rec); err != nil {
			s.log.Warn("injected-log append failed", "memory_id", hit.ID, "error", err)
		}
	}

	return formatMemories(kept)
}

func (s *RetrievalService) searchDomain(cwd string) string {
	if s.cfg.Domain != "" {
		return s.cfg.Domain
	}
	if cwd == "" {
		return ""
	}

	return filepath.Base(cwd)
}

// formatMemories renders survivors as a markdown block, grouped by memory
// type in first-seen order. Anti-pattern content is called out so the model
// reads it as a warning rather than a recipe.
func formatMemories(hits []domain.MemoryHit) string {
	groups := make(map[string][]domain.MemoryHit)
	order := make([]string, 0, len(hits))
	for _, hit := range hits {
		memType := hit.Type
		if memType == "" {
			memType = "memory"
		}
		if _, seen := groups[memType]; !seen {
			order = append(order, memType)
		}
		groups[memType] = append(groups[memType], hit)
	}

	var b strings.Builder
	b.WriteString(injectionHeader)
	b.WriteString("\n")
	for _, memType := range order {
		b.WriteString(fmt.Sprintf("\n**%s**\n", memType))
		for _, hit := range groups[memType] {
			if hit.Antipattern() {
				b.WriteString("- ⚠ AVOID: ")
			} else {
				b.WriteString("- ")
			}
			b.WriteString(truncateFlat(hit.Content, maxBulletChars))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func truncateFlat(raw string, max int) string {
	flat := strings.Join(strings.Fields(raw), " ")
	if len(flat) <= max {
		return flat
	}

	return flat[:max] + "…"
}

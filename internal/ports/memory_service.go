package ports

import (
	"context"

	"github.com/recallkit/recallkit/internal/domain"
)

type SearchQuery struct {
	Query  string
	Limit  int
	Domain string
}

// MemoryService is the external memory backend, reached only over HTTP.
// Storage, ranking, and decay are the backend's business.
type MemoryService interface {
	Search(ctx context.Context, q SearchQuery) ([]domain.MemoryHit, error)
	SubmitFeedback(ctx context.Context, fb domain.Feedback) error
	Store(ctx context.Context, draft domain.MemoryDraft) error
}

// Package memoryapi is the resty client for the external memory REST API.
// The API is an opaque JSON-over-HTTP boundary; this adapter only shapes
// requests and responses.
package memoryapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/recallkit/recallkit/internal/domain"
	"github.com/recallkit/recallkit/internal/ports"
)

type Config struct {
	BaseURL         string
	SearchTimeout   time.Duration
	FeedbackTimeout time.Duration
	StoreTimeout    time.Duration
}

type Client struct {
	http *resty.Client
	cfg  Config
}

var _ ports.MemoryService = (*Client)(nil)

func NewClient(cfg Config) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetHeader("Content-Type", "application/json"),
		cfg: cfg,
	}
}

type searchRequest struct {
	Query  string `json:"query"`
	Limit  int    `json:"limit"`
	Domain string `json:"domain,omitempty"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Memory     searchMemory `json:"memory"`
	Similarity float64      `json:"similarity"`
}

type searchMemory struct {
	ID         string   `json:"id"`
	Content    string   `json:"content"`
	MemoryType string   `json:"memory_type"`
	Tags       []string `json:"tags"`
}

func (c *Client) Search(ctx context.Context, q ports.SearchQuery) ([]domain.MemoryHit, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.SearchTimeout)
	defer cancel()

	var out searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(searchRequest{Query: q.Query, Limit: q.Limit, Domain: q.Domain}).
		SetResult(&out).
		Post("/search/browse")
	if err != nil {
		return nil, fmt.Errorf("search memories: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("search memories: unexpected status %d", resp.StatusCode())
	}

	hits := make([]domain.MemoryHit, 0, len(out.Results))
	for _, result := range out.Results {
		hits = append(hits, domain.MemoryHit{
			ID:         domain.MemoryID(result.Memory.ID),
			Content:    result.Memory.Content,
			Type:       result.Memory.MemoryType,
			Tags:       result.Memory.Tags,
			Similarity: result.Similarity,
		})
	}

	return hits, nil
}

type feedbackRequest struct {
	InjectedIDs   []string `json:"injected_ids"`
	AssistantText string   `json:"assistant_text"`
}

func (c *Client) SubmitFeedback(ctx context.Context, fb domain.Feedback) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.FeedbackTimeout)
	defer cancel()

	ids := make([]string, 0, len(fb.InjectedIDs))
	for _, id := range fb.InjectedIDs {
		ids = append(ids, string(id))
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(feedbackRequest{InjectedIDs: ids, AssistantText: fb.AssistantText}).
		Post("/memory/feedback")
	if err != nil {
		return fmt.Errorf("submit feedback: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("submit feedback: unexpected status %d", resp.StatusCode())
	}

	return nil
}

type storeRequest struct {
	Content    string   `json:"content"`
	Domain     string   `json:"domain"`
	Source     string   `json:"source"`
	MemoryType string   `json:"memory_type"`
	Tags       []string `json:"tags"`
	Importance float64  `json:"importance"`
}

func (c *Client) Store(ctx context.Context, draft domain.MemoryDraft) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(storeRequest{
			Content:    draft.Content,
			Domain:     draft.Domain,
			Source:     draft.Source,
			MemoryType: draft.Type,
			Tags:       draft.Tags,
			Importance: draft.Importance,
		}).
		Post("/memory/store")
	if err != nil {
		return fmt.Errorf("store memory: %w", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return fmt.Errorf("store memory: unexpected status %d", resp.StatusCode())
	}

	return nil
}

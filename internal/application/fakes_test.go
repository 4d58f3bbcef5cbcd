package application

import (
	"context"
	"sync"
	"time"

	"github.com/recallkit/recallkit/internal/domain"
	"github.com/recallkit/recallkit/internal/ports"
)

// fakeSessionStore is the in-memory SessionStore used across service tests.
type fakeSessionStore struct {
	mu         sync.Mutex
	logs       map[string][]domain.InjectedMemoryRecord
	fired      map[string]bool
	appendErr  error
	consumeErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		logs:  map[string][]domain.InjectedMemoryRecord{},
		fired: map[string]bool{},
	}
}

func (f *fakeSessionStore) AppendInjected(_ context.Context, sessionID string, rec domain.InjectedMemoryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	log := append(f.logs[sessionID], rec)
	if len(log) > domain.InjectedLogCap {
		log = log[len(log)-domain.InjectedLogCap:]
	}
	f.logs[sessionID] = log
	return nil
}

func (f *fakeSessionStore) ConsumeInjected(_ context.Context, sessionID string) ([]domain.InjectedMemoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	records, ok := f.logs[sessionID]
	if !ok || len(records) == 0 {
		return nil, domain.ErrLogNotFound
	}
	delete(f.logs, sessionID)
	return records, nil
}

func (f *fakeSessionStore) MarkFired(_ context.Context, sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fired[sessionID] {
		return false, nil
	}
	f.fired[sessionID] = true
	return true, nil
}

func (f *fakeSessionStore) Fired(_ context.Context, sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fired[sessionID], nil
}

func (f *fakeSessionStore) records(sessionID string) []domain.InjectedMemoryRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.InjectedMemoryRecord(nil), f.logs[sessionID]...)
}

// fakeMemoryService records every call and serves canned search results.
type fakeMemoryService struct {
	mu          sync.Mutex
	searchHits  []domain.MemoryHit
	searchErr   error
	feedbackErr error
	storeErr    error

	searchCalls   []ports.SearchQuery
	feedbackCalls []domain.Feedback
	storeCalls    []domain.MemoryDraft
}

func (f *fakeMemoryService) Search(_ context.Context, q ports.SearchQuery) ([]domain.MemoryHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, q)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchHits, nil
}

func (f *fakeMemoryService) SubmitFeedback(_ context.Context, fb domain.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedbackCalls = append(f.feedbackCalls, fb)
	return f.feedbackErr
}

func (f *fakeMemoryService) Store(_ context.Context, draft domain.MemoryDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.storeCalls = append(f.storeCalls, draft)
	return f.storeErr
}

func (f *fakeMemoryService) stored() []domain.MemoryDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.MemoryDraft(nil), f.storeCalls...)
}

func (f *fakeMemoryService) feedback() []domain.Feedback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Feedback(nil), f.feedbackCalls...)
}

func (f *fakeMemoryService) searches() []ports.SearchQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.SearchQuery(nil), f.searchCalls...)
}

// fakeGenerator returns a fixed response or error, counting calls.
type fakeGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	calls    []ports.GenerateRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req ports.GenerateRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeDetacher struct {
	mu       sync.Mutex
	err      error
	payloads []ports.HandoffPayload
}

func (f *fakeDetacher) Detach(payload ports.HandoffPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return f.err
}

func (f *fakeDetacher) spawns() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

type fakeReader struct {
	msgs []domain.TranscriptMessage
	err  error
}

func (f fakeReader) Read(string) ([]domain.TranscriptMessage, error) {
	return f.msgs, f.err
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func userMsg(text string) domain.TranscriptMessage {
	return domain.TranscriptMessage{Role: domain.RoleUser, Text: text}
}

func assistantMsg(text string) domain.TranscriptMessage {
	return domain.TranscriptMessage{Role: domain.RoleAssistant, Text: text}
}

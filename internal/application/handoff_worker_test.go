package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/recallkit/recallkit/internal/domain"
	"github.com/recallkit/recallkit/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerStoresHandoffMemory(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{response: "Handoff: mid-refactor of the session store, marker semantics settled, tests pending."}
	memories := &fakeMemoryService{}
	worker := NewHandoffWorker(
		fakeReader{msgs: longSession()},
		NewLLMSummarizer(gen, "qwen3:8b", 2*time.Minute, nil),
		memories,
		nil,
	)

	worker.Run(context.Background(), ports.HandoffPayload{
		SessionID:      "sess-1",
		TranscriptPath: "/tmp/t.jsonl",
		CWD:            "/home/dev/recall",
		UsedPercentage: 70,
	})

	stored := memories.stored()
	require.Len(t, stored, 1)
	assert.Equal(t, "handoff", stored[0].Type)
	assert.Equal(t, "handoff", stored[0].Source)
	assert.Equal(t, "recall", stored[0].Domain)
	assert.Contains(t, stored[0].Tags, "handoff")
	assert.InDelta(t, domain.ImportanceHandoff, stored[0].Importance, 1e-9,
		"handoffs outrank regular session summaries")
}

func TestWorkerSwallowsSummaryFailure(t *testing.T) {
	t.Parallel()

	memories := &fakeMemoryService{}
	worker := NewHandoffWorker(
		fakeReader{msgs: longSession()},
		NewLLMSummarizer(&fakeGenerator{err: errors.New("model busy")}, "qwen3:8b", time.Second, nil),
		memories,
		nil,
	)

	worker.Run(context.Background(), ports.HandoffPayload{TranscriptPath: "/tmp/t.jsonl"})
	assert.Empty(t, memories.stored())
}

func TestWorkerSwallowsTranscriptFailure(t *testing.T) {
	t.Parallel()

	memories := &fakeMemoryService{}
	worker := NewHandoffWorker(
		fakeReader{err: errors.New("gone")},
		NewLLMSummarizer(&fakeGenerator{response: "irrelevant"}, "qwen3:8b", time.Second, nil),
		memories,
		nil,
	)

	worker.Run(context.Background(), ports.HandoffPayload{TranscriptPath: "/gone.jsonl"})
	assert.Empty(t, memories.stored())
}

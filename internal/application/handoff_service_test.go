package application

import (
	"context"
	"errors"
	"testing"

	"github.com/recallkit/recallkit/internal/domain"
	"github.com/recallkit/recallkit/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window(pct float64) domain.ContextWindow {
	return domain.ContextWindow{UsedPercentage: pct, Known: true}
}

func handoffPayload(pct float64) ports.HandoffPayload {
	return ports.HandoffPayload{
		SessionID:      "sess-1",
		TranscriptPath: "/tmp/t.jsonl",
		CWD:            "/home/dev/recall",
		UsedPercentage: pct,
	}
}

func TestCheckBelowThresholdWatchesWithoutMarker(t *testing.T) {
	t.Parallel()

	store := newFakeSessionStore()
	detacher := &fakeDetacher{}
	service := NewHandoffService(store, detacher, 65, nil)

	for _, pct := range []float64{10, 50, 64.9} {
		report := service.Check(context.Background(), "sess-1", window(pct), handoffPayload(pct))
		assert.Equal(t, domain.HandoffWatching, report.State)
	}

	fired, err := store.Fired(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.False(t, fired, "the marker is never written below the threshold")
	assert.Zero(t, detacher.spawns())
}

func TestCheckFiresExactlyOncePerSession(t *testing.T) {
	t.Parallel()

	store := newFakeSessionStore()
	detacher := &fakeDetacher{}
	service := NewHandoffService(store, detacher, 65, nil)

	first := service.Check(context.Background(), "sess-1", window(70), handoffPayload(70))
	assert.Equal(t, domain.HandoffFiring, first.State)

	for i := 0; i < 5; i++ {
		again := service.Check(context.Background(), "sess-1", window(72), handoffPayload(72))
		assert.Equal(t, domain.HandoffFired, again.State)
	}

	assert.Equal(t, 1, detacher.spawns(), "N invocations over threshold, one spawn")
	require.Len(t, detacher.payloads, 1)
	assert.Equal(t, "sess-1", detacher.payloads[0].SessionID)
	assert.Equal(t, "/tmp/t.jsonl", detacher.payloads[0].TranscriptPath)
}

func TestCheckSeparateSessionsFireIndependently(t *testing.T) {
	t.Parallel()

	store := newFakeSessionStore()
	detacher := &fakeDetacher{}
	service := NewHandoffService(store, detacher, 65, nil)

	assert.Equal(t, domain.HandoffFiring, service.Check(context.Background(), "sess-1", window(80), handoffPayload(80)).State)
	assert.Equal(t, domain.HandoffFiring, service.Check(context.Background(), "sess-2", window(80), handoffPayload(80)).State)
	assert.Equal(t, 2, detacher.spawns())
}

func TestCheckUnknownWindowSkipsTransition(t *testing.T) {
	t.Parallel()

	store := newFakeSessionStore()
	detacher := &fakeDetacher{}
	service := NewHandoffService(store, detacher, 65, nil)

	report := service.Check(context.Background(), "sess-1", domain.ContextWindow{}, handoffPayload(0))
	assert.Equal(t, domain.HandoffUnknown, report.State)
	assert.Zero(t, detacher.spawns())
}

func TestCheckSpawnFailureStillConsumesTheTransition(t *testing.T) {
	t.Parallel()

	store := newFakeSessionStore()
	detacher := &fakeDetacher{err: errors.New("fork failed")}
	service := NewHandoffService(store, detacher, 65, nil)

	report := service.Check(context.Background(), "sess-1", window(70), handoffPayload(70))
	assert.Equal(t, domain.HandoffFiring, report.State)

	again := service.Check(context.Background(), "sess-1", window(70), handoffPayload(70))
	assert.Equal(t, domain.HandoffFired, again.State)
	assert.Equal(t, 1, detacher.spawns(), "no respawn; the end-of-session summary is the fallback")
}

func TestCheckDefaultsThreshold(t *testing.T) {
	t.Parallel()

	service := NewHandoffService(newFakeSessionStore(), &fakeDetacher{}, 0, nil)
	report := service.Check(context.Background(), "sess-1", window(10), handoffPayload(10))
	assert.InDelta(t, domain.DefaultHandoffThreshold, report.Threshold, 1e-9)
}

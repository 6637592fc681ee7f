package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvSnapshot(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "snapshot channel closed early")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}

func TestWatch_InitialSnapshotAndEventPush(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := uc.Add(ctx, "alice", Input{Title: "existing"})
	require.NoError(t, err)

	endOfDay := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	snapshots, stop, err := uc.Watch(ctx, "alice", WatchParams{EndOfLocalDay: endOfDay, CompletedLimit: 10})
	require.NoError(t, err)
	defer stop()

	first := recvSnapshot(t, snapshots)
	assert.Len(t, first.Buckets.Unscheduled, 1)
	assert.Equal(t, 1, first.Counts.Unscheduled)

	_, err = uc.Add(ctx, "alice", Input{Title: "another"})
	require.NoError(t, err)

	second := recvSnapshot(t, snapshots)
	assert.Len(t, second.Buckets.Unscheduled, 2)
	assert.Equal(t, 2, second.Counts.Unscheduled)
}

func TestWatch_MinuteTickRebuckets(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// due later this morning, with a time of day
	dueAt := refMonday.Add(30 * time.Minute)
	_, err := uc.Add(ctx, "alice", Input{Title: "soon", DueDate: &dueAt, HasDueTime: true})
	require.NoError(t, err)

	endOfDay := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	snapshots, stop, err := uc.Watch(ctx, "alice", WatchParams{EndOfLocalDay: endOfDay})
	require.NoError(t, err)
	defer stop()

	first := recvSnapshot(t, snapshots)
	assert.Len(t, first.Buckets.Today, 1)
	assert.Empty(t, first.Buckets.Overdue)

	// the clock passes the due instant with no store change
	uc.broadcastTick(refMonday.Add(31 * time.Minute))

	second := recvSnapshot(t, snapshots)
	assert.Empty(t, second.Buckets.Today)
	assert.Len(t, second.Buckets.Overdue, 1)
	assert.Equal(t, 1, second.Counts.Today)
}

func TestWatch_StopIsIdempotentAndEndsPushes(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()

	endOfDay := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	snapshots, stop, err := uc.Watch(ctx, "alice", WatchParams{EndOfLocalDay: endOfDay})
	require.NoError(t, err)

	recvSnapshot(t, snapshots)
	stop()
	stop()

	// a later mutation must not reach the torn-down observer
	_, err = uc.Add(ctx, "alice", Input{Title: "after stop"})
	require.NoError(t, err)

	select {
	case _, ok := <-snapshots:
		assert.False(t, ok, "expected closed snapshot channel")
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot channel not closed after stop")
	}
}

func TestWatch_RequiresIdentityAndBoundary(t *testing.T) {
	uc, _, _ := newTestUseCase()
	ctx := context.Background()

	_, _, err := uc.Watch(ctx, "", WatchParams{EndOfLocalDay: time.Now()})
	assert.Error(t, err)

	_, _, err = uc.Watch(ctx, "alice", WatchParams{})
	assert.Error(t, err)
}

package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBroker_DeliversToOwnerOnly(t *testing.T) {
	broker := NewMemoryBroker()
	ctx := context.Background()

	aliceCh, stopAlice, err := broker.Subscribe(ctx, "alice")
	require.NoError(t, err)
	defer stopAlice()

	bobCh, stopBob, err := broker.Subscribe(ctx, "bob")
	require.NoError(t, err)
	defer stopBob()

	require.NoError(t, broker.Publish(ctx, Event{Owner: "alice", TaskID: "t1", Kind: EventCreated}))

	select {
	case event := <-aliceCh:
		assert.Equal(t, "t1", event.TaskID)
		assert.Equal(t, EventCreated, event.Kind)
		assert.False(t, event.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("alice never received her event")
	}

	select {
	case event := <-bobCh:
		t.Fatalf("bob received alice's event: %+v", event)
	default:
	}
}

func TestMemoryBroker_UnsubscribeIsIdempotent(t *testing.T) {
	broker := NewMemoryBroker()
	ctx := context.Background()

	ch, stop, err := broker.Subscribe(ctx, "alice")
	require.NoError(t, err)

	stop()
	stop()

	// no delivery after unsubscribe, and the channel is closed
	require.NoError(t, broker.Publish(ctx, Event{Owner: "alice", TaskID: "t1", Kind: EventDeleted}))
	_, open := <-ch
	assert.False(t, open)
}

func TestMemoryBroker_ContextCancelStops(t *testing.T) {
	broker := NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())

	ch, _, err := broker.Subscribe(ctx, "alice")
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after context cancel")
	}
}

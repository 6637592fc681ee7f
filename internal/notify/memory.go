package notify

import (
	"context"
	"sync"
	"time"
)

// MemoryBroker is an in-process Broker for single-node deployments and
// tests. Slow subscribers lose events rather than block publishers.
type MemoryBroker struct {
	mu   sync.RWMutex
	subs map[string]map[int]chan Event
	next int
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[int]chan Event)}
}

func (b *MemoryBroker) Publish(ctx context.Context, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[event.Owner] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, owner string) (<-chan Event, func(), error) {
	ch := make(chan Event, 16)

	b.mu.Lock()
	id := b.next
	b.next++
	if b.subs[owner] == nil {
		b.subs[owner] = make(map[int]chan Event)
	}
	b.subs[owner][id] = ch
	b.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[owner], id)
			// publishers hold the read lock while sending, so closing
			// under the write lock cannot race a send
			close(ch)
			b.mu.Unlock()
		})
	}

	go func() {
		<-ctx.Done()
		stop()
	}()

	return ch, stop, nil
}

var _ Broker = (*MemoryBroker)(nil)

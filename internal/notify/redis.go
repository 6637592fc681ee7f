package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "tasks:events:"

// RedisBroker distributes task change events over Redis pub/sub, one channel
// per owner, so every running instance pushes to its local subscribers.
type RedisBroker struct {
	client *redislib.Client
	logger *zap.Logger
}

func NewRedisBroker(client *redislib.Client, logger *zap.Logger) *RedisBroker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBroker{client: client, logger: logger}
}

func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channelPrefix+event.Owner, payload).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, owner string) (<-chan Event, func(), error) {
	sub := b.client.Subscribe(ctx, channelPrefix+owner)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan Event, 16)
	var once sync.Once
	stop := func() {
		once.Do(func() {
			_ = sub.Close()
		})
	}

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				stop()
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Warn("dropping malformed task event", zap.Error(err))
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					stop()
					return
				}
			}
		}
	}()

	return out, stop, nil
}

var _ Broker = (*RedisBroker)(nil)

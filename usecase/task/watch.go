package task

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dayplan/backend/domain"
)

// Snapshot is one pre-bucketed state pushed to a watch subscriber.
type Snapshot struct {
	Buckets Buckets   `json:"buckets"`
	Counts  Counts    `json:"counts"`
	At      time.Time `json:"at"`
}

// WatchParams fix the subscriber's day boundary and completed cap for the
// lifetime of the subscription.
type WatchParams struct {
	EndOfLocalDay  time.Time
	CompletedLimit int
}

// StartClock begins the once-per-minute tick that re-buckets Today and
// Overdue for all watchers without requiring new store events.
func (uc *UseCase) StartClock() {
	uc.tickMu.Lock()
	defer uc.tickMu.Unlock()
	if uc.clock != nil {
		return
	}
	uc.clock = cron.New()
	_, _ = uc.clock.AddFunc("@every 1m", func() {
		uc.broadcastTick(uc.now().Truncate(time.Minute))
	})
	uc.clock.Start()
}

// StopClock stops the minute tick, waiting for a running fan-out.
func (uc *UseCase) StopClock(ctx context.Context) {
	uc.tickMu.Lock()
	clock := uc.clock
	uc.clock = nil
	uc.tickMu.Unlock()
	if clock == nil {
		return
	}
	select {
	case <-clock.Stop().Done():
	case <-ctx.Done():
	}
}

func (uc *UseCase) broadcastTick(now time.Time) {
	uc.tickMu.Lock()
	defer uc.tickMu.Unlock()
	for _, ch := range uc.ticks {
		select {
		case ch <- now:
		default:
		}
	}
}

func (uc *UseCase) registerTick() (chan time.Time, func()) {
	ch := make(chan time.Time, 1)
	uc.tickMu.Lock()
	id := uc.nextID
	uc.nextID++
	uc.ticks[id] = ch
	uc.tickMu.Unlock()
	return ch, func() {
		uc.tickMu.Lock()
		delete(uc.ticks, id)
		uc.tickMu.Unlock()
	}
}

// Watch pushes a fresh snapshot whenever one of the owner's tasks changes
// and re-splits the today buckets on every minute tick. Cancelling ctx or
// calling the returned stop func ends the stream; both are idempotent.
func (uc *UseCase) Watch(ctx context.Context, identity string, params WatchParams) (<-chan Snapshot, func(), error) {
	if identity == "" {
		return nil, nil, domain.ErrUnauthenticated
	}
	if params.EndOfLocalDay.IsZero() {
		return nil, nil, domain.NewError(domain.ErrCodeInvalid, "end of local day is required")
	}

	events, stopEvents, err := uc.broker.Subscribe(ctx, identity)
	if err != nil {
		return nil, nil, err
	}
	tick, stopTick := uc.registerTick()

	out := make(chan Snapshot, 1)
	var once sync.Once
	stop := func() {
		once.Do(func() {
			stopEvents()
			stopTick()
		})
	}

	go func() {
		defer close(out)
		defer stop()

		snap, dueSoon, err := uc.buildSnapshot(ctx, identity, params, uc.now().Truncate(time.Minute))
		if err != nil {
			uc.logger.Error("watch snapshot failed", zap.Error(err))
			return
		}
		if !uc.push(ctx, out, snap) {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				snap, dueSoon, err = uc.buildSnapshot(ctx, identity, params, uc.now().Truncate(time.Minute))
				if err != nil {
					uc.logger.Error("watch snapshot failed", zap.Error(err))
					return
				}
				if !uc.push(ctx, out, snap) {
					return
				}
			case now := <-tick:
				// no store change: re-split the cached query result only
				snap.Buckets.Overdue, snap.Buckets.Today = SplitTodayOverdue(dueSoon, now)
				snap.Counts = CountBuckets(snap.Buckets)
				snap.At = now
				if !uc.push(ctx, out, snap) {
					return
				}
			}
		}
	}()

	return out, stop, nil
}

func (uc *UseCase) push(ctx context.Context, out chan<- Snapshot, snap Snapshot) bool {
	select {
	case out <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}

// buildSnapshot runs the four bucket queries and splits the today-and-
// overdue result; it also returns that raw result so minute ticks can
// re-split without touching the store.
func (uc *UseCase) buildSnapshot(ctx context.Context, identity string, params WatchParams, nowMinute time.Time) (Snapshot, []domain.Task, error) {
	unscheduled, err := uc.Unscheduled(ctx, identity)
	if err != nil {
		return Snapshot{}, nil, err
	}
	dueSoon, err := uc.TodayAndOverdue(ctx, identity, params.EndOfLocalDay)
	if err != nil {
		return Snapshot{}, nil, err
	}
	upcoming, err := uc.Upcoming(ctx, identity, params.EndOfLocalDay)
	if err != nil {
		return Snapshot{}, nil, err
	}
	completed, err := uc.Completed(ctx, identity, params.CompletedLimit)
	if err != nil {
		return Snapshot{}, nil, err
	}

	overdue, today := SplitTodayOverdue(dueSoon, nowMinute)
	buckets := Buckets{
		Unscheduled: unscheduled,
		Overdue:     overdue,
		Today:       today,
		Upcoming:    upcoming,
		Completed:   completed,
	}
	return Snapshot{
		Buckets: buckets,
		Counts:  CountBuckets(buckets),
		At:      nowMinute,
	}, dueSoon, nil
}

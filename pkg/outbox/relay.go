package outbox

import (
	"context"
	"log/slog"
	"time"
)

type Store interface {
	LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error)
	MarkSent(ctx context.Context, ids []int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string, final bool) error
}

type Relay struct {
	log       *slog.Logger
	store     Store
	dispatch  *Dispatcher
	relayID   string
	batchSize int
	interval  time.Duration
	lease     time.Duration
	attempts  int
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option { return func(r *Relay) { r.interval = d } }
func WithBatchSize(n int) Option          { return func(r *Relay) { r.batchSize = n } }

// WithMaxAttempts bounds how often one event is dispatched before it is
// parked as failed.
func WithMaxAttempts(n int) Option { return func(r *Relay) { r.attempts = n } }

func NewRelay(log *slog.Logger, store Store, dispatch *Dispatcher, relayID string, opts ...Option) *Relay {
	r := &Relay{
		log:       log,
		store:     store,
		dispatch:  dispatch,
		relayID:   relayID,
		batchSize: 100,
		interval:  500 * time.Millisecond,
		lease:     5 * time.Second,
		attempts:  5,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Relay) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("relay stopping", "relay_id", r.relayID)
			return nil
		case <-t.C:
			r.tick(ctx)
		}
	}
}

// tick moves one batch. A failed event is retried on later ticks until it
// runs out of attempts. Later events of the same aggregate keep their
// lease so they are not published ahead of it.
func (r *Relay) tick(ctx context.Context) {
	events, err := r.store.LockBatch(ctx, r.relayID, r.batchSize, r.lease)
	if err != nil {
		r.log.Error("relay lock batch error", "err", err)
		return
	}
	if len(events) == 0 {
		return
	}

	ids := make([]int64, 0, len(events))
	blocked := map[string]bool{}
	for _, e := range events {
		if blocked[e.AggregateID] {
			continue
		}
		if err := r.dispatch.Dispatch(ctx, e); err != nil {
			blocked[e.AggregateID] = true
			final := e.Attempts+1 >= r.attempts
			if final {
				r.log.Error("relay giving up on event", "event_id", e.ID, "type", e.Type, "attempts", e.Attempts+1)
			}
			if markErr := r.store.MarkFailed(ctx, e.ID, err.Error(), final); markErr != nil {
				r.log.Error("relay mark failed error", "event_id", e.ID, "err", markErr)
			}
			continue
		}
		ids = append(ids, e.ID)
	}
	if len(ids) > 0 {
		if err := r.store.MarkSent(ctx, ids); err != nil {
			r.log.Error("relay mark sent error", "err", err)
		}
	}
}

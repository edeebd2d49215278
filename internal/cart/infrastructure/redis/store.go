package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/doglivery/internal/cart/domain"
)

// Store keeps each cart as one JSON document. Every save pushes the
// expiry forward, so abandoned carts age out.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func key(id string) string { return "cart:" + id }

// maxUpdateAttempts bounds optimistic retries. Each failed attempt means
// another writer committed, so it is reached only under heavy contention.
const maxUpdateAttempts = 10

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, r getter, id string) (domain.Cart, error) {
	raw, err := r.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{ID: id, Items: []domain.Item{}}, nil
	}
	if err != nil {
		return domain.Cart{}, err
	}
	var c domain.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Cart{}, err
	}
	c.ID = id
	return c, nil
}

func (s *Store) Load(ctx context.Context, id string) (domain.Cart, error) {
	return load(ctx, s.rdb, id)
}

// Update runs fn under WATCH on the cart key and writes the result in a
// MULTI block; a concurrent write aborts the transaction and fn is
// applied again to the fresh cart.
func (s *Store) Update(ctx context.Context, id string, fn func(*domain.Cart) error) (domain.Cart, error) {
	var out domain.Cart
	txf := func(tx *redis.Tx) error {
		c, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(&c); err != nil {
			return err
		}
		if c.Items == nil {
			c.Items = []domain.Item{}
		}
		raw, err := json.Marshal(c)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(id), raw, s.ttl)
			return nil
		})
		if err == nil {
			out = c
		}
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.rdb.Watch(ctx, txf, key(id))
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return domain.Cart{}, err
		}
		return out, nil
	}
	return domain.Cart{}, domain.ErrCartBusy
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, key(id)).Err()
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/doglivery/internal/catalog/domain"
)

type StoreCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStoreCache(rdb *redis.Client, ttl time.Duration) *StoreCache {
	return &StoreCache{rdb: rdb, ttl: ttl}
}

// cachedStore keeps the pix key, which the public JSON form hides.
type cachedStore struct {
	domain.Store
	PixKey string `json:"pix_key"`
}

func key(slug string) string { return "catalog:store:" + slug }

func (c *StoreCache) Get(ctx context.Context, slug string) (domain.Store, bool, error) {
	raw, err := c.rdb.Get(ctx, key(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Store{}, false, nil
	}
	if err != nil {
		return domain.Store{}, false, err
	}
	var cs cachedStore
	if err := json.Unmarshal(raw, &cs); err != nil {
		return domain.Store{}, false, err
	}
	st := cs.Store
	st.PixKey = cs.PixKey
	return st, true, nil
}

func (c *StoreCache) Set(ctx context.Context, st domain.Store) error {
	raw, err := json.Marshal(cachedStore{Store: st, PixKey: st.PixKey})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(st.Slug), raw, c.ttl).Err()
}

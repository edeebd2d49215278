package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations is the sign-out denylist. Entries expire with the token.
type Revocations struct {
	rdb *redis.Client
}

func NewRevocations(rdb *redis.Client) *Revocations {
	return &Revocations{rdb: rdb}
}

func key(tokenID string) string { return "auth:revoked:" + tokenID }

func (r *Revocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, key(tokenID), "1", ttl).Err()
}

func (r *Revocations) Revoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

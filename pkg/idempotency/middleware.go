package idempotency

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const HeaderKey = "Idempotency-Key"

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Key(topic string, partition int, offset int64) string {
	return fmt.Sprintf("idem:%s:%d:%d", topic, partition, offset)
}

// Processed reports whether key was marked within the TTL.
func (s *Store) Processed(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkProcessed records key once its message has been handled.
func (s *Store) MarkProcessed(ctx context.Context, key string) error {
	return s.rdb.Set(ctx, key, "1", s.ttl).Err()
}

type storedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

func httpKey(r *http.Request, key string) string {
	return fmt.Sprintf("idem:http:%s:%s:%s", r.Method, r.URL.Path, key)
}

// Middleware replays the stored response for a repeated Idempotency-Key.
// Requests without the header pass through untouched. 5xx responses are
// not stored so the client can retry.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(HeaderKey)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		respKey := httpKey(r, key)
		lockKey := respKey + ":lock"

		if replayed, err := s.replay(ctx, w, respKey); err != nil || replayed {
			if err != nil {
				http.Error(w, `{"error":"idempotency store unavailable"}`, http.StatusServiceUnavailable)
			}
			return
		}

		locked, err := s.rdb.SetNX(ctx, lockKey, "1", s.ttl).Result()
		if err != nil {
			http.Error(w, `{"error":"idempotency store unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		if !locked {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"request with this idempotency key is in progress"}`))
			return
		}
		defer s.rdb.Del(context.WithoutCancel(ctx), lockKey)

		rec := &recorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if rec.status >= http.StatusInternalServerError {
			return
		}
		raw, err := json.Marshal(storedResponse{Status: rec.status, Body: rec.body.Bytes()})
		if err != nil {
			return
		}
		_ = s.rdb.Set(context.WithoutCancel(ctx), respKey, raw, s.ttl).Err()
	})
}

func (s *Store) replay(ctx context.Context, w http.ResponseWriter, respKey string) (bool, error) {
	raw, err := s.rdb.Get(ctx, respKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var stored storedResponse
	if err := json.Unmarshal(raw, &stored); err != nil {
		return false, err
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
	return true, nil
}

type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

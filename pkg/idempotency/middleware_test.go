package idempotency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewStore(rdb, time.Minute)
}

func TestProcessedMarks(t *testing.T) {
	mr, s := newTestStore(t)
	ctx := context.Background()
	key := s.Key("order.events", 0, 42)
	assert.Equal(t, "idem:order.events:0:42", key)

	done, err := s.Processed(ctx, key)
	require.NoError(t, err)
	assert.False(t, done)

	// Checking alone never marks.
	done, err = s.Processed(ctx, key)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, s.MarkProcessed(ctx, key))
	done, err = s.Processed(ctx, key)
	require.NoError(t, err)
	assert.True(t, done)

	mr.FastForward(2 * time.Minute)
	done, err = s.Processed(ctx, key)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestMiddlewareReplaysResponse(t *testing.T) {
	_, s := newTestStore(t)
	calls := 0
	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{}`))
		req.Header.Set(HeaderKey, "abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := do()
	second := do()

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, `{"success":true}`, second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
}

func TestMiddlewareDoesNotStoreServerErrors(t *testing.T) {
	_, s := newTestStore(t)
	calls := 0
	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req.Header.Set(HeaderKey, "k")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 2, calls)
}

func TestMiddlewareWithoutHeaderPassesThrough(t *testing.T) {
	_, s := newTestStore(t)
	calls := 0
	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	for i := 0; i < 2; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/orders", nil))
	}
	assert.Equal(t, 2, calls)
}

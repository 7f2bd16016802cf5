package middlewarectx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(1, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("user:1"))
	assert.True(t, l.Allow("user:1"))
	assert.False(t, l.Allow("user:1"))
	assert.True(t, l.Allow("user:2"), "у другого пользователя свой лимит")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("user:1"))
}

func TestLimiter_EvictsIdleVisitors(t *testing.T) {
	l := NewLimiter(1, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("user:1")
	now = now.Add(limiterIdleTTL + time.Second)
	l.Allow("user:2")

	assert.NotContains(t, l.visitors, "user:1")
	assert.Contains(t, l.visitors, "user:2")
}

func TestLimiter_EvictsAtMostOncePerTTL(t *testing.T) {
	l := NewLimiter(1, 1)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	l.now = func() time.Time { return now }

	l.Allow("ip:10.0.0.1")
	assert.Equal(t, start, l.lastEvict)

	for i := 2; i < 50; i++ {
		now = now.Add(time.Second)
		l.Allow("ip:10.0.0." + strconv.Itoa(i))
	}
	assert.Equal(t, start, l.lastEvict, "новые посетители внутри TTL не запускают обход")
	assert.Len(t, l.visitors, 49)

	now = start.Add(limiterIdleTTL + time.Minute)
	l.Allow("ip:10.0.1.1")
	assert.Equal(t, now, l.lastEvict)
	assert.Len(t, l.visitors, 1)
}

func TestRateLimitMiddleware(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	h := RateLimitMiddleware(NewLimiter(0.001, 1), log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/tracks", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserID, int64(3)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tv-ad-booking/internal/config"
	"github.com/iliyamo/tv-ad-booking/internal/middleware"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRedisCache_HitMissAndPurge(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{http.MethodGet: true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "cache",
	}
	var calls atomic.Int32
	e := echo.New()
	e.GET("/v1/slots", func(c echo.Context) error {
		calls.Add(1)
		return c.JSON(http.StatusOK, echo.Map{"slots": []string{"a"}})
	}, middleware.NewRedisCache(cfg, rdb))

	first := get(e, "/v1/slots")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := get(e, "/v1/slots")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, first.Header().Get(echo.HeaderContentType), second.Header().Get(echo.HeaderContentType))
	assert.EqualValues(t, 1, calls.Load())

	other := get(e, "/v1/slots?page=2")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"), "query is part of the key")

	require.NoError(t, middleware.NewCachePurger(rdb, "cache").Purge(context.Background()))
	assert.Equal(t, "MISS", get(e, "/v1/slots").Header().Get("X-Cache"))
	assert.EqualValues(t, 3, calls.Load())
}

func TestRedisCache_SkipsErrors(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, TTL: time.Minute, Prefix: "cache"}
	e := echo.New()
	e.GET("/boom", func(c echo.Context) error {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "down"})
	}, middleware.NewRedisCache(cfg, rdb))

	get(e, "/boom")
	assert.Equal(t, "MISS", get(e, "/boom").Header().Get("X-Cache"))
}

func TestCachePurger_NilClient(t *testing.T) {
	assert.NoError(t, middleware.NewCachePurger(nil, "cache").Purge(context.Background()))
	var p *middleware.CachePurger
	assert.NoError(t, p.Purge(context.Background()))
}

func TestTokenBucket(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
	e := echo.New()
	e.Use(middleware.NewTokenBucket(cfg, rdb))
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, get(e, "/ping").Code)
	rec := get(e, "/ping")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	blocked := get(e, "/ping")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
}

func TestTokenBucket_RedisDownFailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}
	e := echo.New()
	e.Use(middleware.NewTokenBucket(cfg, rdb))
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, get(e, "/ping").Code)
	}
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-seat-booking/internal/config"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRedisCache(t *testing.T) {
	rdb := newRedis(t)
	cfg := cacheConfig()

	calls := 0
	e := echo.New()
	e.GET("/v1/shows", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"q": c.QueryParam("q")})
	}, NewRedisCache(cfg, rdb))

	first := serve(e, http.MethodGet, "/v1/shows?q=dome")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := serve(e, http.MethodGet, "/v1/shows?q=dome")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Contains(t, second.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	assert.Equal(t, 1, calls)

	// a different query is a different entry
	other := serve(e, http.MethodGet, "/v1/shows?q=other")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)

	require.NoError(t, InvalidateCache(context.Background(), cfg, rdb))
	third := serve(e, http.MethodGet, "/v1/shows?q=dome")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 3, calls)
}

func TestRedisCacheSkipsErrors(t *testing.T) {
	rdb := newRedis(t)
	calls := 0
	e := echo.New()
	e.GET("/v1/genres", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "down"})
	}, NewRedisCache(cacheConfig(), rdb))

	serve(e, http.MethodGet, "/v1/genres")
	rec := serve(e, http.MethodGet, "/v1/genres")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestRedisCacheSkipsNoStore(t *testing.T) {
	rdb := newRedis(t)
	calls := 0
	e := echo.New()
	e.GET("/v1/shows", func(c echo.Context) error {
		calls++
		c.Response().Header().Set(echo.HeaderCacheControl, "private, no-store")
		return c.JSON(http.StatusOK, echo.Map{"items": []string{}, "error": "down"})
	}, NewRedisCache(cacheConfig(), rdb))

	for i := 0; i < 2; i++ {
		rec := serve(e, http.MethodGet, "/v1/shows")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, calls)
	keys, err := rdb.Keys(context.Background(), "cache:*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMiddlewaresWithoutRedis(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
		NewRedisCache(cacheConfig(), nil),
		NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil),
	)
	for i := 0; i < 3; i++ {
		rec := serve(e, http.MethodGet, "/x")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
	assert.NoError(t, InvalidateCache(context.Background(), cacheConfig(), nil))
}

func TestTokenBucket(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            2 * time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	e := echo.New()
	e.POST("/v1/shows/:id/bookings", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, NewTokenBucket(cfg, rdb))

	for i := 0; i < 2; i++ {
		rec := serve(e, http.MethodPost, "/v1/shows/42/bookings")
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}
	rec := serve(e, http.MethodPost, "/v1/shows/42/bookings")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too_many_requests")

	// the route pattern is shared, so another show id hits the same bucket
	rec = serve(e, http.MethodPost, "/v1/shows/43/bookings")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/abc/events", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/sessions/:id/events")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	cases := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:192.0.2.7"},
		{"session", "rl:session:abc"},
		{"session_route", "rl:session:abc:route:POST /v1/sessions/:id/events"},
		{"", "rl:ip:192.0.2.7:session:abc:route:POST /v1/sessions/:id/events"},
	}
	for _, tc := range cases {
		t.Run(tc.strategy, func(t *testing.T) {
			got := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: tc.strategy}, c)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("header session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/shows/1/bookings", nil)
		req.Header.Set(SessionHeader, "client-1")
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/v1/shows/:id/bookings")
		assert.Equal(t, "client-1", sessionID(c))
	})
}

func TestRequestLogger(t *testing.T) {
	hook := logtest.NewGlobal()
	t.Cleanup(hook.Reset)

	e := echo.New()
	e.Use(RequestLogger())
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/bad", func(c echo.Context) error { return echo.NewHTTPError(http.StatusBadRequest, "nope") })

	serve(e, http.MethodGet, "/ok")
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.Equal(t, "/ok", entry.Data["path"])

	rec := serve(e, http.MethodGet, "/bad")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	entry = hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, http.StatusBadRequest, entry.Data["status"])
}

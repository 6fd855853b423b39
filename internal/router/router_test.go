package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-seat-booking/internal/booking"
	"github.com/iliyamo/cinema-seat-booking/internal/catalog"
	"github.com/iliyamo/cinema-seat-booking/internal/config"
	"github.com/iliyamo/cinema-seat-booking/internal/handler"
	"github.com/iliyamo/cinema-seat-booking/internal/model"
	"github.com/iliyamo/cinema-seat-booking/internal/repository"
	"github.com/iliyamo/cinema-seat-booking/internal/ui"
)

type emptySource struct{}

func (emptySource) Fetch(context.Context) ([]model.Show, error) { return nil, nil }

// switchSource serves whatever shows or error it currently holds.
type switchSource struct {
	mu    sync.Mutex
	shows []model.Show
	err   error
}

func (s *switchSource) set(shows []model.Show, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shows, s.err = shows, err
}

func (s *switchSource) Fetch(context.Context) ([]model.Show, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shows, s.err
}

func TestRegisterAll(t *testing.T) {
	cat := catalog.New(emptySource{}, catalog.DefaultMaxShows)
	store := booking.NewStore(repository.NewMemoryKV())

	e := echo.New()
	RegisterRoutes(e)
	RegisterShows(e, handler.NewShowHandler(cat, store), config.CacheConfig{}, nil)
	RegisterBookings(e, handler.NewBookingHandler(cat, store), config.RateLimitConfig{}, nil)
	RegisterSessions(e, handler.NewSessionHandler(ui.NewSessions(cat, store, 0)), config.RateLimitConfig{}, nil)

	var got []string
	for _, r := range e.Routes() {
		got = append(got, r.Method+" "+r.Path)
	}
	sort.Strings(got)
	assert.Equal(t, []string{
		"DELETE /v1/sessions/:id",
		"GET /healthz",
		"GET /readyz",
		"GET /v1/bookings",
		"GET /v1/genres",
		"GET /v1/sessions/:id",
		"GET /v1/shows",
		"GET /v1/shows/:id",
		"GET /v1/shows/:id/seats",
		"POST /v1/sessions",
		"POST /v1/sessions/:id/events",
		"POST /v1/shows/:id/bookings",
		"POST /v1/shows/refresh",
	}, got)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/shows/refresh", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShowCacheFollowsRefresh(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	src := &switchSource{err: errors.New("feed down")}
	cat := catalog.New(src, catalog.DefaultMaxShows)
	store := booking.NewStore(repository.NewMemoryKV())
	sessions := ui.NewSessions(cat, store, 0)

	e := echo.New()
	RegisterShows(e, handler.NewShowHandler(cat, store), config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}, rdb)

	list := func() (string, int, string) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/shows", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Items []json.RawMessage `json:"items"`
			Error string            `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec.Header().Get("X-Cache"), len(body.Items), body.Error
	}

	require.Error(t, cat.Refresh(ctx))
	for i := 0; i < 2; i++ {
		state, n, msg := list()
		assert.Equal(t, "MISS", state)
		assert.Zero(t, n)
		assert.Equal(t, ui.MsgLoadFailed, msg)
	}

	src.set([]model.Show{
		{ID: "1", Name: "Under the Dome"},
		{ID: "2", Name: "Person of Interest"},
	}, nil)
	require.NoError(t, cat.Refresh(ctx))
	state, n, msg := list()
	assert.Equal(t, "MISS", state)
	assert.Equal(t, 2, n)
	assert.Empty(t, msg)
	state, n, _ = list()
	assert.Equal(t, "HIT", state)
	assert.Equal(t, 2, n)

	// a refresh from a browsing session drops the cached listing too
	src.set([]model.Show{{ID: "3", Name: "Bitten"}}, nil)
	_, ctrl := sessions.Create()
	_, err := ctrl.Dispatch(ctx, ui.Event{Type: ui.Click, Target: ui.TargetRefresh})
	require.NoError(t, err)

	state, n, _ = list()
	assert.Equal(t, "MISS", state)
	assert.Equal(t, 1, n)
}

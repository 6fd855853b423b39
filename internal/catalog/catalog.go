// Package catalog loads the list of shows and answers search and genre
// queries over it.
package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-seat-booking/internal/model"
)

// DefaultMaxShows is how many shows of the feed are kept.
const DefaultMaxShows = 12

// AllGenres is the genre filter value that disables genre filtering.
const AllGenres = "all"

// ErrShowNotFound is returned by Find for an unknown id.
var ErrShowNotFound = errors.New("show not found")

// Catalog holds the most recently fetched shows.  Refresh calls are not
// serialised against each other: whichever finishes last determines the
// state.
type Catalog struct {
	src      Source
	maxShows int

	mu      sync.RWMutex
	shows   []model.Show
	genres  []string
	lastErr error
	hooks   []RefreshHook
}

// RefreshHook runs after every Refresh, successful or not.  err is the
// result of the refresh.
type RefreshHook func(ctx context.Context, err error)

// OnRefresh registers h.  Hooks run in registration order on the goroutine
// that called Refresh.
func (c *Catalog) OnRefresh(h RefreshHook) {
	c.mu.Lock()
	c.hooks = append(c.hooks, h)
	c.mu.Unlock()
}

func (c *Catalog) runHooks(ctx context.Context, err error) {
	c.mu.RLock()
	hooks := append([]RefreshHook(nil), c.hooks...)
	c.mu.RUnlock()
	for _, h := range hooks {
		h(ctx, err)
	}
}

// New creates an empty Catalog; call Refresh to populate it.
func New(src Source, maxShows int) *Catalog {
	if maxShows <= 0 {
		maxShows = DefaultMaxShows
	}
	return &Catalog{src: src, maxShows: maxShows}
}

// Refresh fetches the feed, keeps the first maxShows entries and recomputes
// the genre set.  On failure the show list is cleared and the error is
// returned and remembered.  Registered hooks run afterwards in both cases.
func (c *Catalog) Refresh(ctx context.Context) (err error) {
	defer func() { c.runHooks(ctx, err) }()
	shows, err := c.src.Fetch(ctx)
	if err != nil {
		logrus.WithError(err).Error("could not load shows")
		c.mu.Lock()
		c.shows = nil
		c.genres = nil
		c.lastErr = err
		c.mu.Unlock()
		return err
	}
	if len(shows) > c.maxShows {
		shows = shows[:c.maxShows]
	}
	kept := make([]model.Show, len(shows))
	copy(kept, shows)

	c.mu.Lock()
	c.shows = kept
	c.genres = collectGenres(kept)
	c.lastErr = nil
	c.mu.Unlock()

	logrus.WithField("shows", len(kept)).Info("shows loaded")
	return nil
}

// Shows returns all loaded shows in feed order.
func (c *Catalog) Shows() []model.Show {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Show, len(c.shows))
	copy(out, c.shows)
	return out
}

// Genres returns the sorted set of genres over all loaded shows.
func (c *Catalog) Genres() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.genres))
	copy(out, c.genres)
	return out
}

// LastError returns the error of the latest Refresh, or nil.
func (c *Catalog) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Find looks a show up by id.
func (c *Catalog) Find(id string) (model.Show, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.shows {
		if string(s.ID) == id {
			return s, nil
		}
	}
	return model.Show{}, ErrShowNotFound
}

// Filter returns the shows whose name contains query (case-insensitive,
// surrounding space ignored) and, unless genre is empty or AllGenres, that
// carry genre.
func (c *Catalog) Filter(query, genre string) []model.Show {
	return FilterShows(c.Shows(), query, genre)
}

// FilterShows applies the Filter rules to an arbitrary slice.
func FilterShows(shows []model.Show, query, genre string) []model.Show {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Show, 0, len(shows))
	for _, s := range shows {
		if q != "" && !strings.Contains(strings.ToLower(s.Name), q) {
			continue
		}
		if genre != "" && genre != AllGenres && !s.HasGenre(genre) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func collectGenres(shows []model.Show) []string {
	set := make(map[string]struct{})
	for _, s := range shows {
		for _, g := range s.Genres {
			set[g] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

package ui

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-seat-booking/internal/booking"
	"github.com/iliyamo/cinema-seat-booking/internal/catalog"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

type sessionEntry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Sessions keeps one Controller per browser session.  Sessions idle for
// longer than maxIdle are dropped the next time a session is created.
type Sessions struct {
	catalog *catalog.Catalog
	store   *booking.Store
	maxIdle time.Duration
	now     func() time.Time

	mu    sync.Mutex
	items map[string]*sessionEntry
}

// NewSessions creates an empty registry.  maxIdle <= 0 disables expiry.
func NewSessions(cat *catalog.Catalog, store *booking.Store, maxIdle time.Duration) *Sessions {
	return &Sessions{
		catalog: cat,
		store:   store,
		maxIdle: maxIdle,
		now:     time.Now,
		items:   make(map[string]*sessionEntry),
	}
}

// Create starts a new session and returns its id.
func (s *Sessions) Create() (string, *Controller) {
	id := uuid.NewString()
	ctrl := NewController(s.catalog, s.store)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.items[id] = &sessionEntry{ctrl: ctrl, lastSeen: s.now()}
	return id, ctrl
}

// Get returns the controller of session id.
func (s *Sessions) Get(id string) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok || s.expiredLocked(e) {
		delete(s.items, id)
		return nil, ErrSessionNotFound
	}
	e.lastSeen = s.now()
	return e.ctrl, nil
}

// Delete ends session id.
func (s *Sessions) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.items, id)
	return nil
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Sessions) expiredLocked(e *sessionEntry) bool {
	return s.maxIdle > 0 && s.now().Sub(e.lastSeen) > s.maxIdle
}

func (s *Sessions) sweepLocked() {
	for id, e := range s.items {
		if s.expiredLocked(e) {
			delete(s.items, id)
		}
	}
}

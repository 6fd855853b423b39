// Package booking owns seat occupancy and the booking history.  A Store
// holds the occupied seat indices of every show plus the list of confirmed
// bookings and writes both to a repository.KV after every confirmation.
// Seat selection before confirmation lives in a Selection, which is never
// persisted.
package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-seat-booking/internal/model"
	"github.com/iliyamo/cinema-seat-booking/internal/repository"
)

// DateLayout formats BookingRecord.Date.
const DateLayout = "1/2/2006, 3:04:05 PM"

// Notifier is told about every confirmed booking.  Implementations must not
// block for long; errors are logged and otherwise ignored.
type Notifier interface {
	BookingConfirmed(ctx context.Context, rec model.BookingRecord) error
}

// Store is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	kv       repository.KV
	keys     Keys
	state    State
	lastID   int64
	now      func() time.Time
	notifier Notifier
}

// Option configures a Store.
type Option func(*Store)

// WithKeys overrides the storage keys.
func WithKeys(k Keys) Option { return func(s *Store) { s.keys = k } }

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithNotifier registers a Notifier for confirmed bookings.
func WithNotifier(n Notifier) Option { return func(s *Store) { s.notifier = n } }

// NewStore creates a Store with empty state.  Call Load to restore
// persisted state.
func NewStore(kv repository.KV, opts ...Option) *Store {
	if kv == nil {
		panic("nil kv passed to booking.NewStore")
	}
	s := &Store{
		kv:    kv,
		keys:  DefaultKeys,
		state: EmptyState(),
		now:   time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load replaces the in-memory state with what is persisted.  Unreadable
// data results in an empty store.
func (s *Store) Load(ctx context.Context) {
	st := LoadState(ctx, s.kv, s.keys)
	s.mu.Lock()
	s.state = st
	for _, b := range st.Bookings {
		if b.ID > s.lastID {
			s.lastID = b.ID
		}
	}
	s.mu.Unlock()
	logrus.WithFields(logrus.Fields{
		"shows":    len(st.Occupied),
		"bookings": len(st.Bookings),
	}).Info("booking state loaded")
}

// IsOccupied reports whether seat has been booked for showID.
func (s *Store) IsOccupied(showID string, seat int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.Occupied[showID][seat]
	return ok
}

// Occupied returns the booked seat indices of showID in ascending order.
func (s *Store) Occupied(showID string) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedSeats(s.state.Occupied[showID])
}

// Bookings returns a copy of the booking list, newest first.
func (s *Store) Bookings() []model.BookingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.BookingRecord, len(s.state.Bookings))
	copy(out, s.state.Bookings)
	return out
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneLocked()
}

// Confirm books seats for showID.  The seats become occupied, a new record
// is put at the head of the booking list and both are persisted before the
// record is returned.  If persisting fails nothing changes in memory.
func (s *Store) Confirm(ctx context.Context, showID, title string, seats []int) (model.BookingRecord, error) {
	if showID == "" {
		return model.BookingRecord{}, ErrNoShowSelected
	}
	if len(seats) == 0 {
		return model.BookingRecord{}, ErrNoSeatsSelected
	}
	wanted := make(map[int]struct{}, len(seats))
	for _, i := range seats {
		if !model.ValidSeat(i) {
			return model.BookingRecord{}, fmt.Errorf("%w: index=%d", model.ErrInvalidSeat, i)
		}
		wanted[i] = struct{}{}
	}
	ordered := sortedSeats(wanted)

	s.mu.Lock()
	occupied := s.state.Occupied[showID]
	taken := make([]string, 0)
	for _, i := range ordered {
		if _, ok := occupied[i]; ok {
			taken = append(taken, model.SeatLabel(i))
		}
	}
	if len(taken) > 0 {
		s.mu.Unlock()
		return model.BookingRecord{}, fmt.Errorf("%w: %v", ErrSeatUnavailable, taken)
	}

	labels := make([]string, 0, len(ordered))
	for _, i := range ordered {
		labels = append(labels, model.SeatLabel(i))
	}
	now := s.now()
	rec := model.BookingRecord{
		ID:     s.nextIDLocked(now),
		ShowID: showID,
		Title:  title,
		Seats:  labels,
		Date:   now.Format(DateLayout),
	}

	next := s.cloneLocked()
	set := next.Occupied[showID]
	if set == nil {
		set = make(map[int]struct{}, len(ordered))
		next.Occupied[showID] = set
	}
	for _, i := range ordered {
		set[i] = struct{}{}
	}
	next.Bookings = append([]model.BookingRecord{rec}, next.Bookings...)

	if err := Persist(ctx, s.kv, s.keys, next); err != nil {
		s.mu.Unlock()
		return model.BookingRecord{}, err
	}
	s.state = next
	s.lastID = rec.ID
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"booking_id": rec.ID,
		"show_id":    showID,
		"seats":      labels,
	}).Info("booking confirmed")

	if s.notifier != nil {
		if err := s.notifier.BookingConfirmed(ctx, rec); err != nil {
			logrus.WithError(err).WithField("booking_id", rec.ID).Warn("booking notification failed")
		}
	}
	return rec, nil
}

// nextIDLocked derives an id from the clock and keeps ids strictly
// increasing when two bookings land in the same millisecond.
func (s *Store) nextIDLocked(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	return id
}

func (s *Store) cloneLocked() State {
	out := State{
		Occupied: make(map[string]map[int]struct{}, len(s.state.Occupied)),
		Bookings: make([]model.BookingRecord, len(s.state.Bookings)),
	}
	for show, set := range s.state.Occupied {
		cp := make(map[int]struct{}, len(set))
		for i := range set {
			cp[i] = struct{}{}
		}
		out.Occupied[show] = cp
	}
	copy(out.Bookings, s.state.Bookings)
	return out
}

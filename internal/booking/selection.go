package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-seat-booking/internal/model"
)

// Selection is the transient set of seats a user picked for one show.  It
// is not safe for concurrent use; the owning UI session serialises access.
type Selection struct {
	store  *Store
	showID string
	title  string
	seats  map[int]struct{}
}

// NewSelection starts an empty selection for a show.
func (s *Store) NewSelection(showID, title string) *Selection {
	return &Selection{
		store:  s,
		showID: showID,
		title:  title,
		seats:  make(map[int]struct{}),
	}
}

// ShowID returns the show the selection belongs to.
func (sel *Selection) ShowID() string { return sel.showID }

// Title returns the show title captured when the selection was opened.
func (sel *Selection) Title() string { return sel.title }

// Toggle adds seat if absent and removes it if present.  An occupied seat
// cannot be added and yields ErrSeatUnavailable without changing anything;
// a selected seat can always be removed, even if another session booked it
// in the meantime.  The returned slice is the selection after the call.
func (sel *Selection) Toggle(seat int) ([]int, error) {
	if !model.ValidSeat(seat) {
		return sel.Seats(), fmt.Errorf("%w: index=%d", model.ErrInvalidSeat, seat)
	}
	if _, ok := sel.seats[seat]; ok {
		delete(sel.seats, seat)
		return sel.Seats(), nil
	}
	if sel.store.IsOccupied(sel.showID, seat) {
		return sel.Seats(), ErrSeatUnavailable
	}
	sel.seats[seat] = struct{}{}
	return sel.Seats(), nil
}

// Prune drops selected seats that have been booked since they were picked
// and returns the dropped indices in ascending order.
func (sel *Selection) Prune() []int {
	var dropped []int
	for _, i := range sel.Seats() {
		if sel.store.IsOccupied(sel.showID, i) {
			delete(sel.seats, i)
			dropped = append(dropped, i)
		}
	}
	return dropped
}

// Has reports whether seat is currently selected.
func (sel *Selection) Has(seat int) bool {
	_, ok := sel.seats[seat]
	return ok
}

// Seats returns the selected indices in ascending order.
func (sel *Selection) Seats() []int { return sortedSeats(sel.seats) }

// Len returns the number of selected seats.
func (sel *Selection) Len() int { return len(sel.seats) }

// Clear empties the selection.
func (sel *Selection) Clear() { sel.seats = make(map[int]struct{}) }

// Confirm books the selected seats and clears the selection on success.
// When some seats were taken by another booking, those seats are pruned
// from the selection and ErrSeatUnavailable is returned, so the remaining
// seats can be confirmed by calling Confirm again.
func (sel *Selection) Confirm(ctx context.Context) (model.BookingRecord, error) {
	rec, err := sel.store.Confirm(ctx, sel.showID, sel.title, sel.Seats())
	if err != nil {
		if errors.Is(err, ErrSeatUnavailable) {
			sel.Prune()
		}
		return model.BookingRecord{}, err
	}
	sel.Clear()
	return rec, nil
}

package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-seat-booking/internal/booking"
	"github.com/iliyamo/cinema-seat-booking/internal/catalog"
	"github.com/iliyamo/cinema-seat-booking/internal/repository"
)

const showsJSON = `[
 {"id":42,"name":"Under the Dome","genres":["Drama","Science-Fiction"],"summary":"<p>A dome.</p>","runtime":60,"rating":{"average":6.5},"image":{"medium":"http://img/42.jpg"}},
 {"id":43,"name":"Person of Interest","genres":["Action","Crime"],"summary":"","runtime":null,"rating":{"average":null}}
]`

func newTestController(t *testing.T) (*Controller, *booking.Store) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(showsJSON))
	}))
	t.Cleanup(srv.Close)

	cat := catalog.New(catalog.NewHTTPSource(srv.URL, time.Second), 12)
	require.NoError(t, cat.Refresh(context.Background()))
	store := booking.NewStore(repository.NewMemoryKV())
	return NewController(cat, store), store
}

func TestTableDispatchOrder(t *testing.T) {
	var calls []string
	var tbl Table
	tbl.Handle(Click, OnTarget(".a"), func(context.Context, Event) error { calls = append(calls, "first"); return nil })
	tbl.Handle(Click, OnTarget(".a"), func(context.Context, Event) error { calls = append(calls, "second"); return nil })
	tbl.Handle(Input, nil, func(context.Context, Event) error { calls = append(calls, "input"); return nil })

	require.NoError(t, tbl.Dispatch(context.Background(), Event{Type: Click, Target: ".a"}))
	require.NoError(t, tbl.Dispatch(context.Background(), Event{Type: Input, Target: "#anything"}))
	assert.ErrorIs(t, tbl.Dispatch(context.Background(), Event{Type: Click, Target: ".b"}), ErrUnhandledEvent)
	assert.Equal(t, []string{"first", "input"}, calls)
}

func TestControllerBookingFlow(t *testing.T) {
	ctx := context.Background()
	ctrl, store := newTestController(t)

	v := ctrl.View()
	require.Len(t, v.Cards, 2)
	assert.Equal(t, "6.5", v.Cards[0].Rating)
	assert.Equal(t, "N/A", v.Cards[1].Rating)
	assert.Equal(t, "A dome.", v.Cards[0].Summary)
	assert.Equal(t, []string{"all", "Action", "Crime", "Drama", "Science-Fiction"}, v.Genres)
	assert.Nil(t, v.Modal)

	v, err := ctrl.Dispatch(ctx, Event{Type: Click, Target: TargetConfirm})
	require.NoError(t, err)
	assert.Equal(t, MsgSelectShow, v.Notice)

	v, err = ctrl.Dispatch(ctx, Event{Type: Click, Target: TargetReserve, ID: "42"})
	require.NoError(t, err)
	require.NotNil(t, v.Modal)
	assert.Equal(t, "Under the Dome", v.Modal.Title)
	assert.Equal(t, "Drama, Science-Fiction • Runtime: 60 min", v.Modal.Meta)
	assert.Equal(t, catalog.DefaultTrailer, v.Modal.Trailer)
	assert.Len(t, v.Modal.Seats, 64)
	assert.Empty(t, v.Notice)

	v, err = ctrl.Dispatch(ctx, Event{Type: Click, Target: TargetConfirm})
	require.NoError(t, err)
	assert.Equal(t, MsgSelectSeats, v.Notice)

	_, err = ctrl.Dispatch(ctx, Event{Type: Click, Target: TargetSeat, Seat: "A1"})
	require.NoError(t, err)
	v, err = ctrl.Dispatch(ctx, Event{Type: Click, Target: TargetSeat, Seat: "B2"})
	require.NoError(t, err)
	assert.Equal(t, 2, v.Modal.SelectedCount)
	assert.Equal(t, SeatSelected, v.Modal.Seats[9].State)

	v, err = ctrl.Dispatch(ctx, Event{Type: Click, Target: TargetConfirm})
	require.NoError(t, err)
	assert.Nil(t, v.Modal)
	assert.Equal(t, "Success — booked 2 seat(s) for Under the Dome.", v.Notice)
	require.Len(t, v.Bookings, 1)
	assert.Equal(t, []string{"A1", "B2"}, v.Bookings[0].Seats)
	assert.Equal(t, []int{0, 9}, store.Occupied("42"))

	v, err = ctrl.Dispatch(ctx, Event{Type: Click, Target: TargetDetails, ID: "42"})
	require.NoError(t, err)
	assert.Equal(t, SeatOccupied, v.Modal.Seats[0].State)
	assert.Equal(t, SeatOccupied, v.Modal.Seats[9].State)

	// occupied seat clicks are ignored
	v, err = ctrl.Dispatch(ctx, Event{Type: Click, Target: TargetSeat, Seat: "A1"})
	require.NoError(t, err)
	assert.Zero(t, v.Modal.SelectedCount)

	_, err = ctrl.Dispatch(ctx, Event{Type: Click, Target: TargetSeat, Seat: "C3"})
	require.NoError(t, err)
	v, err = ctrl.Dispatch(ctx, Event{Type: KeyDown, Key: "Escape"})
	require.NoError(t, err)
	assert.Nil(t, v.Modal)

	// Escape without an open modal has no route
	_, err = ctrl.Dispatch(ctx, Event{Type: KeyDown, Key: "Escape"})
	assert.ErrorIs(t, err, ErrUnhandledEvent)
}

func TestControllerFilters(t *testing.T) {
	ctx := context.Background()
	ctrl, _ := newTestController(t)

	v, err := ctrl.Dispatch(ctx, Event{Type: Input, Target: TargetSearch, Value: "  PERSON "})
	require.NoError(t, err)
	require.Len(t, v.Cards, 1)
	assert.Equal(t, "43", v.Cards[0].ID)

	v, err = ctrl.Dispatch(ctx, Event{Type: Change, Target: TargetGenre, Value: "Drama"})
	require.NoError(t, err)
	assert.Empty(t, v.Cards)

	v, err = ctrl.Dispatch(ctx, Event{Type: Input, Target: TargetSearch, Value: ""})
	require.NoError(t, err)
	require.Len(t, v.Cards, 1)
	assert.Equal(t, "42", v.Cards[0].ID)

	v, err = ctrl.Dispatch(ctx, Event{Type: Change, Target: TargetGenre, Value: "all"})
	require.NoError(t, err)
	assert.Len(t, v.Cards, 2)

	v, err = ctrl.Dispatch(ctx, Event{Type: Click, Target: TargetDeploy})
	require.NoError(t, err)
	assert.Equal(t, MsgDeployGuide, v.Notice)
}

func TestControllerUnknownShowAndBadSeat(t *testing.T) {
	ctx := context.Background()
	ctrl, _ := newTestController(t)

	v, err := ctrl.Dispatch(ctx, Event{Type: Click, Target: TargetDetails, ID: "999"})
	require.NoError(t, err)
	assert.Nil(t, v.Modal)

	_, err = ctrl.Dispatch(ctx, Event{Type: Click, Target: TargetDetails, ID: "43"})
	require.NoError(t, err)
	_, err = ctrl.Dispatch(ctx, Event{Type: Click, Target: TargetSeat, Seat: "Z9"})
	assert.Error(t, err)

	v = ctrl.View()
	assert.Equal(t, "Action, Crime • Runtime: N/A min", v.Modal.Meta)
	assert.Equal(t, "No description available", v.Modal.Summary)
}

func TestSessions(t *testing.T) {
	ctrl, store := newTestController(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSessions(ctrl.catalog, store, time.Minute)
	s.now = func() time.Time { return now }

	id, c := s.Create()
	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Same(t, c, got)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	id2, _ := s.Create()
	require.NoError(t, s.Delete(id2))
	assert.ErrorIs(t, s.Delete(id2), ErrSessionNotFound)
	assert.Zero(t, s.Len())
}

func TestControllersSharingStore(t *testing.T) {
	ctx := context.Background()
	alice, store := newTestController(t)
	bob := NewController(alice.catalog, store)

	for _, ev := range []Event{
		{Type: Click, Target: TargetReserve, ID: "42"},
		{Type: Click, Target: TargetSeat, Seat: "A1"},
		{Type: Click, Target: TargetSeat, Seat: "C3"},
	} {
		_, err := alice.Dispatch(ctx, ev)
		require.NoError(t, err)
	}
	for _, ev := range []Event{
		{Type: Click, Target: TargetReserve, ID: "42"},
		{Type: Click, Target: TargetSeat, Seat: "A1"},
		{Type: Click, Target: TargetSeat, Seat: "A2"},
		{Type: Click, Target: TargetConfirm},
	} {
		_, err := bob.Dispatch(ctx, ev)
		require.NoError(t, err)
	}

	v, err := alice.Dispatch(ctx, Event{Type: Click, Target: TargetConfirm})
	require.NoError(t, err)
	assert.Equal(t, MsgSeatsTaken, v.Notice)
	require.NotNil(t, v.Modal)
	assert.Equal(t, 1, v.Modal.SelectedCount)
	assert.Equal(t, SeatOccupied, v.Modal.Seats[0].State)
	assert.Equal(t, SeatSelected, v.Modal.Seats[18].State)

	v, err = alice.Dispatch(ctx, Event{Type: Click, Target: TargetConfirm})
	require.NoError(t, err)
	assert.Equal(t, "Success — booked 1 seat(s) for Under the Dome.", v.Notice)
	assert.Nil(t, v.Modal)
	assert.Equal(t, []int{0, 1, 18}, store.Occupied("42"))
	require.Len(t, v.Bookings, 2)
	assert.Equal(t, []string{"C3"}, v.Bookings[0].Seats)
}

func TestViewDropsSeatsBookedElsewhere(t *testing.T) {
	ctx := context.Background()
	ctrl, store := newTestController(t)

	_, err := ctrl.Dispatch(ctx, Event{Type: Click, Target: TargetDetails, ID: "42"})
	require.NoError(t, err)
	_, err = ctrl.Dispatch(ctx, Event{Type: Click, Target: TargetSeat, Seat: "B2"})
	require.NoError(t, err)

	_, err = store.Confirm(ctx, "42", "Under the Dome", []int{9})
	require.NoError(t, err)

	v := ctrl.View()
	assert.Zero(t, v.Modal.SelectedCount)
	assert.Equal(t, SeatOccupied, v.Modal.Seats[9].State)

	v, err = ctrl.Dispatch(ctx, Event{Type: Click, Target: TargetConfirm})
	require.NoError(t, err)
	assert.Equal(t, MsgSelectSeats, v.Notice)
}

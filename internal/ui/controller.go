package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-seat-booking/internal/booking"
	"github.com/iliyamo/cinema-seat-booking/internal/catalog"
	"github.com/iliyamo/cinema-seat-booking/internal/model"
)

// Messages shown to the user.
const (
	MsgSelectShow   = "Select a show first."
	MsgSelectSeats  = "Please select seats before booking."
	MsgLoadFailed   = "Could not load shows. Try refresh."
	MsgSeatsTaken   = "Some of your seats were just booked by someone else. Pick again and confirm."
	MsgDeployGuide  = "Deploy options:\n1) Build the server binary from cmd/server.\n2) Provide a .env with STORAGE_BACKEND and SHOWS_SOURCE.\n3) Run it behind any reverse proxy.\n(See README for full steps.)"
	msgBookedFormat = "Success — booked %d seat(s) for %s."
)

// Target selectors understood by the controller.
const (
	TargetDetails = ".btn-details"
	TargetReserve = ".btn-book"
	TargetClose   = "#closeModal"
	TargetSeat    = ".seat"
	TargetConfirm = "#confirmBooking"
	TargetRefresh = "#btn-refresh"
	TargetDeploy  = "#btn-deploy"
	TargetSearch  = "#search"
	TargetGenre   = "#genreFilter"
)

type modal struct {
	show model.Show
	sel  *booking.Selection
}

// Controller is the state of one UI session.  All methods are safe for
// concurrent use; events of one session are processed one at a time.
type Controller struct {
	catalog *catalog.Catalog
	store   *booking.Store
	table   Table

	mu     sync.Mutex
	query  string
	genre  string
	modal  *modal
	notice string
}

// NewController wires a session to the shared catalog and booking store.
func NewController(cat *catalog.Catalog, store *booking.Store) *Controller {
	c := &Controller{catalog: cat, store: store, genre: catalog.AllGenres}

	c.table.Handle(Click, OnTarget(TargetDetails), c.openShow)
	c.table.Handle(Click, OnTarget(TargetReserve), c.openShow)
	c.table.Handle(Click, OnTarget(TargetClose), c.closeModal)
	c.table.Handle(Click, OnTarget(TargetSeat), c.toggleSeat)
	c.table.Handle(Click, OnTarget(TargetConfirm), c.confirm)
	c.table.Handle(Click, OnTarget(TargetRefresh), c.refresh)
	c.table.Handle(Click, OnTarget(TargetDeploy), c.deploy)
	c.table.Handle(Input, OnTarget(TargetSearch), c.search)
	c.table.Handle(Change, OnTarget(TargetGenre), c.filterGenre)
	c.table.Handle(KeyDown, Both(OnKey("Escape"), c.modalOpen), c.closeModal)
	return c
}

// Dispatch handles ev and returns the resulting view.  The notice of the
// previous event is dropped first.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = ""
	err := c.table.Dispatch(ctx, ev)
	return c.renderLocked(), err
}

// View renders the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderLocked()
}

func (c *Controller) modalOpen(Event) bool { return c.modal != nil }

func (c *Controller) openShow(_ context.Context, ev Event) error {
	show, err := c.catalog.Find(ev.ID)
	if err != nil {
		return nil
	}
	c.modal = &modal{show: show, sel: c.store.NewSelection(string(show.ID), show.Name)}
	return nil
}

func (c *Controller) closeModal(context.Context, Event) error {
	if c.modal != nil {
		c.modal.sel.Clear()
	}
	c.modal = nil
	return nil
}

func (c *Controller) toggleSeat(_ context.Context, ev Event) error {
	if c.modal == nil {
		return nil
	}
	idx, err := model.ParseSeat(ev.Seat)
	if err != nil {
		return err
	}
	if _, err := c.modal.sel.Toggle(idx); err != nil && !errors.Is(err, booking.ErrSeatUnavailable) {
		return err
	}
	return nil
}

func (c *Controller) confirm(ctx context.Context, _ Event) error {
	if c.modal == nil {
		c.notice = MsgSelectShow
		return nil
	}
	rec, err := c.modal.sel.Confirm(ctx)
	switch {
	case errors.Is(err, booking.ErrNoShowSelected):
		c.notice = MsgSelectShow
		return nil
	case errors.Is(err, booking.ErrNoSeatsSelected):
		c.notice = MsgSelectSeats
		return nil
	case errors.Is(err, booking.ErrSeatUnavailable):
		logrus.WithError(err).WithField("show_id", c.modal.sel.ShowID()).Info("selected seats were taken")
		c.notice = MsgSeatsTaken
		return nil
	case err != nil:
		return err
	}
	c.notice = fmt.Sprintf(msgBookedFormat, len(rec.Seats), rec.Title)
	c.modal = nil
	return nil
}

func (c *Controller) refresh(ctx context.Context, _ Event) error {
	if err := c.catalog.Refresh(ctx); err != nil {
		logrus.WithError(err).Debug("refresh from session failed")
		c.notice = MsgLoadFailed
	}
	c.genre = catalog.AllGenres
	return nil
}

func (c *Controller) deploy(context.Context, Event) error {
	c.notice = MsgDeployGuide
	return nil
}

func (c *Controller) search(_ context.Context, ev Event) error {
	c.query = ev.Value
	return nil
}

func (c *Controller) filterGenre(_ context.Context, ev Event) error {
	c.genre = ev.Value
	if c.genre == "" {
		c.genre = catalog.AllGenres
	}
	return nil
}

func (c *Controller) renderLocked() View {
	v := View{
		Cards:    NewCards(c.catalog.Filter(c.query, c.genre)),
		Genres:   append([]string{catalog.AllGenres}, c.catalog.Genres()...),
		Query:    c.query,
		Genre:    c.genre,
		Bookings: c.store.Bookings(),
		Notice:   c.notice,
	}
	if c.catalog.LastError() != nil {
		v.Error = MsgLoadFailed
	}
	if c.modal != nil {
		c.modal.sel.Prune()
		showID := string(c.modal.show.ID)
		v.Modal = NewModal(c.modal.show,
			func(i int) bool { return c.store.IsOccupied(showID, i) },
			c.modal.sel.Has,
		)
	}
	return v
}

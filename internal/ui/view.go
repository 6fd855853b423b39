package ui

import (
	"strconv"
	"strings"

	"github.com/iliyamo/cinema-seat-booking/internal/catalog"
	"github.com/iliyamo/cinema-seat-booking/internal/model"
)

const (
	cardSummaryMax  = 120
	modalSummaryMax = 100
	notAvailable    = "N/A"
)

// SeatState is the display state of one seat.
type SeatState string

const (
	SeatFree     SeatState = "free"
	SeatSelected SeatState = "selected"
	SeatOccupied SeatState = "occupied"
)

// View is the full render state of a session.
type View struct {
	Cards    []Card                `json:"cards"`
	Genres   []string              `json:"genres"`
	Query    string                `json:"query"`
	Genre    string                `json:"genre"`
	Modal    *ModalView            `json:"modal,omitempty"`
	Bookings []model.BookingRecord `json:"bookings"`
	Notice   string                `json:"notice,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// Card is one entry of the show grid.
type Card struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Image   string `json:"image,omitempty"`
	Genres  string `json:"genres"`
	Rating  string `json:"rating"`
	Summary string `json:"summary"`
}

// ModalView describes the open show with its seat grid.
type ModalView struct {
	ShowID        string     `json:"showId"`
	Title         string     `json:"title"`
	Meta          string     `json:"meta"`
	Summary       string     `json:"summary"`
	Trailer       string     `json:"trailer"`
	Seats         []SeatView `json:"seats"`
	SelectedCount int        `json:"selectedCount"`
}

// SeatView is one cell of the seat grid.
type SeatView struct {
	Index int       `json:"index"`
	Label string    `json:"label"`
	State SeatState `json:"state"`
}

// NewCard renders a show as a grid card.
func NewCard(s model.Show) Card {
	c := Card{
		ID:      string(s.ID),
		Name:    s.Name,
		Genres:  strings.Join(s.Genres, ", "),
		Rating:  notAvailable,
		Summary: catalog.ShortText(s.Summary, cardSummaryMax),
	}
	if s.Image != nil {
		c.Image = s.Image.Medium
	}
	if avg := s.AverageRating(); avg != nil && *avg != 0 {
		c.Rating = strconv.FormatFloat(*avg, 'f', -1, 64)
	}
	return c
}

// NewCards renders a list of shows.
func NewCards(shows []model.Show) []Card {
	out := make([]Card, 0, len(shows))
	for _, s := range shows {
		out = append(out, NewCard(s))
	}
	return out
}

// NewModal renders the modal for s.  occupied and selected report the
// state of a seat index.
func NewModal(s model.Show, occupied, selected func(int) bool) *ModalView {
	runtime := notAvailable
	if s.Runtime != nil && *s.Runtime != 0 {
		runtime = strconv.Itoa(*s.Runtime)
	}
	summary := s.Summary
	if summary == "" {
		summary = "No description available"
	}
	m := &ModalView{
		ShowID:  string(s.ID),
		Title:   s.Name,
		Meta:    strings.Join(s.Genres, ", ") + " • Runtime: " + runtime + " min",
		Summary: catalog.ShortText(summary, modalSummaryMax),
		Trailer: catalog.TrailerURL(s),
	}
	m.Seats, m.SelectedCount = NewSeatGrid(occupied, selected)
	return m
}

// NewSeatGrid renders all seats in index order and counts the selected
// ones.  Occupied wins over selected.
func NewSeatGrid(occupied, selected func(int) bool) ([]SeatView, int) {
	seats := make([]SeatView, 0, model.SeatCount)
	n := 0
	for i := 0; i < model.SeatCount; i++ {
		st := SeatFree
		switch {
		case occupied(i):
			st = SeatOccupied
		case selected(i):
			st = SeatSelected
			n++
		}
		seats = append(seats, SeatView{Index: i, Label: model.SeatLabel(i), State: st})
	}
	return seats, n
}

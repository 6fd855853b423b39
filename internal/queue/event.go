// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/iliyamo/cinema-seat-booking/internal/model"
)

// BookingQueueName is the durable queue confirmed bookings are published to.
const BookingQueueName = "booking.confirmed"

// BookingConfirmedEvent is published when a booking is confirmed.  It
// carries enough for downstream consumers to log or notify without reading
// the booking store.
type BookingConfirmedEvent struct {
	BookingID   int64    `json:"booking_id"`
	ShowID      string   `json:"show_id"`
	MovieTitle  string   `json:"movie_title"`
	SeatLabels  []string `json:"seats"`
	SeatIndices []int    `json:"seat_indices"`
	BookedAt    string   `json:"booked_at"`
	ConfirmedAt string   `json:"confirmed_at"`
}

// NewBookingConfirmedEvent builds the event for rec.
func NewBookingConfirmedEvent(rec model.BookingRecord, at time.Time) BookingConfirmedEvent {
	idx := make([]int, 0, len(rec.Seats))
	for _, l := range rec.Seats {
		if i, err := model.ParseSeat(l); err == nil {
			idx = append(idx, i)
		}
	}
	return BookingConfirmedEvent{
		BookingID:   rec.ID,
		ShowID:      rec.ShowID,
		MovieTitle:  rec.Title,
		SeatLabels:  rec.Seats,
		SeatIndices: idx,
		BookedAt:    rec.Date,
		ConfirmedAt: at.UTC().Format(time.RFC3339),
	}
}

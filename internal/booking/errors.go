package booking

import "errors"

var (
	// ErrNoShowSelected is returned by Confirm when no show id was given.
	ErrNoShowSelected = errors.New("no show selected")

	// ErrNoSeatsSelected is returned by Confirm for an empty selection.
	ErrNoSeatsSelected = errors.New("no seats selected")

	// ErrSeatUnavailable is returned when a seat is already occupied.
	ErrSeatUnavailable = errors.New("seat unavailable")

	// ErrStorageParseFailed wraps decode failures of persisted state.  It is
	// only ever logged: LoadState recovers to an empty state.
	ErrStorageParseFailed = errors.New("storage parse failed")
)

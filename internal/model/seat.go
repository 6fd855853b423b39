package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SeatRows and SeatCols describe the fixed seating grid every show uses.
// Seats are numbered row-major, so the canonical index of (row, col) is
// row*SeatCols + col and lies in [0, SeatCount).
const (
	SeatRows  = 8
	SeatCols  = 8
	SeatCount = SeatRows * SeatCols
)

// ErrInvalidSeat is returned when a seat index, coordinate or label falls
// outside the grid.
var ErrInvalidSeat = errors.New("invalid seat")

// SeatIndex converts a zero-based (row, col) coordinate into its canonical
// index.
func SeatIndex(row, col int) (int, error) {
	if row < 0 || row >= SeatRows || col < 0 || col >= SeatCols {
		return 0, fmt.Errorf("%w: row=%d col=%d", ErrInvalidSeat, row, col)
	}
	return row*SeatCols + col, nil
}

// SeatPosition is the inverse of SeatIndex.
func SeatPosition(index int) (row, col int, err error) {
	if !ValidSeat(index) {
		return 0, 0, fmt.Errorf("%w: index=%d", ErrInvalidSeat, index)
	}
	return index / SeatCols, index % SeatCols, nil
}

// ValidSeat reports whether index addresses a seat in the grid.
func ValidSeat(index int) bool {
	return index >= 0 && index < SeatCount
}

// SeatLabel returns the human readable label of a seat: the row letter
// followed by the one-based column number, e.g. 0 -> "A1", 63 -> "H8".
// Invalid indices yield an empty string.
func SeatLabel(index int) string {
	row, col, err := SeatPosition(index)
	if err != nil {
		return ""
	}
	return string(rune('A'+row)) + strconv.Itoa(col+1)
}

// ParseSeat accepts either a label ("B2") or a legacy "row-col" seat id
// ("1-1") and returns the canonical index.
func ParseSeat(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidSeat)
	}
	if r, c, ok := strings.Cut(s, "-"); ok {
		row, ok1 := plainNumber(r)
		col, ok2 := plainNumber(c)
		if !ok1 || !ok2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSeat, s)
		}
		return SeatIndex(row, col)
	}
	letter := strings.ToUpper(s[:1])[0]
	col, ok := plainNumber(s[1:])
	if !ok || letter < 'A' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSeat, s)
	}
	return SeatIndex(int(letter-'A'), col-1)
}

// plainNumber parses an unsigned decimal without sign or leading zeros.
func plainNumber(s string) (int, bool) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

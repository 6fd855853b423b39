package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-seat-booking/internal/model"
	"github.com/iliyamo/cinema-seat-booking/internal/repository"
)

// Keys names the two storage entries the store owns.
type Keys struct {
	Occupied string
	Bookings string
}

// DefaultKeys matches the layout written by earlier releases.
var DefaultKeys = Keys{
	Occupied: "uc_bookings_v1",
	Bookings: "uc_my_bookings_v1",
}

// State is everything the store persists: occupied seat indices per show
// and the booking list, newest first.
type State struct {
	Occupied map[string]map[int]struct{}
	Bookings []model.BookingRecord
}

// EmptyState returns a State with initialised containers.
func EmptyState() State {
	return State{
		Occupied: make(map[string]map[int]struct{}),
		Bookings: []model.BookingRecord{},
	}
}

// occupiedDoc is the JSON document stored under Keys.Occupied.
type occupiedDoc struct {
	OccupiedSeatsMap map[string][]seatIndex `json:"occupiedSeatsMap"`
}

// seatIndex decodes from a JSON number or a numeric string.  Older data
// stored indices as strings.
type seatIndex int

func (s *seatIndex) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		n, err := strconv.Atoi(str)
		if err != nil {
			return fmt.Errorf("seat index %q: %w", str, err)
		}
		*s = seatIndex(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = seatIndex(n)
	return nil
}

// EncodeState serialises st into the two storage entries.  Indices are
// written as sorted integer arrays.
func EncodeState(keys Keys, st State) (map[string][]byte, error) {
	doc := occupiedDoc{OccupiedSeatsMap: make(map[string][]seatIndex, len(st.Occupied))}
	for show, set := range st.Occupied {
		idx := make([]seatIndex, 0, len(set))
		for _, i := range sortedSeats(set) {
			idx = append(idx, seatIndex(i))
		}
		doc.OccupiedSeatsMap[show] = idx
	}
	occ, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode occupied seats: %w", err)
	}
	bookings := st.Bookings
	if bookings == nil {
		bookings = []model.BookingRecord{}
	}
	list, err := json.Marshal(bookings)
	if err != nil {
		return nil, fmt.Errorf("encode bookings: %w", err)
	}
	return map[string][]byte{keys.Occupied: occ, keys.Bookings: list}, nil
}

// DecodeState is the inverse of EncodeState.  Missing entries decode to
// empty containers; out-of-range indices are dropped.
func DecodeState(keys Keys, raw map[string][]byte) (State, error) {
	st := EmptyState()
	if b, ok := raw[keys.Occupied]; ok && len(b) > 0 {
		var doc occupiedDoc
		if err := json.Unmarshal(b, &doc); err != nil {
			return EmptyState(), fmt.Errorf("%w: %s: %v", ErrStorageParseFailed, keys.Occupied, err)
		}
		for show, idx := range doc.OccupiedSeatsMap {
			set := make(map[int]struct{}, len(idx))
			for _, i := range idx {
				if model.ValidSeat(int(i)) {
					set[int(i)] = struct{}{}
				}
			}
			st.Occupied[show] = set
		}
	}
	if b, ok := raw[keys.Bookings]; ok && len(b) > 0 {
		var list []model.BookingRecord
		if err := json.Unmarshal(b, &list); err != nil {
			return EmptyState(), fmt.Errorf("%w: %s: %v", ErrStorageParseFailed, keys.Bookings, err)
		}
		if list != nil {
			st.Bookings = list
		}
	}
	return st, nil
}

// LoadState reads and decodes persisted state.  It never fails: a backend
// error or malformed data is logged and an empty state is returned.
func LoadState(ctx context.Context, kv repository.KV, keys Keys) State {
	raw, err := kv.Load(ctx, keys.Occupied, keys.Bookings)
	if err != nil {
		logrus.WithError(err).Warn("could not read booking state, starting empty")
		return EmptyState()
	}
	st, err := DecodeState(keys, raw)
	if err != nil {
		logrus.WithError(err).Warn("could not parse booking state, starting empty")
		return EmptyState()
	}
	return st
}

// Persist writes both entries with a single KV.Save call.
func Persist(ctx context.Context, kv repository.KV, keys Keys, st State) error {
	entries, err := EncodeState(keys, st)
	if err != nil {
		return err
	}
	if err := kv.Save(ctx, entries); err != nil {
		return fmt.Errorf("persist booking state: %w", err)
	}
	return nil
}

func sortedSeats(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

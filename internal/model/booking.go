package model

// BookingRecord is created once per confirmed booking and never changes
// afterwards.  Records are kept newest-first.
//
// Fields:
//
//	ID     – timestamp-derived identifier, unique within the store.
//	ShowID – show the seats belong to.
//	Title  – show name at booking time.
//	Seats  – seat labels in ascending seat order, e.g. ["A1", "B2"].
//	Date   – human readable booking time.
type BookingRecord struct {
	ID     int64    `json:"id"`
	ShowID string   `json:"showId"`
	Title  string   `json:"title"`
	Seats  []string `json:"seats"`
	Date   string   `json:"date"`
}

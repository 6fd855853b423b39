package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Show represents one title returned by the show source.  Shows are
// immutable once fetched; the booking layer only ever reads the ID and
// Name.
//
// Fields:
//
//	ID           – opaque identifier; the source may send it as a
//	               number or a string.
//	Name         – display title.
//	Genres       – genre names, treated as a set.
//	Summary      – free text, may contain HTML markup.
//	Runtime      – length in minutes, nil when unknown.
//	Rating       – average rating, nil when unknown.
//	Image        – poster URLs, nil when the source has none.
//	OfficialSite – optional site URL.
type Show struct {
	ID           ShowID     `json:"id"`
	Name         string     `json:"name"`
	Genres       []string   `json:"genres"`
	Summary      string     `json:"summary"`
	Runtime      *int       `json:"runtime,omitempty"`
	Rating       *Rating    `json:"rating,omitempty"`
	Image        *ShowImage `json:"image,omitempty"`
	OfficialSite string     `json:"officialSite,omitempty"`
}

// Rating mirrors the nested rating object of the show feed.
type Rating struct {
	Average *float64 `json:"average"`
}

// ShowImage holds the poster URLs of a show.
type ShowImage struct {
	Medium   string `json:"medium,omitempty"`
	Original string `json:"original,omitempty"`
}

// HasGenre reports whether g is one of the show's genres.
func (s Show) HasGenre(g string) bool {
	for _, sg := range s.Genres {
		if sg == g {
			return true
		}
	}
	return false
}

// AverageRating returns the rating or nil.
func (s Show) AverageRating() *float64 {
	if s.Rating == nil {
		return nil
	}
	return s.Rating.Average
}

// ShowID is a show identifier normalised to a string.  It unmarshals from
// JSON numbers as well as strings and always marshals as a string.
type ShowID string

func (id *ShowID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ShowID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("show id: %w", err)
	}
	*id = ShowID(n.String())
	return nil
}

func (id ShowID) String() string { return string(id) }

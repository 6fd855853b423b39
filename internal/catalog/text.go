package catalog

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/iliyamo/cinema-seat-booking/internal/model"
)

// DefaultTrailer is embedded when a show has no usable trailer link.
const DefaultTrailer = "https://www.youtube.com/embed/tgbNymZ7vqY"

// DefaultShortTextMax is the ShortText limit when none is given.
const DefaultShortTextMax = 140

// ShortText strips markup from s and shortens the remaining text to at most
// limit runes, replacing the tail with an ellipsis when it had to cut.
func ShortText(s string, limit int) string {
	if s == "" {
		return ""
	}
	if limit <= 0 {
		limit = DefaultShortTextMax
	}
	text := []rune(plainText(s))
	if len(text) <= limit {
		return string(text)
	}
	return string(text[:limit-1]) + "…"
}

// plainText concatenates the text nodes of an HTML fragment.
func plainText(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// TrailerURL uses the official site when it points at YouTube and falls
// back to DefaultTrailer otherwise.
func TrailerURL(s model.Show) string {
	if s.OfficialSite != "" && strings.Contains(s.OfficialSite, "youtube") {
		return s.OfficialSite
	}
	return DefaultTrailer
}

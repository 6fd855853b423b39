package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/iliyamo/cinema-seat-booking/internal/model"
)

// ErrFetchFailed wraps every failure to obtain the show list: transport
// errors, non-2xx responses, unreadable files and undecodable payloads.
var ErrFetchFailed = errors.New("fetch shows failed")

// Source yields the raw show list.
type Source interface {
	Fetch(ctx context.Context) ([]model.Show, error)
}

// HTTPSource fetches the show list with a single GET.  There is no retry.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource returns an HTTPSource whose client gives up after timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]model.Show, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}
	return decodeShows(resp.Body)
}

// FileSource reads the show list from a local JSON file.
type FileSource struct {
	Path string
}

func (s *FileSource) Fetch(_ context.Context) ([]model.Show, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer f.Close()
	return decodeShows(f)
}

// NewSource picks an HTTPSource for http(s) URLs and a FileSource for
// anything else.  A file:// prefix is stripped.
func NewSource(location string, timeout time.Duration) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewHTTPSource(location, timeout)
	}
	return &FileSource{Path: strings.TrimPrefix(location, "file://")}
}

func decodeShows(r io.Reader) ([]model.Show, error) {
	var shows []model.Show
	if err := json.NewDecoder(r).Decode(&shows); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrFetchFailed, err)
	}
	return shows, nil
}

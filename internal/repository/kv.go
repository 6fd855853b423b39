package repository

import "context"

// KV is a string-keyed store of opaque values.  Load returns only the keys
// that exist.  Save writes all entries in a single atomic operation so a
// reader never observes half of a multi-key update.
type KV interface {
	Load(ctx context.Context, keys ...string) (map[string][]byte, error)
	Save(ctx context.Context, entries map[string][]byte) error
}

// Package repository provides the durable key-value backends the booking
// store persists to.  Every backend implements KV; the sentinel values in
// this file let callers tell misconfiguration apart from backend failures.
package repository

import "errors"

// ErrNoKeys is returned by Load when it is called without any key.
var ErrNoKeys = errors.New("no keys requested")

// ErrUnavailable is returned when a backend has no live connection, for
// example a nil Redis client after a failed ping at startup.
var ErrUnavailable = errors.New("storage backend unavailable")

package core

import "errors"

// Common errors.
var (
	// ErrNotFound is returned by Store.Get when no note has the given ID.
	ErrNotFound = errors.New("note not found")

	// ErrWatchUnsupported is returned when the backend cannot report external changes.
	ErrWatchUnsupported = errors.New("backend does not support watching")

	// ErrReadOnly is returned by backends opened in read-only mode.
	ErrReadOnly = errors.New("backend is in read-only mode")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store is closed")
)

package core

import "context"

// KV is the key-value backend the persistence adapter writes through.
// A value is an opaque blob; there are no partial reads or writes.
type KV interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases the backend's resources.
	Close() error
}

// Initializer is implemented by backends that need setup before first use
// (create directories, run the schema, check the bucket).
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Watchable is implemented by backends that can report changes made to the
// stored blob by other processes.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// Persister loads and saves the whole note collection.
//
// Load never fails: read or decode errors are logged by the implementation
// and an empty collection is returned. Save returns the write error as its
// completion signal.
type Persister interface {
	Load(ctx context.Context) []Note
	Save(ctx context.Context, notes []Note) error
}

// Package storage persists the note collection as a single blob under a
// fixed key of a key-value backend.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/noteease/pkg/core"
)

// DefaultKey is the key the collection is stored under.
const DefaultKey = "notes"

// Adapter implements core.Persister on top of a core.KV.
type Adapter struct {
	kv     core.KV
	key    string
	codec  Codec
	logger *slog.Logger
}

// Config holds the configuration for the persistence adapter.
type Config struct {
	Key    string       // Defaults to DefaultKey.
	Codec  Codec        // Defaults to JSONCodec.
	Logger *slog.Logger // Nil discards output.
}

// NewAdapter creates a persistence adapter writing through kv.
func NewAdapter(kv core.KV, config Config) *Adapter {
	a := &Adapter{
		kv:     kv,
		key:    config.Key,
		codec:  config.Codec,
		logger: config.Logger,
	}
	if a.key == "" {
		a.key = DefaultKey
	}
	if a.codec == nil {
		a.codec = JSONCodec{}
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	return a
}

// Key returns the key the collection is stored under.
func (a *Adapter) Key() string { return a.key }

// Load reads and decodes the collection. A missing key yields an empty
// collection. Read and decode failures are logged and also yield an empty
// collection; nothing is recovered from a damaged blob.
func (a *Adapter) Load(ctx context.Context) []core.Note {
	data, found, err := a.kv.Get(ctx, a.key)
	if err != nil {
		a.logger.Error("failed to fetch notes", "key", a.key, "error", err)
		return []core.Note{}
	}
	if !found {
		return []core.Note{}
	}

	notes, err := a.codec.Unmarshal(data)
	if err != nil {
		a.logger.Error("failed to fetch notes", "key", a.key, "format", a.codec.Name(), "error", err)
		return []core.Note{}
	}
	if notes == nil {
		notes = []core.Note{}
	}
	return notes
}

// Save encodes the collection and overwrites the stored blob.
// Failures are logged and returned; there is no retry.
func (a *Adapter) Save(ctx context.Context, notes []core.Note) error {
	data, err := a.codec.Marshal(notes)
	if err != nil {
		a.logger.Error("failed to save notes", "key", a.key, "error", err)
		return fmt.Errorf("failed to encode notes: %w", err)
	}
	if err := a.kv.Set(ctx, a.key, data); err != nil {
		a.logger.Error("failed to save notes", "key", a.key, "error", err)
		return fmt.Errorf("failed to write notes: %w", err)
	}
	a.logger.Debug("notes saved", "key", a.key, "count", len(notes), "bytes", len(data))
	return nil
}

// Watch forwards the backend's change events when it supports watching.
func (a *Adapter) Watch(ctx context.Context) (<-chan core.Event, error) {
	w, ok := a.kv.(core.Watchable)
	if !ok {
		return nil, core.ErrWatchUnsupported
	}
	return w.Watch(ctx)
}

// Initialize prepares the backend if it needs it.
func (a *Adapter) Initialize(ctx context.Context) error {
	if i, ok := a.kv.(core.Initializer); ok {
		return i.Initialize(ctx)
	}
	return nil
}

// Close closes the backend.
func (a *Adapter) Close() error {
	return a.kv.Close()
}

// ComponentType implements introspection.Component.
func (a *Adapter) ComponentType() string {
	if comp, ok := a.kv.(interface{ ComponentType() string }); ok {
		return comp.ComponentType()
	}
	return "kv"
}

// State implements introspection.Introspectable by reporting the backend's
// state, when it has one.
func (a *Adapter) State() any {
	if intro, ok := a.kv.(interface{ State() any }); ok {
		return intro.State()
	}
	return nil
}

// Package memory provides an in-process key-value backend.
// It is used for tests and for sessions that should not touch disk.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/noteease/pkg/core"
)

// KV implements core.KV with a map.
type KV struct {
	mu     sync.RWMutex
	values map[string][]byte
	closed bool
}

// New creates an empty in-memory backend.
func New() *KV {
	return &KV{values: make(map[string][]byte)}
}

func (m *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, core.ErrClosed
	}
	v, ok := m.values[key]
	return slices.Clone(v), ok, nil
}

func (m *KV) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return core.ErrClosed
	}
	m.values[key] = slices.Clone(value)
	return nil
}

func (m *KV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// ComponentType implements introspection.Component.
func (m *KV) ComponentType() string {
	return "memory"
}

var _ core.KV = (*KV)(nil)

package core

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	NoteCount      int    `json:"note_count"`
	PendingWrites  int    `json:"pending_writes"`
	Subscribers    int    `json:"subscribers"`
	EventBuffer    int    `json:"event_buffer"`
	PersisterType  string `json:"persister_type"`
	LastWriteError string `json:"last_write_error,omitempty"`
	Closed         bool   `json:"closed"`
	Backend        any    `json:"backend,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	count := len(s.notes)
	closed := s.closed
	s.mu.RUnlock()

	s.writeMu.Lock()
	var lastErr string
	if s.lastWriteErr != nil {
		lastErr = s.lastWriteErr.Error()
	}
	s.writeMu.Unlock()

	s.subsMu.Lock()
	subs := len(s.subs)
	s.subsMu.Unlock()

	persisterType := "unknown"
	var backend any
	if s.persister != nil {
		persisterType = "persister"
		if comp, ok := s.persister.(introspection.Component); ok {
			persisterType = comp.ComponentType()
		}
		if intro, ok := s.persister.(introspection.Introspectable); ok {
			backend = intro.State()
		}
	}

	return StoreState{
		NoteCount:      count,
		PendingWrites:  s.inflight.count(),
		Subscribers:    subs,
		EventBuffer:    s.eventBuffer,
		PersisterType:  persisterType,
		LastWriteError: lastErr,
		Closed:         closed,
		Backend:        backend,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

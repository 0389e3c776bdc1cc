package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
)

// Store is the in-memory note collection of a running application.
//
// Every mutation replaces the collection, is visible to List immediately and
// schedules an asynchronous write of the whole collection through the
// Persister. Write failures are logged and reported to the write error
// handler; the in-memory state is not rolled back.
//
// Create one Store at application start and Close it at exit.
type Store struct {
	persister    Persister
	logger       *slog.Logger
	onWriteError func(error)
	eventBuffer  int
	now          func() time.Time

	mu     sync.RWMutex
	notes  []Note
	gen    uint64
	closed bool

	writeMu      sync.Mutex
	written      uint64
	lastWriteErr error

	inflight *inflight

	subsMu sync.Mutex
	subs   map[chan Event]struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger. A nil logger discards output.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWriteErrorHandler registers a callback for failed background writes.
// The callback runs on the writer goroutine.
func WithWriteErrorHandler(fn func(error)) StoreOption {
	return func(s *Store) {
		s.onWriteError = fn
	}
}

// WithEventBuffer sets the buffer size of subscriber channels.
// Zero means default (16).
func WithEventBuffer(size int) StoreOption {
	return func(s *Store) {
		if size > 0 {
			s.eventBuffer = size
		}
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty Store backed by p. Call Refresh to load the
// persisted collection.
func NewStore(p Persister, opts ...StoreOption) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		persister:   p,
		logger:      slog.New(slog.DiscardHandler),
		eventBuffer: 16,
		now:         time.Now,
		inflight:    newInflight(),
		subs:        make(map[chan Event]struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh waits for scheduled writes, then reloads the collection from the
// Persister and replaces the in-memory state. Views call it when they become
// active again so changes made elsewhere are reflected.
func (s *Store) Refresh(ctx context.Context) {
	s.mu.Lock()
	if err := s.inflight.wait(ctx); err != nil {
		s.logger.Warn("refresh did not wait for pending writes", "error", err)
	}
	notes := s.persister.Load(ctx)
	if notes == nil {
		notes = []Note{}
	}
	s.notes = notes
	s.mu.Unlock()

	s.logger.Debug("notes refreshed", "count", len(notes))
	s.publish(Event{Type: EventRefresh, Timestamp: s.now().Unix()})
}

// List returns a copy of the collection, newest first.
func (s *Store) List() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notes)
}

// Get returns the note with the given ID, or ErrNotFound.
func (s *Store) Get(id string) (Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notes {
		if n.ID == id {
			return n, nil
		}
	}
	return Note{}, ErrNotFound
}

// Create prepends the note and schedules a write. Fields are not validated.
func (s *Store) Create(note Note) {
	s.mu.Lock()
	next := make([]Note, 0, len(s.notes)+1)
	next = append(next, note)
	next = append(next, s.notes...)
	s.replace(next)
	s.mu.Unlock()

	s.publish(Event{Type: EventCreate, ID: note.ID, Timestamp: s.now().Unix()})
}

// Update replaces the note whose ID matches note.ID. When no note matches the
// collection is left unchanged; the caller is not told. A write is scheduled
// either way.
func (s *Store) Update(note Note) {
	s.mu.Lock()
	next := slices.Clone(s.notes)
	matched := false
	for i := range next {
		if next[i].ID == note.ID {
			next[i] = note
			matched = true
		}
	}
	s.replace(next)
	s.mu.Unlock()

	if !matched {
		s.logger.Debug("update ignored, note not found", "id", note.ID)
		return
	}
	s.publish(Event{Type: EventUpdate, ID: note.ID, Timestamp: s.now().Unix()})
}

// Delete removes the note with the given ID. Deleting a missing ID is a no-op;
// a write is scheduled either way.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	before := len(s.notes)
	next := slices.DeleteFunc(slices.Clone(s.notes), func(n Note) bool {
		return n.ID == id
	})
	s.replace(next)
	s.mu.Unlock()

	if len(next) == before {
		s.logger.Debug("delete ignored, note not found", "id", id)
		return
	}
	s.publish(Event{Type: EventDelete, ID: id, Timestamp: s.now().Unix()})
}

// Flush blocks until every scheduled write has finished or ctx is done.
func (s *Store) Flush(ctx context.Context) error {
	return s.inflight.wait(ctx)
}

// Watch returns the backend's external change events.
func (s *Store) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.persister.(Watchable)
	if !ok {
		return nil, ErrWatchUnsupported
	}
	return w.Watch(ctx)
}

// AutoRefresh reloads the collection whenever the backend reports an
// external change, until ctx is done.
func (s *Store) AutoRefresh(ctx context.Context) error {
	events, err := s.Watch(ctx)
	if err != nil {
		return err
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				s.logger.Debug("external change detected", "event", e.String())
				s.Refresh(ctx)
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("auto refresh panic", "error", err)
	}))
	return nil
}

// Subscribe returns a channel of collection events. The channel is closed
// when ctx is done or the store is closed. Events are dropped for
// subscribers whose buffer is full.
func (s *Store) Subscribe(ctx context.Context) (<-chan Event, error) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	if s.ctx.Err() != nil {
		return nil, ErrClosed
	}

	ch := make(chan Event, s.eventBuffer)
	s.subs[ch] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-s.ctx.Done():
		}
		s.subsMu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.subsMu.Unlock()
	}()

	return ch, nil
}

// Close waits for scheduled writes, closes subscriptions, stops background
// work and closes the Persister when it is an io.Closer. Mutations after
// Close stay in memory only.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.inflight.wait(ctx)
	s.cancel()

	s.subsMu.Lock()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
	s.subsMu.Unlock()

	if c, ok := s.persister.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}

// replace swaps in the next collection and schedules its write.
// Callers hold s.mu.
func (s *Store) replace(next []Note) {
	s.notes = next
	if s.closed {
		s.logger.Warn("store closed, change not persisted", "count", len(next))
		return
	}

	s.gen++
	gen := s.gen
	snapshot := slices.Clone(next)

	s.inflight.add()
	lifecycle.Go(s.ctx, func(ctx context.Context) error {
		defer s.inflight.done()
		s.persist(ctx, gen, snapshot)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("persist panic", "error", err)
	}))
}

// persist writes a snapshot unless a newer one has already been written.
func (s *Store) persist(ctx context.Context, gen uint64, notes []Note) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if gen <= s.written {
		return
	}
	s.written = gen

	err := s.persister.Save(ctx, notes)
	s.lastWriteErr = err
	if err != nil && s.onWriteError != nil {
		s.onWriteError(err)
	}
}

func (s *Store) publish(e Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- e:
		default:
			s.logger.Debug("subscriber buffer full, event dropped", "event", e.String())
		}
	}
}

// inflight counts scheduled writes and lets callers wait for them to drain.
type inflight struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func newInflight() *inflight {
	idle := make(chan struct{})
	close(idle)
	return &inflight{idle: idle}
}

func (f *inflight) add() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.n == 0 {
		f.idle = make(chan struct{})
	}
	f.n++
}

func (f *inflight) done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n--
	if f.n == 0 {
		close(f.idle)
	}
}

func (f *inflight) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

func (f *inflight) wait(ctx context.Context) error {
	f.mu.Lock()
	idle := f.idle
	f.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

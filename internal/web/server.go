// Package web serves the note views over HTTP.
//
// Views are thin: every request goes straight to the Store, and the list
// reloads the collection on each visit so changes made by other processes
// show up.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/noteease/pkg/bridge"
	"github.com/aretw0/noteease/pkg/core"
)

// DefaultDetachGrace is how long an editing session survives without a
// connected editor before it is discarded.
const DefaultDetachGrace = 30 * time.Second

// Server holds the views and the active editing sessions.
type Server struct {
	store    *core.Store
	logger   *slog.Logger
	renderer *renderer
	now      func() time.Time
	grace    time.Duration

	mu       sync.Mutex
	sessions map[string]*editSession
}

// editSession is guarded by Server.mu.
type editSession struct {
	session *bridge.Session
	cancel  context.CancelFunc
	editors int
	expiry  *time.Timer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time used to stamp new notes.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDetachGrace sets how long a session waits for an editor to
// (re)connect before it is discarded. Zero or less means DefaultDetachGrace.
func WithDetachGrace(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.grace = d
		}
	}
}

// NewServer creates the views for store.
func NewServer(store *core.Store, opts ...Option) (*Server, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	s := &Server{
		store:    store,
		logger:   slog.New(slog.DiscardHandler),
		renderer: r,
		now:      time.Now,
		grace:    DefaultDetachGrace,
		sessions: make(map[string]*editSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleList)
	r.Get("/notes/new", s.handleBeginDraft)
	r.Post("/notes", s.handleCreate)
	r.Route("/notes/{id}", func(r chi.Router) {
		r.Get("/", s.handleDetail)
		r.Post("/delete", s.handleDelete)
		r.Post("/edit", s.handleBeginEdit)
	})
	r.Route("/edit/{session}", func(r chi.Router) {
		r.Get("/", s.handleEditor)
		r.Get("/ws", s.handleEditorSocket)
		r.Post("/format", s.handleFormat)
		r.Post("/save", s.handleSave)
		r.Post("/cancel", s.handleCancel)
	})
	return r
}

// Close cancels every open editing session. Pending edits are discarded.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, es := range s.sessions {
		delete(s.sessions, id)
		es.stop()
	}
}

// stop discards pending edits and releases the session's goroutine.
func (es *editSession) stop() {
	if es.expiry != nil {
		es.expiry.Stop()
	}
	_ = es.session.Cancel()
	es.cancel()
	es.session.Bridge().Close()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

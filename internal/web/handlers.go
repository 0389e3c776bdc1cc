package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/noteease/pkg/adapters/websocket"
	"github.com/aretw0/noteease/pkg/bridge"
	"github.com/aretw0/noteease/pkg/core"
)

const (
	msgNoteNotFound    = "Note not found."
	msgSessionNotFound = "Editing session not found."
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.store.Refresh(r.Context())
	s.renderPage(w, http.StatusOK, "list", map[string]any{"Notes": s.store.List()})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	title, content := r.PostForm.Get("title"), r.PostForm.Get("content")
	if core.ShouldCreate(title, content) {
		note := core.NewNote(title, content, s.now())
		s.store.Create(note)
		s.logger.Info("note created", "id", note.ID)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	note, err := s.store.Get(chi.URLParam(r, "id"))
	if errors.Is(err, core.ErrNotFound) {
		s.renderNotFound(w, msgNoteNotFound)
		return
	}
	s.renderPage(w, http.StatusOK, "detail", map[string]any{"Note": note})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.store.Delete(id)
	s.logger.Info("note deleted", "id", id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	note, err := s.store.Get(chi.URLParam(r, "id"))
	if errors.Is(err, core.ErrNotFound) {
		s.renderNotFound(w, msgNoteNotFound)
		return
	}
	s.startSession(w, r, func(ctx context.Context, session *bridge.Session) error {
		return session.Begin(ctx, note)
	})
}

// handleBeginDraft opens the editor on a note that is only created on save.
func (s *Server) handleBeginDraft(w http.ResponseWriter, r *http.Request) {
	s.startSession(w, r, func(ctx context.Context, session *bridge.Session) error {
		return session.BeginDraft(ctx)
	})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, begin func(context.Context, *bridge.Session) error) {
	// Sessions outlive the request that starts them.
	ctx, cancel := context.WithCancel(context.Background())
	session := bridge.NewSession(bridge.New(0), s.store,
		bridge.WithSessionLogger(s.logger),
		bridge.WithSessionClock(s.now),
	)
	if err := begin(ctx, session); err != nil {
		cancel()
		s.logger.Error("failed to start editing", "error", err)
		http.Error(w, "failed to start editing", http.StatusInternalServerError)
		return
	}
	go func() { _ = session.Run(ctx) }()

	es := &editSession{session: session, cancel: cancel}
	s.mu.Lock()
	s.sessions[session.ID()] = es
	s.armExpiry(es)
	s.mu.Unlock()

	http.Redirect(w, r, "/edit/"+session.ID(), http.StatusSeeOther)
}

func (s *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	es, ok := s.session(r)
	if !ok {
		s.renderNotFound(w, msgSessionNotFound)
		return
	}
	page := "edit"
	if es.session.Draft() {
		page = "create"
	}
	title, _ := es.session.Snapshot()
	s.renderPage(w, http.StatusOK, page, map[string]any{
		"Session": es.session.ID(),
		"Note":    es.session.Note(),
		"Title":   title,
	})
}

// handleEditorSocket serves one editor connection. Every connection starts
// from the session's pending content, so a reloaded page loses nothing.
func (s *Server) handleEditorSocket(w http.ResponseWriter, r *http.Request) {
	es, ok := s.attach(chi.URLParam(r, "session"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	defer s.detach(es)

	if err := es.session.Resync(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	websocket.Handler(es.session.Bridge(), s.logger).ServeHTTP(w, r)
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	es, ok := s.session(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	cmd, err := bridge.ParseCommand(r.PostForm.Get("command"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := es.session.Format(r.Context(), cmd); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	es, ok := s.session(r)
	if !ok {
		s.renderNotFound(w, msgSessionNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if err := es.session.SetTitle(r.PostForm.Get("title")); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	draft := es.session.Draft()
	note, err := es.session.Commit(r.Context())
	switch {
	case errors.Is(err, bridge.ErrEmptyNote):
		s.endSession(es)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.endSession(es)
	if draft {
		s.logger.Info("note created", "id", note.ID)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.logger.Info("note updated", "id", note.ID)
	http.Redirect(w, r, "/notes/"+note.ID, http.StatusSeeOther)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	es, ok := s.session(r)
	if !ok {
		s.renderNotFound(w, msgSessionNotFound)
		return
	}
	s.endSession(es)
	if es.session.Draft() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/notes/"+es.session.Note().ID, http.StatusSeeOther)
}

func (s *Server) session(r *http.Request) (*editSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	es, ok := s.sessions[chi.URLParam(r, "session")]
	return es, ok
}

func (s *Server) endSession(es *editSession) {
	s.mu.Lock()
	delete(s.sessions, es.session.ID())
	s.mu.Unlock()
	es.stop()
}

// attach counts a connected editor and holds off expiry while it stays.
func (s *Server) attach(id string) (*editSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	es, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	es.editors++
	if es.expiry != nil {
		es.expiry.Stop()
		es.expiry = nil
	}
	return es, true
}

func (s *Server) detach(es *editSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	es.editors--
	if es.editors == 0 && s.sessions[es.session.ID()] == es {
		s.armExpiry(es)
	}
}

// armExpiry discards es after the grace period unless an editor attaches
// first. s.mu must be held.
func (s *Server) armExpiry(es *editSession) {
	es.expiry = time.AfterFunc(s.grace, func() { s.expire(es) })
}

func (s *Server) expire(es *editSession) {
	s.mu.Lock()
	if es.editors > 0 || s.sessions[es.session.ID()] != es {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, es.session.ID())
	s.mu.Unlock()

	es.stop()
	s.logger.Info("editing session discarded, no editor connected", "session", es.session.ID())
}

func (s *Server) renderNotFound(w http.ResponseWriter, message string) {
	s.renderPage(w, http.StatusNotFound, "notfound", map[string]any{"Message": message})
}

func (s *Server) renderPage(w http.ResponseWriter, status int, page string, data any) {
	if err := s.renderer.render(w, status, page, data); err != nil {
		s.logger.Error("failed to render page", "page", page, "error", err)
	}
}

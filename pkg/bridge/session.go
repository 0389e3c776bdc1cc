package bridge

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/noteease/pkg/core"
)

// Writer receives committed notes. *core.Store satisfies it.
type Writer interface {
	Create(note core.Note)
	Update(note core.Note)
}

// Session is the editing state of one note: Idle until Begin or BeginDraft,
// Editing until Commit or Cancel.
type Session struct {
	id     string
	bridge *Bridge
	store  Writer
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	editing  bool
	draft    bool
	note     core.Note
	title    string
	snapshot string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger. A nil logger discards output.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionClock overrides the time used to stamp drafts on commit.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession creates an idle session with a random id.
func NewSession(b *Bridge, store Writer, opts ...SessionOption) *Session {
	s := &Session{
		id:     uuid.NewString(),
		bridge: b,
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID identifies the session.
func (s *Session) ID() string { return s.id }

// Bridge returns the bridge the session talks through.
func (s *Session) Bridge() *Bridge { return s.bridge }

// Begin starts editing note and pushes its content to the surface once.
func (s *Session) Begin(ctx context.Context, note core.Note) error {
	return s.begin(ctx, note, false)
}

// BeginDraft starts editing a note that does not exist yet. Commit creates
// it, provided the title or the content is non-empty.
func (s *Session) BeginDraft(ctx context.Context) error {
	return s.begin(ctx, core.Note{}, true)
}

func (s *Session) begin(ctx context.Context, note core.Note, draft bool) error {
	s.mu.Lock()
	if s.editing {
		s.mu.Unlock()
		return ErrAlreadyEditing
	}
	s.editing = true
	s.draft = draft
	s.note = note
	s.title = note.Title
	s.snapshot = note.Content
	s.mu.Unlock()

	if err := s.bridge.PushContent(ctx, note.Content); err != nil {
		s.mu.Lock()
		s.editing = false
		s.mu.Unlock()
		return err
	}
	s.logger.Debug("editing started", "session", s.id, "id", note.ID, "draft", draft)
	return nil
}

// Resync replaces whatever is queued for the surface with the current
// snapshot. A surface that reconnects calls it to get the pending content.
func (s *Session) Resync(ctx context.Context) error {
	s.mu.Lock()
	if !s.editing {
		s.mu.Unlock()
		return ErrNotEditing
	}
	snapshot := s.snapshot
	s.mu.Unlock()

	if n := s.bridge.Discard(); n > 0 {
		s.logger.Debug("stale surface messages discarded", "session", s.id, "count", n)
	}
	return s.bridge.PushContent(ctx, snapshot)
}

// Observe records a content snapshot from the surface. Snapshots arriving
// while idle are dropped.
func (s *Session) Observe(markup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editing {
		s.logger.Debug("content change dropped, session idle", "session", s.id)
		return
	}
	s.snapshot = markup
}

// Run feeds the bridge's content changes into Observe until ctx is done or
// the bridge is closed.
func (s *Session) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.bridge.Done():
			return nil
		case markup := <-s.bridge.Changes():
			s.Observe(markup)
		}
	}
}

// Format forwards a formatting command while editing.
func (s *Session) Format(ctx context.Context, cmd Command) error {
	if !s.Editing() {
		return ErrNotEditing
	}
	return s.bridge.ApplyCommand(ctx, cmd)
}

// SetTitle changes the pending title.
func (s *Session) SetTitle(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editing {
		return ErrNotEditing
	}
	s.title = title
	return nil
}

// Commit writes the trimmed title and the last snapshot to the store and
// returns to idle. ID and Date are kept. A draft is created instead, or
// dropped with ErrEmptyNote when both title and content are empty.
func (s *Session) Commit(ctx context.Context) (core.Note, error) {
	if err := ctx.Err(); err != nil {
		return core.Note{}, err
	}

	s.mu.Lock()
	if !s.editing {
		s.mu.Unlock()
		return core.Note{}, ErrNotEditing
	}
	s.editing = false
	draft, title, content := s.draft, s.title, s.snapshot
	updated := s.note
	s.mu.Unlock()

	if draft {
		if !core.ShouldCreate(title, content) {
			s.logger.Debug("empty draft dropped", "session", s.id)
			return core.Note{}, ErrEmptyNote
		}
		created := core.NewNote(title, content, s.now())
		s.store.Create(created)
		s.logger.Debug("draft committed", "session", s.id, "id", created.ID)
		return created, nil
	}

	updated.Title = strings.TrimSpace(title)
	updated.Content = content
	s.store.Update(updated)
	s.logger.Debug("edit committed", "session", s.id, "id", updated.ID)
	return updated, nil
}

// Cancel discards the pending edits and returns to idle.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editing {
		return ErrNotEditing
	}
	s.editing = false
	s.logger.Debug("edit cancelled", "session", s.id, "id", s.note.ID)
	return nil
}

// Editing reports whether an edit is active.
func (s *Session) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// Snapshot returns the pending title and content.
func (s *Session) Snapshot() (title, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title, s.snapshot
}

// Note returns the note being edited.
func (s *Session) Note() core.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.note
}

// Draft reports whether the session edits a note that does not exist yet.
func (s *Session) Draft() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

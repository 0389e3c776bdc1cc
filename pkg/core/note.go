package core

import (
	"strconv"
	"strings"
	"time"
)

const (
	// UntitledNote is displayed in place of an empty title.
	UntitledNote = "Untitled Note"

	// DateLayout formats the creation date the way the en-US long date does
	// (e.g. "March 4, 2025").
	DateLayout = "January 2, 2006"
)

// Note is the central entity of the domain.
// Content is markup (paragraphs plus bold/italic/underline spans) and is
// never parsed or validated by the store.
type Note struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Date    string `json:"date" yaml:"date"`
}

// NewNote stamps a new note with a timestamp-derived ID and a formatted
// creation date. The title is trimmed; the content is kept verbatim.
func NewNote(title, content string, now time.Time) Note {
	return Note{
		ID:      NewID(now),
		Title:   strings.TrimSpace(title),
		Content: content,
		Date:    now.Format(DateLayout),
	}
}

// NewID derives a note ID from the Unix millisecond timestamp.
// Two notes created in the same millisecond collide; that is accepted.
func NewID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// ShouldCreate reports whether a draft is worth creating.
// Views only call Store.Create when the title or the content is non-empty.
func ShouldCreate(title, content string) bool {
	return title != "" || content != ""
}

// DisplayTitle returns the title, or UntitledNote when it is empty.
func (n Note) DisplayTitle() string {
	if n.Title == "" {
		return UntitledNote
	}
	return n.Title
}

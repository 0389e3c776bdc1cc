package bridge

import (
	"context"
	"fmt"
	"sync"
)

var formatTags = map[Command]string{
	Bold:      "b",
	Italic:    "i",
	Underline: "u",
}

// EchoSurface is a headless surface. It executes injected scripts against an
// in-memory document and reports the resulting markup back over the bridge,
// the way an embedded editor does after every input event. Formatting wraps
// the whole document since there is no selection.
type EchoSurface struct {
	mu      sync.Mutex
	content string
}

// NewEchoSurface returns a surface with an empty document.
func NewEchoSurface() *EchoSurface {
	return &EchoSurface{}
}

// Content returns the current document.
func (e *EchoSurface) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content
}

// Attach serves the bridge until ctx is done or the bridge is closed. Every
// outbound message goes through its script form.
func (e *EchoSurface) Attach(ctx context.Context, b *Bridge) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.Done():
			return nil
		case m := <-b.Outbound():
			script, err := m.Script()
			if err != nil {
				return err
			}
			markup, err := e.Exec(script)
			if err != nil {
				return err
			}
			if err := b.Notify(ctx, markup); err != nil {
				return err
			}
		}
	}
}

// Exec runs one script and returns the document afterwards.
func (e *EchoSurface) Exec(script string) (string, error) {
	m, err := ParseScript(script)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	switch m.Type {
	case TypeSetContent:
		e.content = m.Content
	case TypeFormat:
		tag := formatTags[m.Command]
		e.content = fmt.Sprintf("<%s>%s</%s>", tag, e.content, tag)
	}
	return e.content, nil
}

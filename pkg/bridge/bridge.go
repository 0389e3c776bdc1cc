// Package bridge connects the application to an isolated rich-text editing
// surface.
//
// The two sides share no memory. The application sends SET_CONTENT and FORMAT
// messages on the outbound channel; the surface reports its full markup after
// every edit on the changes channel. Nothing is acknowledged.
package bridge

import (
	"context"
	"sync"
)

const defaultBuffer = 8

// Bridge is a pair of one-way channels between the application and a surface.
type Bridge struct {
	out     chan Message
	changes chan string

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a bridge whose channels buffer up to buffer messages.
// Zero or less means the default.
func New(buffer int) *Bridge {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Bridge{
		out:     make(chan Message, buffer),
		changes: make(chan string, buffer),
		done:    make(chan struct{}),
	}
}

// Outbound is read by the surface side.
func (b *Bridge) Outbound() <-chan Message { return b.out }

// Changes is read by the application side.
func (b *Bridge) Changes() <-chan string { return b.changes }

// Done is closed by Close. The channels themselves are never closed.
func (b *Bridge) Done() <-chan struct{} { return b.done }

// PushContent replaces the surface content with markup.
func (b *Bridge) PushContent(ctx context.Context, markup string) error {
	return b.send(ctx, SetContent(markup))
}

// ApplyCommand asks the surface to format the current selection.
func (b *Bridge) ApplyCommand(ctx context.Context, cmd Command) error {
	if !cmd.Valid() {
		return ErrUnknownCommand
	}
	return b.send(ctx, Format(cmd))
}

// Notify is called by the surface side with the full markup after an edit.
func (b *Bridge) Notify(ctx context.Context, markup string) error {
	select {
	case <-b.done:
		return ErrClosed
	default:
	}
	select {
	case b.changes <- markup:
		return nil
	case <-b.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Discard drops every outbound message not yet read by a surface and
// returns how many were dropped.
func (b *Bridge) Discard() int {
	n := 0
	for {
		select {
		case <-b.out:
			n++
		default:
			return n
		}
	}
}

// Close stops further sends. Pending messages stay readable.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

func (b *Bridge) send(ctx context.Context, m Message) error {
	select {
	case <-b.done:
		return ErrClosed
	default:
	}
	select {
	case b.out <- m:
		return nil
	case <-b.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Package lifecycle exposes note events as a lifecycle.Source.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/noteease/pkg/core"
)

// Subscriber is implemented by *core.Store.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan core.Event, error)
}

type noteSource struct {
	open func(ctx context.Context) (<-chan core.Event, error)
	out  chan lifecycle.Event
}

// NewSource creates a source that forwards events until the channel closes.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &noteSource{
		open: func(context.Context) (<-chan core.Event, error) { return events, nil },
		out:  make(chan lifecycle.Event),
	}
}

// StoreSource creates a source that subscribes to the store on Start.
func StoreSource(store Subscriber) lifecycle.Source {
	return &noteSource{
		open: store.Subscribe,
		out:  make(chan lifecycle.Event),
	}
}

func (s *noteSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start begins forwarding. Events is closed when ctx is done or the
// underlying channel closes.
func (s *noteSource) Start(ctx context.Context) error {
	events, err := s.open(ctx)
	if err != nil {
		return err
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

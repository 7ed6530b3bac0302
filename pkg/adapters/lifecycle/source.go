// Package lifecycle bridges the service event stream into aretw0/lifecycle.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/cirrus/pkg/core"
)

type eventSource struct {
	events <-chan core.Event
	filter func(core.Event) bool
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that re-emits service events.
// core.Event satisfies lifecycle.Event through its String method.
// A nil filter keeps every event.
func NewSource(events <-chan core.Event, filter func(core.Event) bool) lifecycle.Source {
	return &eventSource{
		events: events,
		filter: filter,
		out:    make(chan lifecycle.Event),
	}
}

func (s *eventSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start pumps events until ctx is done or the input closes, then closes
// the output.
func (s *eventSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if s.filter != nil && !s.filter(e) {
					continue
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

// Only returns a filter keeping the given event types.
func Only(types ...core.EventType) func(core.Event) bool {
	keep := make(map[core.EventType]bool, len(types))
	for _, t := range types {
		keep[t] = true
	}
	return func(e core.Event) bool { return keep[e.Type] }
}

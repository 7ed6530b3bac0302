package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// EventType represents the kind of observable change.
type EventType string

const (
	EventCreate     EventType = "CREATE"
	EventModify     EventType = "MODIFY"
	EventDelete     EventType = "DELETE"
	EventSync       EventType = "SYNC"
	EventSyncFailed EventType = "SYNC_FAILED"
	EventPushFailed EventType = "PUSH_FAILED"
	EventState      EventType = "STATE"
)

// Event represents something the presentation layer may want to render:
// a local mutation, a sync outcome, a failed push or a connectivity change.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
	Detail    string
}

func (e Event) String() string {
	switch {
	case e.ID != "" && e.Detail != "":
		return fmt.Sprintf("%s %s (%s)", e.Type, e.ID, e.Detail)
	case e.ID != "":
		return fmt.Sprintf("%s %s", e.Type, e.ID)
	case e.Detail != "":
		return fmt.Sprintf("%s (%s)", e.Type, e.Detail)
	}
	return string(e.Type)
}

// DefaultEventBuffer is the per-subscriber buffer used when none is given.
const DefaultEventBuffer = 100

// Broker fans events out to subscribers without ever blocking the publisher.
// A subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	buffer int
	logger *slog.Logger
	now    func() time.Time
}

// NewBroker creates a broker. Zero buffer means DefaultEventBuffer.
func NewBroker(buffer int, logger *slog.Logger) *Broker {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		subs:   make(map[chan Event]struct{}),
		buffer: buffer,
		logger: logger,
		now:    time.Now,
	}
}

// Subscribe returns a channel of events that is closed when ctx is done.
func (b *Broker) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()
	return ch
}

// Publish delivers e to every subscriber that has room for it.
func (b *Broker) Publish(e Event) {
	if e.Timestamp == 0 {
		e.Timestamp = b.now().Unix()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.logger.Debug("event dropped, subscriber is full", "type", e.Type, "id", e.ID)
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

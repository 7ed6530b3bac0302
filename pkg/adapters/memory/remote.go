// Package memory provides an in-process remote note store.
//
// It backs the reference HTTP server, the "memory://" URI and the tests.
// Besides the core.Remote contract it can simulate an outage (SetOffline),
// count calls per operation and apply out-of-band edits (Put) as if another
// client had written them.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/cirrus/pkg/core"
)

// ErrOffline is returned by every call while the remote is offline.
var ErrOffline = errors.New("remote is offline")

// Remote implements core.Remote and core.Pinger in memory.
type Remote struct {
	mu      sync.RWMutex
	order   []string
	notes   map[string]core.Note
	offline bool
	calls   map[string]int

	// Strict makes Delete of an unknown id fail with core.ErrNotFound
	// instead of succeeding.
	Strict bool
}

// NewRemote creates a remote holding the given notes.
func NewRemote(notes ...core.Note) *Remote {
	r := &Remote{
		notes: make(map[string]core.Note),
		calls: make(map[string]int),
	}
	for _, n := range notes {
		r.put(n)
	}
	return r
}

// SetOffline makes every subsequent call fail with ErrOffline.
func (r *Remote) SetOffline(offline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offline = offline
}

// Calls returns how many times op (fetch, create, update, delete, ping) was
// invoked, failed calls included.
func (r *Remote) Calls(op string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (r *Remote) TotalCalls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, n := range r.calls {
		total += n
	}
	return total
}

// Put stores n as if another client had written it.
func (r *Remote) Put(n core.Note) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(n)
}

// Remove deletes id as if another client had deleted it.
func (r *Remote) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(id)
}

// Notes returns the stored notes in insertion order.
func (r *Remote) Notes() []core.Note {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list()
}

// Get returns a stored note.
func (r *Remote) Get(id string) (core.Note, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notes[id]
	return n, ok
}

// Ping implements core.Pinger.
func (r *Remote) Ping(ctx context.Context) error {
	return r.enter(ctx, "ping")
}

// FetchAll implements core.Remote.
func (r *Remote) FetchAll(ctx context.Context) ([]core.Note, error) {
	if err := r.enter(ctx, "fetch"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list(), nil
}

// Create implements core.Remote.
func (r *Remote) Create(ctx context.Context, n core.Note) (core.Note, error) {
	if err := r.enter(ctx, "create"); err != nil {
		return core.Note{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.put(n), nil
}

// Update implements core.Remote. Unknown ids are created.
func (r *Remote) Update(ctx context.Context, id string, n core.Note) (core.Note, error) {
	if err := r.enter(ctx, "update"); err != nil {
		return core.Note{}, err
	}
	n.ID = id
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.put(n), nil
}

// Delete implements core.Remote.
func (r *Remote) Delete(ctx context.Context, id string) error {
	if err := r.enter(ctx, "delete"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[id]; !ok && r.Strict {
		return fmt.Errorf("delete %s: %w", id, core.ErrNotFound)
	}
	r.remove(id)
	return nil
}

func (r *Remote) enter(ctx context.Context, op string) error {
	r.mu.Lock()
	r.calls[op]++
	offline := r.offline
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if offline {
		return ErrOffline
	}
	return nil
}

// put must be called with r.mu held. Synced is a local-only field and is
// never stored.
func (r *Remote) put(n core.Note) core.Note {
	n.Synced = false
	if _, ok := r.notes[n.ID]; !ok {
		r.order = append(r.order, n.ID)
	}
	r.notes[n.ID] = n
	return n
}

func (r *Remote) remove(id string) {
	if _, ok := r.notes[id]; !ok {
		return
	}
	delete(r.notes, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Remote) list() []core.Note {
	out := make([]core.Note, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.notes[id])
	}
	return out
}

var _ core.Remote = (*Remote)(nil)
var _ core.Pinger = (*Remote)(nil)

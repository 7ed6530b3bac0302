package core

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Store owns the canonical in-memory collection of notes.
// Insertion order is display order: new notes go to the head, merged remote
// notes to the tail. Every method is atomic with respect to the others.
type Store struct {
	mu    sync.RWMutex
	notes []Note
	now   func() time.Time
	newID func() string
}

// NewStore creates an empty store.
// A nil clock defaults to time.Now, a nil id generator to ULIDs.
func NewStore(now func() time.Time, newID func() string) *Store {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	return &Store{now: now, newID: newID}
}

// Create allocates a new unsynced note and inserts it at the head.
func (s *Store) Create(title, content string) Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := Note{
		ID:        s.newID(),
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.notes = append([]Note{n}, s.notes...)
	return n
}

// Update applies p to the note identified by id.
// UpdatedAt never moves backwards, so a local edit always beats the version
// it was made on top of.
func (s *Store) Update(id string, p Patch) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Note{}, ErrNotFound
	}

	n := s.notes[i]
	p.apply(&n)
	now := s.now()
	if !now.After(n.UpdatedAt) {
		now = n.UpdatedAt.Add(time.Nanosecond)
	}
	n.UpdatedAt = now
	n.Synced = false
	s.notes[i] = n
	return n, nil
}

// Delete removes the note. Deleting an absent id is a no-op.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.notes = append(s.notes[:i:i], s.notes[i+1:]...)
	return true
}

// ReplaceAll swaps the whole collection. Later duplicates of an id are dropped.
func (s *Store) ReplaceAll(notes []Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = dedupe(notes)
}

// Reconcile runs fn on a copy of the current collection and installs the
// result, all under one lock. Mutations that happened before the call are
// part of fn's input; none can slip in between input and swap.
func (s *Store) Reconcile(fn func(local []Note) []Note) []Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = dedupe(fn(clone(s.notes)))
	return clone(s.notes)
}

// Confirm installs a remote push response for id, but only if the local note
// still carries UpdatedAt == basis. A note that was edited or deleted while
// the push was in flight is left alone.
func (s *Store) Confirm(id string, basis time.Time, remote Note) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 || !s.notes[i].UpdatedAt.Equal(basis) {
		return false
	}

	local := s.notes[i]
	n := remote
	n.ID = id
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = local.UpdatedAt
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = local.CreatedAt
	}
	n = normalize(n)
	n.Synced = true
	s.notes[i] = n
	return true
}

// Get returns a copy of the note identified by id.
func (s *Store) Get(id string) (Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Note{}, ErrNotFound
	}
	return s.notes[i], nil
}

// List returns a copy of the collection in display order.
func (s *Store) List() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.notes)
}

// Pending returns the notes not yet confirmed by the remote.
func (s *Store) Pending() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Note
	for _, n := range s.notes {
		if !n.Synced {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

func (s *Store) indexOf(id string) int {
	for i := range s.notes {
		if s.notes[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(notes []Note) []Note {
	if notes == nil {
		return nil
	}
	out := make([]Note, len(notes))
	copy(out, notes)
	return out
}

func dedupe(notes []Note) []Note {
	seen := make(map[string]bool, len(notes))
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
	}
	return out
}

package core

import (
	"strings"
	"time"
)

// Note is the central entity of the domain.
// It is agnostic to transport and storage format (REST, JSON, YAML).
type Note struct {
	ID        string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Synced is the local belief that the remote copy equals this one.
	// It never travels to or from the remote store.
	Synced bool
}

// Matches reports whether title or content contains term, ignoring case.
// A blank term matches every note.
func (n Note) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(n.Title), term) ||
		strings.Contains(strings.ToLower(n.Content), term)
}

// Patch is the field set accepted by Update. Nil fields are left untouched.
type Patch struct {
	Title   *string
	Content *string
}

// String returns a pointer to s, for building a Patch inline.
func String(s string) *string {
	return &s
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Content == nil
}

func (p Patch) apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
}

// valid reports whether a note received from a remote can be reconciled.
func valid(n Note) bool {
	return n.ID != "" && !n.UpdatedAt.IsZero()
}

// normalize enforces UpdatedAt >= CreatedAt on a note from outside the store.
func normalize(n Note) Note {
	if n.CreatedAt.IsZero() || n.CreatedAt.After(n.UpdatedAt) {
		n.CreatedAt = n.UpdatedAt
	}
	return n
}

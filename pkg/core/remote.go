package core

import "context"

// Remote defines the contract for the remote note store.
// Adhering to this interface keeps the sync engine independent of the
// transport (REST, in-memory, anything else). Every call may fail, and a
// failure must be reported as an error, never turned into a fake success.
type Remote interface {
	// FetchAll returns the full remote collection.
	FetchAll(ctx context.Context) ([]Note, error)

	// Create stores a new note. The returned note may carry remote-assigned
	// fields; only its ID is guaranteed to match.
	Create(ctx context.Context, n Note) (Note, error)

	// Update replaces the remote copy of the note identified by id.
	Update(ctx context.Context, id string, n Note) (Note, error)

	// Delete removes a note from the remote store.
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by remotes that can check reachability.
// Connect uses it to decide between Connected and Disconnected.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Persister stores the local collection between process runs.
type Persister interface {
	Load(ctx context.Context) ([]Note, error)
	Save(ctx context.Context, notes []Note) error
}

package cirrus

import (
	"log/slog"
	"time"

	"github.com/aretw0/cirrus/internal/platform"
	"github.com/aretw0/cirrus/pkg/core"
)

// --- Types ---

// Note is a public alias for the domain note.
type Note = core.Note

// Patch is a public alias for the partial update accepted by Update.
type Patch = core.Patch

// Service is a public alias for the presentation-layer API.
type Service = core.Service

// ConnState is a public alias for the connectivity state.
type ConnState = core.ConnState

// Event is a public alias for service events.
type Event = core.Event

// --- Configuration ---

// Option defines a functional option for configuring Cirrus.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithSyncInterval sets the period of the automatic full sync.
func WithSyncInterval(d time.Duration) Option {
	return platform.WithSyncInterval(d)
}

// WithSnapshot persists the local collection to the file at path.
func WithSnapshot(path string) Option {
	return platform.WithSnapshot(path)
}

// WithPersister injects a custom persister.
func WithPersister(p core.Persister) Option {
	return platform.WithPersister(p)
}

// WithAPIKey sets the bearer token sent to an HTTP remote.
func WithAPIKey(key string) Option {
	return platform.WithAPIKey(key)
}

// WithTimeout bounds every request made to an HTTP remote.
func WithTimeout(d time.Duration) Option {
	return platform.WithTimeout(d)
}

// WithRemote allows injecting a custom remote.
func WithRemote(r core.Remote) Option {
	return platform.WithRemote(r)
}

// WithSamples seeds an empty collection with the welcome notes.
func WithSamples(enabled bool) Option {
	return platform.WithSamples(enabled)
}

// WithPushPending controls the push of notes left unsynced by a full sync.
func WithPushPending(enabled bool) Option {
	return platform.WithPushPending(enabled)
}

// WithClock sets the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithIDGenerator sets the note id generator.
func WithIDGenerator(fn func() string) Option {
	return platform.WithIDGenerator(fn)
}

// WithEventBuffer allows specifying the size of the event broker buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// --- Factory ---

// New creates a new Cirrus Service. The remote is chosen by uri:
// "" (offline only), "memory://" or an http(s) collection URL.
func New(uri string, opts ...Option) (*core.Service, error) {
	return platform.New(uri, opts...)
}

// OpenRemote builds the remote adapter named by uri.
func OpenRemote(uri string, opts ...Option) (core.Remote, error) {
	return platform.OpenRemote(uri, opts...)
}

// --- Workspace ---

// FindWorkspaceRoot looks upwards for a .cirrus directory or cirrus.yaml.
func FindWorkspaceRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// SnapshotPath returns the default snapshot location of a workspace.
func SnapshotPath(root string) string {
	return platform.SnapshotPath(root)
}

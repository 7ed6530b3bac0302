package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/cirrus/pkg/core"
)

// options holds the internal configuration for the Cirrus service.
type options struct {
	remote    core.Remote
	persister core.Persister
	logger    *slog.Logger
	clock     func() time.Time
	newID     func() string
	config    map[string]interface{}
}

// Option defines a functional option for configuring Cirrus.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		config: map[string]interface{}{
			"push_pending": true,
		},
	}
}

func newOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// WithLogger sets the logger for the service and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSyncInterval sets the period of the automatic full sync.
// Zero means default (30s).
func WithSyncInterval(d time.Duration) Option {
	return func(o *options) {
		o.config["sync_interval"] = d
	}
}

// WithSnapshot persists the local collection to the file at path.
// The format follows the extension (.json, .yaml, .yml).
func WithSnapshot(path string) Option {
	return func(o *options) {
		o.config["snapshot"] = path
	}
}

// WithPersister injects a custom persister. It takes precedence over
// WithSnapshot.
func WithPersister(p core.Persister) Option {
	return func(o *options) {
		o.persister = p
	}
}

// WithAPIKey sets the bearer token sent to an HTTP remote.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.config["api_key"] = key
	}
}

// WithTimeout bounds every request made to an HTTP remote.
// Zero means default (10s).
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.config["timeout"] = d
	}
}

// WithRemote injects a remote (e.g. a mock or an in-process store).
// If provided, the URI is not used to build one.
func WithRemote(r core.Remote) Option {
	return func(o *options) {
		o.remote = r
	}
}

// WithSamples seeds an empty collection with the welcome notes.
func WithSamples(enabled bool) Option {
	return func(o *options) {
		o.config["samples"] = enabled
	}
}

// WithPushPending controls whether notes still unsynced after a full sync
// are pushed. Enabled by default.
func WithPushPending(enabled bool) Option {
	return func(o *options) {
		o.config["push_pending"] = enabled
	}
}

// WithClock sets the clock used for timestamps (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithIDGenerator sets the note id generator (useful for testing).
// Defaults to ULIDs.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// WithEventBuffer allows specifying the size of the event broker buffer.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.config["event_buffer"] = size
	}
}

package core

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Config holds the dependencies of a Service.
type Config struct {
	Remote       Remote    // nil means offline only
	Persister    Persister // nil means nothing survives the process
	Logger       *slog.Logger
	SyncInterval time.Duration
	Clock        func() time.Time
	NewID        func() string
	EventBuffer  int
	PushPending  bool
}

// Service is the API the presentation layer talks to.
// Mutations are optimistic: they are applied locally and returned at once,
// then pushed to the remote in the background. Remote failures are logged
// and published as events; they are never returned from these methods.
type Service struct {
	store     *Store
	sync      *Coordinator
	events    *Broker
	persister Persister
	logger    *slog.Logger
}

// NewService creates a new Service.
func NewService(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	store := NewStore(cfg.Clock, cfg.NewID)
	events := NewBroker(cfg.EventBuffer, cfg.Logger)
	return &Service{
		store: store,
		sync: NewCoordinator(CoordinatorConfig{
			Store:       store,
			Remote:      cfg.Remote,
			Events:      events,
			Logger:      cfg.Logger,
			Interval:    cfg.SyncInterval,
			Clock:       cfg.Clock,
			PushPending: cfg.PushPending,
		}),
		events:    events,
		persister: cfg.Persister,
		logger:    cfg.Logger,
	}
}

// List returns the notes in display order.
func (s *Service) List() []Note {
	return s.store.List()
}

// Get retrieves a note.
func (s *Service) Get(id string) (Note, error) {
	return s.store.Get(id)
}

// Search returns the notes whose title or content contains term,
// ignoring case. An empty term matches everything.
func (s *Service) Search(term string) []Note {
	notes := s.store.List()
	out := notes[:0]
	for _, n := range notes {
		if n.Matches(term) {
			out = append(out, n)
		}
	}
	return out
}

// Create adds a note locally and pushes it if connected.
func (s *Service) Create(title, content string) Note {
	n := s.store.Create(title, content)
	s.events.Publish(Event{Type: EventCreate, ID: n.ID})
	s.sync.PushCreate(n)
	return n
}

// Update edits a note locally and pushes it if connected.
// It fails with ErrNotFound when id does not exist, leaving the collection
// unchanged.
func (s *Service) Update(id string, p Patch) (Note, error) {
	n, err := s.store.Update(id, p)
	if err != nil {
		return Note{}, err
	}
	s.events.Publish(Event{Type: EventModify, ID: n.ID})
	s.sync.PushUpdate(n)
	return n, nil
}

// Delete removes a note locally and asks the remote to delete it if
// connected. Deleting an unknown id does nothing.
func (s *Service) Delete(id string) {
	if !s.store.Delete(id) {
		return
	}
	s.events.Publish(Event{Type: EventDelete, ID: id})
	s.sync.PushDelete(id)
}

// Connect opens a sync session and returns the resulting state.
func (s *Service) Connect(ctx context.Context) ConnState {
	if err := s.sync.Connect(ctx); err != nil && !errors.Is(err, ErrNoRemote) {
		s.logger.Warn("cannot connect", "error", err)
	}
	return s.sync.ConnState()
}

// Disconnect ends the sync session.
func (s *Service) Disconnect() {
	s.sync.Disconnect()
}

// Sync triggers a full sync now. The outcome is observable through events,
// ConnState and LastSyncTime.
func (s *Service) Sync(ctx context.Context) {
	err := s.sync.Sync(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrSyncInFlight), errors.Is(err, ErrNotConnected):
		s.logger.Debug("sync skipped", "reason", err)
	default:
		s.logger.Debug("sync did not complete", "error", err)
	}
}

// ConnState returns the connectivity state.
func (s *Service) ConnState() ConnState {
	return s.sync.ConnState()
}

// LastSyncTime returns when the last full sync succeeded.
func (s *Service) LastSyncTime() (time.Time, bool) {
	return s.sync.LastSyncTime()
}

// Subscribe streams events until ctx is done.
func (s *Service) Subscribe(ctx context.Context) <-chan Event {
	return s.events.Subscribe(ctx)
}

// Flush waits for background pushes to finish.
func (s *Service) Flush(ctx context.Context) error {
	return s.sync.Flush(ctx)
}

// Load replaces the collection with the persisted one, if any.
func (s *Service) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	notes, err := s.persister.Load(ctx)
	if err != nil {
		return err
	}
	s.store.ReplaceAll(notes)
	s.logger.Debug("collection loaded", "notes", len(notes))
	return nil
}

// Save persists the collection, if a persister is configured.
func (s *Service) Save(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Save(ctx, s.store.List())
}

// Close ends the session, waits for pushes and persists the collection.
func (s *Service) Close(ctx context.Context) error {
	if err := s.sync.Close(ctx); err != nil {
		return err
	}
	return s.Save(ctx)
}

// Seed creates notes when the collection is empty. It reports whether it did.
func (s *Service) Seed(samples []Sample) bool {
	if s.store.Len() > 0 {
		return false
	}
	// The store inserts at the head, so walk backwards to keep sample order.
	for i := len(samples) - 1; i >= 0; i-- {
		s.Create(samples[i].Title, samples[i].Content)
	}
	return true
}

// Sample is a note used to seed an empty workspace.
type Sample struct {
	Title   string
	Content string
}

// WelcomeNotes are the notes a new workspace starts with.
var WelcomeNotes = []Sample{
	{
		Title:   "Welcome to Cloud Notes",
		Content: "This is your first note! Start by connecting to a remote store to sync your notes across devices.",
	},
	{
		Title:   "Getting Started",
		Content: "Create a note with `cirrus create`. Your notes will automatically sync with the remote store once connected.",
	},
}

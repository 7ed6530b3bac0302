package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/cirrus/pkg/core"
)

// New assembles a Service: it opens the remote named by uri, restores the
// snapshot (if any) and seeds the welcome notes when asked to.
//
//	svc, err := cirrus.New("https://example.com/notes", cirrus.WithSnapshot("notes.json"))
//
// The service starts disconnected; call Connect to begin syncing.
func New(uri string, opts ...Option) (*core.Service, error) {
	o := newOptions(opts)

	remote, err := openRemote(uri, o)
	if err != nil {
		return nil, err
	}

	interval, _ := o.config["sync_interval"].(time.Duration)
	buffer, _ := o.config["event_buffer"].(int)
	pushPending, _ := o.config["push_pending"].(bool)

	svc := core.NewService(core.Config{
		Remote:       remote,
		Persister:    openPersister(o),
		Logger:       o.logger,
		SyncInterval: interval,
		Clock:        o.clock,
		NewID:        o.newID,
		EventBuffer:  buffer,
		PushPending:  pushPending,
	})

	if err := svc.Load(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	if samples, _ := o.config["samples"].(bool); samples && svc.Seed(core.WelcomeNotes) {
		o.logger.Debug("seeded welcome notes")
	}
	return svc, nil
}

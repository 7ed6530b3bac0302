package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/cirrus"
	"github.com/aretw0/cirrus/internal/platform"
	"github.com/aretw0/cirrus/pkg/core"
)

// closeTimeout bounds how long a command waits for pushes before exiting.
const closeTimeout = 15 * time.Second

// openService builds the service of the current workspace and, when a remote
// is configured, connects it (which runs a first full sync).
func openService(ctx context.Context, connect bool, opts ...cirrus.Option) (*core.Service, string, error) {
	root, err := findWorkspace()
	if err != nil {
		return nil, "", err
	}

	snapshot := cfg.GetString("snapshot")
	switch {
	case snapshot == "":
		snapshot = platform.SnapshotPath(root)
	case !filepath.IsAbs(snapshot):
		snapshot = filepath.Join(root, snapshot)
	}

	base := []cirrus.Option{
		cirrus.WithLogger(slog.Default()),
		cirrus.WithSnapshot(snapshot),
		cirrus.WithAPIKey(cfg.GetString("api_key")),
		cirrus.WithTimeout(cfg.GetDuration("timeout")),
		cirrus.WithSyncInterval(cfg.GetDuration("sync_interval")),
	}
	svc, err := cirrus.New(cfg.GetString("remote"), append(base, opts...)...)
	if err != nil {
		return nil, "", err
	}

	if connect && cfg.GetString("remote") != "" {
		state := svc.Connect(ctx)
		slog.Debug("connection state", "state", state)
	}
	return svc, root, nil
}

// closeService waits for pending pushes and saves the snapshot.
func closeService(svc *core.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := svc.Close(ctx); err != nil {
		fatal("Failed to save workspace", err)
	}
}

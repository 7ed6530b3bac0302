package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/spf13/cobra"

	lcadapter "github.com/aretw0/cirrus/pkg/adapters/lifecycle"
	"github.com/aretw0/cirrus/pkg/adapters/rest"
	"github.com/aretw0/cirrus/pkg/core"
)

var (
	watchSave   time.Duration
	watchNotify bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stay connected and print events as they happen",
	Long: `Connect to the remote store, sync periodically and print every event
(local edits, syncs, failed pushes, connectivity changes) until interrupted.
With an http(s) remote, change notifications from the server trigger an
immediate sync.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		remote := cfg.GetString("remote")
		if remote == "" {
			return errors.New("no remote configured: pass --remote, set CIRRUS_REMOTE or edit cirrus.yaml")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, _, err := openService(ctx, false)
		if err != nil {
			return err
		}
		defer closeService(svc)

		src := lcadapter.NewSource(svc.Subscribe(ctx), nil)
		if err := src.Start(ctx); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", remote)
		fmt.Fprintln(out, "state:", svc.Connect(ctx))

		if watchNotify && (strings.HasPrefix(remote, "http://") || strings.HasPrefix(remote, "https://")) {
			lifecycle.Go(ctx, func(ctx context.Context) error {
				return listen(ctx, svc, remote)
			}, lifecycle.WithErrorHandler(func(err error) {
				slog.Warn("change feed stopped", "error", err)
			}))
		}

		if watchSave > 0 {
			lifecycle.Go(ctx, func(ctx context.Context) error {
				autosave(ctx, svc, watchSave)
				return nil
			})
		}

		for e := range src.Events() {
			fmt.Fprintf(out, "%s %s\n", time.Now().Format(time.TimeOnly), e)
		}
		return nil
	},
}

// listen runs a full sync for every change notification, reconnecting with
// a growing delay when the feed drops.
func listen(ctx context.Context, svc *core.Service, remote string) error {
	backoff := time.Second
	for {
		err := rest.Listen(ctx, remote, cfg.GetString("api_key"), func(c rest.Change) {
			slog.Debug("remote changed", "type", c.Type, "id", c.ID)
			svc.Sync(ctx)
		})
		if ctx.Err() != nil {
			return nil
		}
		slog.Debug("change feed unavailable", "error", err, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, time.Minute)
	}
}

func autosave(ctx context.Context, svc *core.Service, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := svc.Save(ctx); err != nil {
				slog.Warn("autosave failed", "error", err)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchSave, "autosave", time.Minute, "Save the workspace this often (0 disables)")
	watchCmd.Flags().BoolVar(&watchNotify, "notify", true, "Sync on change notifications from an http(s) remote")
}

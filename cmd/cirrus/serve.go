package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/aretw0/cirrus/pkg/adapters/fs"
	"github.com/aretw0/cirrus/pkg/adapters/memory"
	"github.com/aretw0/cirrus/pkg/adapters/rest"
	"github.com/aretw0/cirrus/pkg/core"
)

var (
	serveAddr    string
	servePrefix  string
	serveData    string
	serveSamples bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a reference remote store",
	Long: `Serve an in-memory note collection over HTTP with the routes cirrus
clients expect, plus a WebSocket change feed at {prefix}/events.
With --data the collection is loaded from and saved to a snapshot file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backend := memory.NewRemote()
		var snapshot *fs.Snapshot
		if serveData != "" {
			snapshot = fs.NewSnapshot(serveData)
			notes, err := snapshot.Load(ctx)
			if err != nil {
				return err
			}
			for _, n := range notes {
				backend.Put(n)
			}
			slog.Info("collection loaded", "path", serveData, "notes", len(notes))
		}
		if serveSamples && len(backend.Notes()) == 0 {
			now := time.Now()
			for _, s := range core.WelcomeNotes {
				backend.Put(core.Note{ID: ulid.Make().String(), Title: s.Title, Content: s.Content, CreatedAt: now, UpdatedAt: now})
			}
		}

		srv := rest.NewServer(rest.ServerConfig{
			Backend: backend,
			Prefix:  servePrefix,
			APIKey:  cfg.GetString("api_key"),
			Logger:  slog.Default(),
		})
		httpServer := &http.Server{Addr: serveAddr, Handler: srv}

		wg := new(sync.WaitGroup)
		errc := make(chan error, 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "Serving http://%s%s\n", serveAddr, srv.Prefix())

		select {
		case <-ctx.Done():
			slog.Info("shutting down")
		case err := <-errc:
			return fmt.Errorf("server listen failed: %w", err)
		}

		srv.Hub().Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "err", err)
		}
		wg.Wait()

		if snapshot != nil {
			if err := snapshot.Save(context.Background(), backend.Notes()); err != nil {
				return err
			}
			slog.Info("collection saved", "path", serveData)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "The address to listen on")
	serveCmd.Flags().StringVar(&servePrefix, "prefix", rest.DefaultPrefix, "Collection path")
	serveCmd.Flags().StringVar(&serveData, "data", "", "Snapshot file to load from and save to")
	serveCmd.Flags().BoolVar(&serveSamples, "samples", false, "Start an empty collection with the welcome notes")
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cirrus/pkg/view"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the workspace with the remote store",
	Long: `Fetch every note from the remote store and merge it into the workspace:
for each note the most recent edit wins, notes only present on one side are
kept. Local edits the remote has not confirmed yet are pushed afterwards.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.GetString("remote") == "" {
			return errors.New("no remote configured: pass --remote, set CIRRUS_REMOTE or edit cirrus.yaml")
		}

		svc, _, err := openService(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer closeService(svc)

		out := cmd.OutOrStdout()
		if !svc.ConnState().Connected() {
			return fmt.Errorf("cannot reach %s", cfg.GetString("remote"))
		}
		at, ok := svc.LastSyncTime()
		if !ok {
			return errors.New("sync failed, see the log for details (-v)")
		}
		if err := svc.Flush(cmd.Context()); err != nil {
			return err
		}

		pending := 0
		for _, n := range svc.List() {
			if !n.Synced {
				pending++
			}
		}
		fmt.Fprintf(out, "Synced %d notes at %s", len(svc.List()), view.FormatTime(at))
		if pending > 0 {
			fmt.Fprintf(out, " (%d not confirmed by the remote)", pending)
		}
		fmt.Fprintln(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cirrus"
	"github.com/aretw0/cirrus/internal/platform"
)

var initSamples bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a cirrus workspace",
	Long: `Initialize a new workspace in the current directory (or --workspace):
creates .cirrus/, writes cirrus.yaml with the configured remote and seeds the
welcome notes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := workspace
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			dir = wd
		}

		fresh, err := platform.InitWorkspace(dir, platform.WorkspaceConfig{
			Remote: cfg.GetString("remote"),
		})
		if err != nil {
			return err
		}

		svc, err := cirrus.New("",
			cirrus.WithLogger(slog.Default()),
			cirrus.WithSnapshot(platform.SnapshotPath(dir)),
			cirrus.WithSamples(initSamples),
		)
		if err != nil {
			return err
		}
		if err := svc.Save(cmd.Context()); err != nil {
			return err
		}

		if fresh {
			fmt.Fprintln(cmd.OutOrStdout(), "Initialized empty cirrus workspace in", dir)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Reinitialized existing cirrus workspace in", dir)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initSamples, "samples", true, "Seed the welcome notes into an empty workspace")
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cirrus/pkg/view"
)

var readJSON bool

var readCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Print a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer closeService(svc)

		n, err := svc.Get(args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		if readJSON {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(toJSON(n))
		}

		state := "synced"
		if !n.Synced {
			state = "not synced"
		}
		fmt.Fprintf(out, "# %s\n\n%s\n\n-- %s, %s\n", n.Title, n.Content, view.FormatTime(n.UpdatedAt), state)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Output in JSON format")
}

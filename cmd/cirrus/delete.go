package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a note",
	Long: `Delete a note locally and, with a remote configured, ask the remote to
delete it too. Deleting an unknown id does nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer closeService(svc)

		if _, err := svc.Get(args[0]); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: nothing to delete\n", args[0])
			return nil
		}
		svc.Delete(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

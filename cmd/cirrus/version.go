package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/cirrus"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cirrus",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cirrus version %s\n", strings.TrimSpace(cirrus.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

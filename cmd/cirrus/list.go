package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/cirrus/pkg/core"
	"github.com/aretw0/cirrus/pkg/view"
)

var (
	listJSON   bool
	listSearch string
	listSync   bool
)

// noteJSON is the --json shape of a note.
type noteJSON struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Synced    bool      `json:"synced"`
}

func toJSON(n core.Note) noteJSON {
	return noteJSON(n)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the notes of the workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService(cmd.Context(), listSync)
		if err != nil {
			return err
		}
		defer closeService(svc)

		notes := view.Filter(svc.List(), listSearch)
		out := cmd.OutOrStdout()

		if listJSON {
			rows := make([]noteJSON, 0, len(notes))
			for _, n := range notes {
				rows = append(rows, toJSON(n))
			}
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(rows)
		}

		if len(notes) == 0 {
			fmt.Fprintln(out, view.Empty(listSearch))
			return nil
		}
		connected := svc.ConnState().Connected()
		for _, n := range notes {
			marker := view.Marker(n, connected)
			if marker == "" {
				marker = " "
			}
			fmt.Fprintf(out, "%s %s  %-30s  %s\n", marker, n.ID, view.Excerpt(n.Title, 1, 30), view.FormatTime(n.UpdatedAt))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Only show notes whose title or content contains this text")
	listCmd.Flags().BoolVar(&listSync, "sync", false, "Sync with the remote before listing")
}

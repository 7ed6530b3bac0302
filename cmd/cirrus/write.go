package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/cirrus/pkg/core"
)

var (
	writeTitle   string
	writeContent string
	writeStdin   bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a note",
	Long: `Create a note in the workspace. The note is saved locally first; with a
remote configured it is pushed right away.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContent(cmd)
		if err != nil {
			return err
		}
		title := writeTitle
		if title == "" {
			title = "Untitled Note"
		}

		svc, _, err := openService(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer closeService(svc)

		n := svc.Create(title, content)
		fmt.Fprintln(cmd.OutOrStdout(), n.ID)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit the title and/or content of a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var p core.Patch
		if cmd.Flags().Changed("title") {
			p.Title = core.String(writeTitle)
		}
		if cmd.Flags().Changed("content") || writeStdin {
			content, err := readContent(cmd)
			if err != nil {
				return err
			}
			p.Content = core.String(content)
		}
		if p.Empty() {
			return errors.New("nothing to update: pass --title, --content or --stdin")
		}

		svc, _, err := openService(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer closeService(svc)

		n, err := svc.Update(args[0], p)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), n.ID)
		return nil
	},
}

func readContent(cmd *cobra.Command) (string, error) {
	if !writeStdin {
		return writeContent, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func init() {
	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringVarP(&writeTitle, "title", "t", "", "Note title")
		c.Flags().StringVarP(&writeContent, "content", "c", "", "Note content")
		c.Flags().BoolVar(&writeStdin, "stdin", false, "Read content from stdin")
		rootCmd.AddCommand(c)
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/noteease/pkg/render"
)

func newShowCmd(a *app) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			note, err := store.Get(args[0])
			if err != nil {
				return fmt.Errorf("show %s: %w", args[0], err)
			}

			content := render.Text(note.Content)
			if raw {
				content = note.Content
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, note.DisplayTitle())
			fmt.Fprintln(out, note.Date)
			fmt.Fprintln(out)
			fmt.Fprintln(out, content)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the stored markup instead of plain text")
	return cmd
}

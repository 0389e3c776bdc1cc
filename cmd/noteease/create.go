package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/noteease/pkg/core"
)

func newCreateCmd(a *app) *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		Long:  `Create adds a note at the top of the list. A note with neither title nor content is not saved.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !core.ShouldCreate(title, content) {
				fmt.Fprintln(out, "Nothing to save.")
				return nil
			}

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			note := core.NewNote(title, content, time.Now())
			store.Create(note)
			if err := closeStore(ctx, store); err != nil {
				return err
			}

			fmt.Fprintf(out, "Note created: %s\n", note.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Note title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "Note content (markup)")
	return cmd
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newUpdateCmd(a *app) *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Change the title or content of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("title") && !flags.Changed("content") {
				return errors.New("nothing to update: pass --title or --content")
			}

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			note, err := store.Get(args[0])
			if err != nil {
				_ = store.Close(ctx)
				return fmt.Errorf("update %s: %w", args[0], err)
			}
			if flags.Changed("title") {
				note.Title = strings.TrimSpace(title)
			}
			if flags.Changed("content") {
				note.Content = content
			}
			store.Update(note)
			if err := closeStore(ctx, store); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Note updated: %s\n", note.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "New content (markup)")
	return cmd
}

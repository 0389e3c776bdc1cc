package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/aretw0/noteease/pkg/core"
)

func newListCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		match  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if match != "" && !doublestar.ValidatePattern(match) {
				return fmt.Errorf("invalid pattern: %q", match)
			}

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			var notes []core.Note
			for _, n := range store.List() {
				if match != "" {
					ok, _ := doublestar.Match(match, n.DisplayTitle())
					if !ok {
						continue
					}
				}
				notes = append(notes, n)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if notes == nil {
					notes = []core.Note{}
				}
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				encoder.SetEscapeHTML(false)
				return encoder.Encode(notes)
			}

			if len(notes) == 0 {
				fmt.Fprintln(out, "No notes yet. Create your first note!")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, n := range notes {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", n.ID, n.Date, n.DisplayTitle())
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().StringVar(&match, "match", "", "Only notes whose title matches this glob (e.g. \"Groc*\")")
	return cmd
}

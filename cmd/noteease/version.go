package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/noteease"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of noteease",
		// No store or config needed.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "noteease version %s\n", noteease.Version)
		},
	}
}

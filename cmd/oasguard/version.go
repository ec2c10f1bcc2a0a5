package main

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/oasguard"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			writef(cmd.OutOrStdout(), "%s\n", oasguard.BuildInfo())
		},
	}
}

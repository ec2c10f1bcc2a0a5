package main

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/oasguard/internal/mcpserver"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the validation tools over MCP (stdio)",
		Long: `Start an MCP server on stdin/stdout exposing the tools validate_request,
validate_response and validate_payload.

Settings come from OASGUARD_MCP_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mcpserver.Run(cmd.Context())
		},
	}
}

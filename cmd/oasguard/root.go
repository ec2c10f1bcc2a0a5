package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/erraggy/oasguard"
)

// errViolations makes the process exit 1 without printing an error; the
// report has already been written.
var errViolations = errors.New("message violates the contract")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "oasguard",
		Short: "OpenAPI contract validation for HTTP traffic",
		Long: `oasguard validates HTTP requests and responses against an OpenAPI 3.0/3.1
document. Violations are reported per location, e.g. REQUEST/BODY#/name,
together with the status code a gateway would answer with.

It runs as a one-shot checker (validate), as a validating reverse proxy
(serve) or as an MCP server for agents (mcp).`,
		Version:       oasguard.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("oasguard {{.Version}}\n")
	root.AddCommand(
		newValidateCmd(),
		newServeCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
	return root
}

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errViolations) {
			writef(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// Command oasguard checks HTTP traffic against an OpenAPI document.
//
// Usage:
//
//	# Validate a single request
//	oasguard validate --spec api.yaml --method POST --path /pets --body pet.json
//
//	# Validate a request and the response it got
//	oasguard validate --spec api.yaml --method GET --path /pets/1 \
//	    --response-status 200 --response-body pet.json
//
//	# Run the validating reverse proxy
//	oasguard serve --config gateway.yaml
//
//	# Serve the MCP tools over stdio
//	oasguard mcp
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes the oasguard contract validator as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasguard"
)

const serverInstructions = `oasguard MCP server: checks HTTP requests, responses and JSON payloads against an OpenAPI 3.0/3.1 document.

Every tool takes the document as spec.file, spec.url or spec.content (exactly one). Results list each violation with its location key, e.g. REQUEST/BODY#/items/0/name or RESPONSE/HEADER_PARAMETER/X-Rate-Limit, and the HTTP status a gateway would answer with (400 for requests, 404/405/415 for routing and media type problems, 500 for responses).

Configuration: All defaults are configurable via OASGUARD_MCP_* environment variables set in your MCP client config.

Key settings:
- OASGUARD_MCP_CACHE_ENABLED (default: true) - cache compiled validators per session
- OASGUARD_MCP_CACHE_FILE_TTL (default: 15m) - cache TTL for local file specs
- OASGUARD_MCP_CACHE_URL_TTL (default: 5m) - cache TTL for URL-fetched specs
- OASGUARD_MCP_RESULT_LIMIT (default: 100) - default number of violations returned
- OASGUARD_MCP_MAX_DEPTH (default: 64) - maximum instance nesting depth
- OASGUARD_MCP_ALLOW_ADDITIONAL_PROPERTIES (default: false) - accept undeclared object keys when additionalProperties is not set

Caching: File entries use path+mtime as key (auto-invalidated on change). URL entries are cached with a shorter TTL. A background sweeper removes expired entries.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		specCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "oasguard", Version: oasguard.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_request",
		Description: "Validate an HTTP request against an OpenAPI document: path matching, path/query/header parameters and the request body. The path may include a query string. Returns the violations with location keys and the status code a gateway would reject with. Use offset/limit to paginate large results.",
	}, handleValidateRequest)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_response",
		Description: "Validate an HTTP response against an OpenAPI document. The request method and path select the operation; the response status, headers and body are checked against its declared responses (exact status, then 2XX-style ranges, then default). All violations carry status 500.",
	}, handleValidateResponse)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_payload",
		Description: "Validate a JSON payload against a named component schema (components/schemas). Direction request or response decides how readOnly and writeOnly properties are treated. Useful to check example payloads without building a full HTTP exchange.",
	}, handleValidatePayload)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.ResultLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.ResultLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

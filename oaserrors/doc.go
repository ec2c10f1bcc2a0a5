// Package oaserrors provides structured error types for the oasguard library.
//
// Import path: github.com/erraggy/oasguard/oaserrors
//
// Load-time problems (a document that does not parse, a $ref that cannot be
// followed, a bad option) are returned as Go errors of the types below.
// Per-message contract violations are not Go errors; they are collected by
// the contract package and can be summarised as a [ValidationError].
//
// # Error Types
//
//   - [ParseError]: YAML/JSON parsing failures
//   - [ReferenceError]: unresolved, external or circular $ref
//   - [ValidationError]: summary of contract violations of one message
//   - [ResourceLimitError]: oversized documents or bodies
//   - [ConfigError]: invalid options or configuration files
//
// # Sentinel Errors
//
// Each error type has a corresponding sentinel error for use with errors.Is():
//
//   - [ErrParse]: Matches any [ParseError]
//   - [ErrReference]: Matches any [ReferenceError]
//   - [ErrCircularReference]: Matches [ReferenceError] with IsCircular=true
//   - [ErrValidation]: Matches any [ValidationError]
//   - [ErrResourceLimit]: Matches any [ResourceLimitError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Usage
//
//	doc, err := openapi.ParseWithOptions(openapi.WithFilePath("api.yaml"))
//	if err != nil {
//	    var refErr *oaserrors.ReferenceError
//	    if errors.As(err, &refErr) && refErr.IsCircular {
//	        log.Fatalf("schema cycle: %v", refErr.Chain)
//	    }
//	}
package oaserrors

// Package gateway runs the contract validator in front of an HTTP API.
//
// A [Middleware] validates every request against the active [Engine] and,
// when response validation is switched on, buffers and validates the
// response before it is returned to the client. Rejections are written as
// RFC 7807 problem documents.
//
// The active engine lives in a [Store]. A [Watcher] rebuilds it when the
// OpenAPI document changes on disk; exchanges in flight keep the engine
// they started with.
//
// # Configuration
//
// [LoadConfig] reads a YAML file and applies OASGUARD_* environment
// overrides. Validation switches resolve in this order: the configuration
// file or environment, the document's x-membrane-validation extension,
// [DefaultSettings].
//
// # Metrics
//
// [Metrics] exports Prometheus counters of validated messages and
// violations by location, plus a histogram of validation time.
package gateway

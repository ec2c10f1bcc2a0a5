package openapi

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasguard/oaserrors"
)

// DefaultMaxDocumentSize is the largest document accepted by default (10 MiB).
const DefaultMaxDocumentSize int64 = 10 << 20

// Option is a function that configures a parse operation
type Option func(*parseConfig) error

// parseConfig holds configuration for a parse operation
type parseConfig struct {
	// Input source (exactly one must be set)
	filePath *string
	reader   io.Reader
	bytes    []byte

	logger          Logger
	maxDocumentSize int64
	sourceName      string
}

// ParseWithOptions loads an OpenAPI 3.x document using functional options.
// The returned document has every local reference checked: an unresolved
// reference or a reference cycle fails the load with *oaserrors.ReferenceError.
//
// Example:
//
//	doc, err := openapi.ParseWithOptions(
//	    openapi.WithFilePath("openapi.yaml"),
//	    openapi.WithLogger(openapi.NewSlogAdapter(slog.Default())),
//	)
func ParseWithOptions(opts ...Option) (*Document, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("openapi: invalid options: %w", err)
	}

	data, source, err := cfg.read()
	if err != nil {
		return nil, err
	}
	if cfg.sourceName != "" {
		source = cfg.sourceName
	}

	doc, err := parseBytes(data, source)
	if err != nil {
		return nil, err
	}

	if err := CheckReferences(doc); err != nil {
		return nil, err
	}

	cfg.logger.Debug("openapi document loaded",
		"source", source,
		"title", doc.Title(),
		"version", doc.OpenAPI,
		"paths", len(doc.Paths),
	)
	return doc, nil
}

// applyOptions applies option functions and validates configuration
func applyOptions(opts ...Option) (*parseConfig, error) {
	cfg := &parseConfig{
		logger:          NopLogger{},
		maxDocumentSize: DefaultMaxDocumentSize,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	sources := 0
	for _, set := range []bool{cfg.filePath != nil, cfg.reader != nil, cfg.bytes != nil} {
		if set {
			sources++
		}
	}
	switch sources {
	case 0:
		return nil, &oaserrors.ConfigError{Option: "source", Message: "must specify an input source (use WithFilePath, WithReader, or WithBytes)"}
	case 1:
		return cfg, nil
	default:
		return nil, &oaserrors.ConfigError{Option: "source", Message: "must specify exactly one input source"}
	}
}

func (cfg *parseConfig) read() ([]byte, string, error) {
	switch {
	case cfg.filePath != nil:
		info, err := os.Stat(*cfg.filePath)
		if err != nil {
			return nil, *cfg.filePath, fmt.Errorf("openapi: %w", err)
		}
		if info.Size() > cfg.maxDocumentSize {
			return nil, *cfg.filePath, &oaserrors.ResourceLimitError{
				ResourceType: "document_size",
				Limit:        cfg.maxDocumentSize,
				Actual:       info.Size(),
			}
		}
		data, err := os.ReadFile(*cfg.filePath)
		if err != nil {
			return nil, *cfg.filePath, fmt.Errorf("openapi: %w", err)
		}
		return data, *cfg.filePath, nil
	case cfg.reader != nil:
		data, err := io.ReadAll(io.LimitReader(cfg.reader, cfg.maxDocumentSize+1))
		if err != nil {
			return nil, "", fmt.Errorf("openapi: reading document: %w", err)
		}
		if int64(len(data)) > cfg.maxDocumentSize {
			return nil, "", &oaserrors.ResourceLimitError{ResourceType: "document_size", Limit: cfg.maxDocumentSize}
		}
		return data, "", nil
	default:
		if int64(len(cfg.bytes)) > cfg.maxDocumentSize {
			return nil, "", &oaserrors.ResourceLimitError{
				ResourceType: "document_size",
				Limit:        cfg.maxDocumentSize,
				Actual:       int64(len(cfg.bytes)),
			}
		}
		return cfg.bytes, "", nil
	}
}

// parseBytes decodes YAML or JSON (JSON is a subset of YAML) into a Document.
func parseBytes(data []byte, source string) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &oaserrors.ParseError{Path: source, Message: "document is empty"}
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &oaserrors.ParseError{Path: source, Message: "failed to parse YAML/JSON", Cause: err}
	}

	raw, err := nodeToValue(&root)
	if err != nil {
		return nil, &oaserrors.ParseError{Path: source, Message: "failed to decode document", Cause: err}
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &oaserrors.ParseError{Path: source, Message: "document root must be a mapping"}
	}

	version := mapGetString(m, "openapi")
	if !strings.HasPrefix(version, "3.") {
		if _, isSwagger := m["swagger"]; isSwagger {
			return nil, &oaserrors.ParseError{Path: source, Message: "swagger 2.0 documents are not supported; convert to OpenAPI 3.x"}
		}
		return nil, &oaserrors.ParseError{Path: source, Message: fmt.Sprintf("unsupported OpenAPI version %q (only 3.x is supported)", version)}
	}

	doc := &Document{SourcePath: source}
	doc.decodeFromMap(m)
	return doc, nil
}

// WithFilePath specifies a file path as the input source
func WithFilePath(path string) Option {
	return func(cfg *parseConfig) error {
		cfg.filePath = &path
		return nil
	}
}

// WithReader specifies an io.Reader as the input source
func WithReader(r io.Reader) Option {
	return func(cfg *parseConfig) error {
		if r == nil {
			return fmt.Errorf("openapi: reader cannot be nil")
		}
		cfg.reader = r
		return nil
	}
}

// WithBytes specifies a byte slice as the input source
func WithBytes(data []byte) Option {
	return func(cfg *parseConfig) error {
		if data == nil {
			return fmt.Errorf("openapi: bytes cannot be nil")
		}
		cfg.bytes = data
		return nil
	}
}

// WithLogger sets the logger used while loading. Default: NopLogger.
func WithLogger(l Logger) Option {
	return func(cfg *parseConfig) error {
		if l != nil {
			cfg.logger = l
		}
		return nil
	}
}

// WithMaxDocumentSize limits the size of the document in bytes.
// Default: DefaultMaxDocumentSize
func WithMaxDocumentSize(n int64) Option {
	return func(cfg *parseConfig) error {
		if n <= 0 {
			return &oaserrors.ConfigError{Option: "maxDocumentSize", Value: n, Message: "must be positive"}
		}
		cfg.maxDocumentSize = n
		return nil
	}
}

// WithSourceName overrides Document.SourcePath, which is useful for
// documents read from bytes or a reader.
func WithSourceName(name string) Option {
	return func(cfg *parseConfig) error {
		cfg.sourceName = name
		return nil
	}
}

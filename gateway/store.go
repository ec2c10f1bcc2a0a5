package gateway

import (
	"fmt"
	"sync/atomic"

	"github.com/erraggy/oasguard/contract"
	"github.com/erraggy/oasguard/openapi"
)

// Engine is one loaded document with its validator and effective settings.
// Engines are immutable; a reload builds a new one.
type Engine struct {
	Validator *contract.Validator
	Settings  Settings
	// Title names the API in logs, metrics and problem details
	Title string
	// MaxBodySize bounds the bodies the middleware buffers
	MaxBodySize int64
}

// Store holds the active Engine. Handlers load it once per message, so a
// swap never changes the engine in the middle of an exchange.
type Store struct {
	current atomic.Pointer[Engine]
}

// NewStore returns a Store serving e.
func NewStore(e *Engine) *Store {
	s := &Store{}
	s.current.Store(e)
	return s
}

// Load returns the active engine.
func (s *Store) Load() *Engine {
	return s.current.Load()
}

// Swap installs e and returns the previous engine.
func (s *Store) Swap(e *Engine) *Engine {
	return s.current.Swap(e)
}

// LoadEngine parses the document named by cfg.Spec and builds its engine.
func LoadEngine(cfg *Config, logger openapi.Logger) (*Engine, error) {
	if logger == nil {
		logger = openapi.NopLogger{}
	}
	doc, err := openapi.ParseWithOptions(
		openapi.WithFilePath(cfg.Spec),
		openapi.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("gateway: loading %s: %w", cfg.Spec, err)
	}
	return NewEngine(doc, cfg, logger)
}

// NewEngine builds an engine for an already loaded document.
func NewEngine(doc *openapi.Document, cfg *Config, logger openapi.Logger) (*Engine, error) {
	if logger == nil {
		logger = openapi.NopLogger{}
	}
	opts := []contract.Option{contract.WithLogger(logger)}
	if cfg.BasePath != "" {
		opts = append(opts, contract.WithBasePath(cfg.BasePath))
	}
	if cfg.MaxDepth > 0 {
		opts = append(opts, contract.WithMaxDepth(cfg.MaxDepth))
	}
	if cfg.AllowAdditionalProperties {
		opts = append(opts, contract.WithAdditionalPropertiesDefault(true))
	}
	v, err := contract.New(doc, opts...)
	if err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	limit := cfg.MaxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	return &Engine{
		Validator:   v,
		Settings:    cfg.Settings(doc),
		Title:       doc.Title(),
		MaxBodySize: limit,
	}, nil
}

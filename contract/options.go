package contract

import (
	"fmt"
	"strings"

	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/openapi"
)

// DefaultMaxDepth is the default bound on instance nesting.
const DefaultMaxDepth = 64

// DefaultMaxNumberExponent is the default bound on the decimal exponent of
// numeric instances.
const DefaultMaxNumberExponent = 1000

// maxPatternCacheSize is the default upper bound on cached compiled patterns.
// When exceeded, the cache is cleared.
const maxPatternCacheSize = 1000

// maxRefHops bounds consecutive $ref resolutions without descending into
// the instance.
const maxRefHops = 64

// Option is a functional option for configuring a Validator.
type Option func(*config) error

type config struct {
	maxDepth           int
	maxExponent        int
	patternCacheSize   int
	logger             openapi.Logger
	queryAllowList     []string
	basePath           *string
	allowAdditionalDef bool
}

func defaultConfig() *config {
	return &config{
		maxDepth:         DefaultMaxDepth,
		maxExponent:      DefaultMaxNumberExponent,
		patternCacheSize: maxPatternCacheSize,
		logger:           openapi.NopLogger{},
	}
}

// WithMaxDepth sets the maximum nesting depth of validated instances.
// Deeper values are reported as a violation instead of being traversed.
func WithMaxDepth(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return &oaserrors.ConfigError{Option: "WithMaxDepth", Value: n, Message: "must be positive"}
		}
		c.maxDepth = n
		return nil
	}
}

// WithMaxNumberExponent bounds the decimal exponent of numbers that are
// compared against minimum, maximum and multipleOf. A number such as 1e400
// has exponent 400. Numbers outside the bound are reported as a violation
// without being compared.
func WithMaxNumberExponent(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return &oaserrors.ConfigError{Option: "WithMaxNumberExponent", Value: n, Message: "must be positive"}
		}
		c.maxExponent = n
		return nil
	}
}

// WithPatternCacheSize sets how many compiled patterns are cached.
func WithPatternCacheSize(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return &oaserrors.ConfigError{Option: "WithPatternCacheSize", Value: n, Message: "must be positive"}
		}
		c.patternCacheSize = n
		return nil
	}
}

// WithLogger sets the structured logger. Default is openapi.NopLogger.
func WithLogger(l openapi.Logger) Option {
	return func(c *config) error {
		if l == nil {
			return &oaserrors.ConfigError{Option: "WithLogger", Message: "logger cannot be nil"}
		}
		c.logger = l
		return nil
	}
}

// WithSecurityQueryAllowList adds query parameter names that requests may
// carry without declaring them. Names used by apiKey security schemes of
// the document are always allowed.
func WithSecurityQueryAllowList(names ...string) Option {
	return func(c *config) error {
		c.queryAllowList = append(c.queryAllowList, names...)
		return nil
	}
}

// WithBasePath sets the prefix stripped from request paths before matching.
// The default is the path of the document's first server URL.
func WithBasePath(p string) Option {
	return func(c *config) error {
		if p != "" && !strings.HasPrefix(p, "/") {
			return &oaserrors.ConfigError{Option: "WithBasePath", Value: p, Message: "must start with /"}
		}
		p = strings.TrimSuffix(p, "/")
		c.basePath = &p
		return nil
	}
}

// WithAdditionalPropertiesDefault sets whether objects whose schema has no
// additionalProperties keyword may carry undeclared keys. Default is false:
// undeclared keys are violations on every such schema. Documents that split
// an object across allOf members or use discriminators usually need true.
func WithAdditionalPropertiesDefault(allow bool) Option {
	return func(c *config) error {
		c.allowAdditionalDef = allow
		return nil
	}
}

func applyOptions(opts []Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("contract: %w", err)
		}
	}
	return cfg, nil
}

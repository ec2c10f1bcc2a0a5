package gateway

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/openapi"
)

// Defaults applied by LoadConfig.
const (
	DefaultListen      = ":8080"
	DefaultDebounce    = 250 * time.Millisecond
	DefaultMaxBodySize = 10 << 20
)

// Config is the gateway configuration file.
//
//	spec: petstore.yaml
//	listen: ":8080"
//	upstream: http://localhost:9000
//	basePath: /api
//	maxBodySize: 1048576
//	allowAdditionalProperties: false
//	validation:
//	  requests: true
//	  responses: true
//	  details: false
//	reload:
//	  enabled: true
//	  debounce: 500ms
type Config struct {
	// Spec is the path of the OpenAPI document
	Spec string `yaml:"spec"`
	// Listen is the address the proxy listens on
	Listen string `yaml:"listen,omitempty"`
	// Upstream is the URL requests are forwarded to
	Upstream string `yaml:"upstream,omitempty"`
	// BasePath overrides the path of the document's first server URL
	BasePath string `yaml:"basePath,omitempty"`
	// MaxDepth bounds instance nesting; 0 keeps the engine default
	MaxDepth int `yaml:"maxDepth,omitempty"`
	// MaxBodySize bounds buffered request and response bodies in bytes
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`
	// AllowAdditionalProperties accepts undeclared object keys when a schema
	// has no additionalProperties keyword
	AllowAdditionalProperties bool `yaml:"allowAdditionalProperties,omitempty"`

	Validation ValidationConfig `yaml:"validation,omitempty"`
	Reload     ReloadConfig     `yaml:"reload,omitempty"`
}

// ValidationConfig switches the validation phases. Unset fields fall back to
// the document's x-membrane-validation extension, then to the defaults.
type ValidationConfig struct {
	Requests  *bool `yaml:"requests,omitempty"`
	Responses *bool `yaml:"responses,omitempty"`
	Details   *bool `yaml:"details,omitempty"`
}

// ReloadConfig controls hot reload of the OpenAPI document.
type ReloadConfig struct {
	Enabled  bool          `yaml:"enabled,omitempty"`
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// Settings are the effective validation switches for one document.
type Settings struct {
	Requests  bool
	Responses bool
	Details   bool
}

// DefaultSettings validates requests only and reports details.
var DefaultSettings = Settings{Requests: true, Responses: false, Details: true}

// LoadConfig reads a YAML configuration file and applies OASGUARD_*
// environment overrides. An empty path reads the environment only.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &oaserrors.ConfigError{Option: "config", Value: path, Message: "cannot read file", Cause: err}
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &oaserrors.ConfigError{Option: "config", Value: path, Message: "invalid YAML", Cause: err}
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with the environment.
func (c *Config) applyEnv() {
	c.Spec = envString("OASGUARD_SPEC", c.Spec)
	c.Listen = envString("OASGUARD_LISTEN", c.Listen)
	c.Upstream = envString("OASGUARD_UPSTREAM", c.Upstream)
	c.BasePath = envString("OASGUARD_BASE_PATH", c.BasePath)
	c.MaxDepth = envInt("OASGUARD_MAX_DEPTH", c.MaxDepth)
	c.MaxBodySize = envInt64("OASGUARD_MAX_BODY_SIZE", c.MaxBodySize)
	c.AllowAdditionalProperties = envBool("OASGUARD_ALLOW_ADDITIONAL_PROPERTIES", c.AllowAdditionalProperties)
	c.Validation.Requests = envBoolPtr("OASGUARD_VALIDATE_REQUESTS", c.Validation.Requests)
	c.Validation.Responses = envBoolPtr("OASGUARD_VALIDATE_RESPONSES", c.Validation.Responses)
	c.Validation.Details = envBoolPtr("OASGUARD_VALIDATE_DETAILS", c.Validation.Details)
	c.Reload.Enabled = envBool("OASGUARD_RELOAD", c.Reload.Enabled)
	c.Reload.Debounce = envDuration("OASGUARD_RELOAD_DEBOUNCE", c.Reload.Debounce)
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Reload.Debounce <= 0 {
		c.Reload.Debounce = DefaultDebounce
	}
	if c.MaxBodySize == 0 {
		c.MaxBodySize = DefaultMaxBodySize
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Spec == "" {
		errs = append(errs, &oaserrors.ConfigError{Option: "spec", Message: "path to the OpenAPI document is required"})
	}
	if c.Upstream != "" {
		if u, err := url.Parse(c.Upstream); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, &oaserrors.ConfigError{Option: "upstream", Value: c.Upstream, Message: "must be an absolute URL"})
		}
	}
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		errs = append(errs, &oaserrors.ConfigError{Option: "basePath", Value: c.BasePath, Message: "must start with /"})
	}
	if c.MaxDepth < 0 {
		errs = append(errs, &oaserrors.ConfigError{Option: "maxDepth", Value: c.MaxDepth, Message: "must not be negative"})
	}
	if c.MaxBodySize < 0 {
		errs = append(errs, &oaserrors.ConfigError{Option: "maxBodySize", Value: c.MaxBodySize, Message: "must not be negative"})
	}
	return errors.Join(errs...)
}

// Settings merges the configured switches with the document extension.
// Explicit configuration wins over the extension, which wins over
// DefaultSettings.
func (c *Config) Settings(doc *openapi.Document) Settings {
	ext := doc.ValidationSettings()
	return Settings{
		Requests:  pick(c.Validation.Requests, ext.Requests, DefaultSettings.Requests),
		Responses: pick(c.Validation.Responses, ext.Responses, DefaultSettings.Responses),
		Details:   pick(c.Validation.Details, ext.Details, DefaultSettings.Details),
	}
}

func pick(explicit, extension *bool, fallback bool) bool {
	switch {
	case explicit != nil:
		return *explicit
	case extension != nil:
		return *extension
	default:
		return fallback
	}
}

// String renders the configuration for startup logs.
func (c *Config) String() string {
	return fmt.Sprintf("spec=%s listen=%s upstream=%s basePath=%s reload=%t", c.Spec, c.Listen, c.Upstream, c.BasePath, c.Reload.Enabled)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

// envBoolPtr keeps fallback, which may be nil, when the variable is unset.
func envBoolPtr(key string, fallback *bool) *bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, ignoring", "key", key, "value", v)
		return fallback
	}
	return &b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

package contract

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/erraggy/oasguard/internal/httputil"
	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/openapi"
)

// Validator checks HTTP messages and JSON values against one OpenAPI
// document. It is built once and is safe for concurrent use: the document
// is never modified and all per-call state lives in Context values.
//
//	doc, _ := openapi.ParseWithOptions(openapi.WithFilePath("openapi.yaml"))
//	v, err := contract.New(doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	errs := v.ValidateRequest(contract.NewRequest(httpReq))
type Validator struct {
	doc      *openapi.Document
	cfg      *config
	logger   openapi.Logger
	matchers *PathMatcherSet
	basePath string

	// queryAllow holds query names exempt from the unsupported-parameter check
	queryAllow map[string]struct{}

	// patternCache caches compiled regex patterns (sync.Map[string, *regexp.Regexp])
	patternCache sync.Map
	patternCount atomic.Int32
}

// New creates a Validator for a loaded document. Path templates are compiled
// up front; an invalid template is returned as an error.
func New(doc *openapi.Document, opts ...Option) (*Validator, error) {
	if doc == nil {
		return nil, &oaserrors.ConfigError{Option: "document", Message: "document cannot be nil"}
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	templates := make([]string, 0, len(doc.Paths))
	for tmpl := range doc.Paths {
		templates = append(templates, tmpl)
	}
	slices.Sort(templates)
	matchers, err := NewPathMatcherSet(templates)
	if err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}

	v := &Validator{
		doc:        doc,
		cfg:        cfg,
		logger:     cfg.logger,
		matchers:   matchers,
		basePath:   doc.BasePath(),
		queryAllow: make(map[string]struct{}),
	}
	if cfg.basePath != nil {
		v.basePath = *cfg.basePath
	}
	for _, name := range doc.APIKeyQueryParameters() {
		v.queryAllow[name] = struct{}{}
	}
	for _, name := range cfg.queryAllowList {
		v.queryAllow[name] = struct{}{}
	}

	v.checkDeclarations()

	v.logger.Debug("contract validator ready",
		"api", doc.Title(),
		"paths", len(templates),
		"basePath", v.basePath)
	return v, nil
}

// checkDeclarations warns about response and content keys no message can
// ever match. They are kept; lookups simply never select them.
func (v *Validator) checkDeclarations() {
	for _, tmpl := range slices.Sorted(maps.Keys(v.doc.Paths)) {
		item := v.doc.Paths[tmpl]
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op.RequestBody != nil {
				v.checkContent(tmpl, method, "requestBody", op.RequestBody.Content)
			}
			for code, resp := range op.Responses {
				if !httputil.IsResponseKey(code) {
					v.logger.Warn("response key is not a status code, range or default",
						"template", tmpl, "method", method, "key", code)
					continue
				}
				if resp != nil {
					v.checkContent(tmpl, method, "responses/"+code, resp.Content)
				}
			}
		}
	}
}

func (v *Validator) checkContent(tmpl, method, where string, content map[string]*openapi.MediaType) {
	for mt := range content {
		if !httputil.IsMediaRange(mt) {
			v.logger.Warn("content key is not a media type or range",
				"template", tmpl, "method", method, "in", where, "mediaType", mt)
		}
	}
}

// Document returns the document the validator checks against.
func (v *Validator) Document() *openapi.Document {
	return v.doc
}

// BasePath returns the prefix stripped from request paths.
func (v *Validator) BasePath() string {
	return v.basePath
}

// compilePattern returns the compiled full-match form of a schema pattern.
func (v *Validator) compilePattern(pattern string) (*regexp.Regexp, error) {
	if cached, ok := v.patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, err
	}

	// The count check and clear are not atomic; concurrent clears only cost
	// recompilation.
	if int(v.patternCount.Add(1)) > v.cfg.patternCacheSize {
		v.patternCache.Range(func(key, _ any) bool {
			v.patternCache.Delete(key)
			return true
		})
		v.patternCount.Store(1)
	}
	v.patternCache.Store(pattern, re)
	return re, nil
}

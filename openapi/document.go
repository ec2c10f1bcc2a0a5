package openapi

import (
	"net/http"
	"net/url"
	"strings"
)

// Document is a loaded OpenAPI 3.x document. It is immutable after
// ParseWithOptions returns and may be shared by any number of goroutines.
type Document struct {
	OpenAPI    string                `yaml:"openapi" json:"openapi"`
	Info       *Info                 `yaml:"info,omitempty" json:"info,omitempty"`
	Servers    []*Server             `yaml:"servers,omitempty" json:"servers,omitempty"`
	Paths      Paths                 `yaml:"paths,omitempty" json:"paths,omitempty"`
	Components *Components           `yaml:"components,omitempty" json:"components,omitempty"`
	Security   []SecurityRequirement `yaml:"security,omitempty" json:"security,omitempty"`

	// Extra holds specification extensions (x-* fields)
	Extra map[string]any `yaml:",inline" json:"-"`

	// SourcePath is the file the document was read from, if any
	SourcePath string `yaml:"-" json:"-"`
}

// Title returns the API title, or the source path when the document has no info block.
func (d *Document) Title() string {
	if d.Info != nil && d.Info.Title != "" {
		return d.Info.Title
	}
	return d.SourcePath
}

// BasePath returns the path component of the first server URL, without a
// trailing slash. Relative server URLs such as "/v1" are supported.
func (d *Document) BasePath() string {
	if len(d.Servers) == 0 || d.Servers[0] == nil {
		return ""
	}
	u, err := url.Parse(d.Servers[0].URL)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(u.Path, "/")
}

// Info provides metadata about the API.
type Info struct {
	Title       string `yaml:"title" json:"title"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Server describes a server hosting the API.
type Server struct {
	URL         string `yaml:"url" json:"url"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Paths maps URI templates to path items.
type Paths map[string]*PathItem

// PathItem describes the operations available on a single path.
type PathItem struct {
	Summary    string       `yaml:"summary,omitempty" json:"summary,omitempty"`
	Get        *Operation   `yaml:"get,omitempty" json:"get,omitempty"`
	Put        *Operation   `yaml:"put,omitempty" json:"put,omitempty"`
	Post       *Operation   `yaml:"post,omitempty" json:"post,omitempty"`
	Delete     *Operation   `yaml:"delete,omitempty" json:"delete,omitempty"`
	Options    *Operation   `yaml:"options,omitempty" json:"options,omitempty"`
	Head       *Operation   `yaml:"head,omitempty" json:"head,omitempty"`
	Patch      *Operation   `yaml:"patch,omitempty" json:"patch,omitempty"`
	Trace      *Operation   `yaml:"trace,omitempty" json:"trace,omitempty"`
	Parameters []*Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// Operation returns the operation declared for the HTTP method, or nil.
// The method is matched case-insensitively.
func (p *PathItem) Operation(method string) *Operation {
	switch strings.ToUpper(method) {
	case http.MethodGet:
		return p.Get
	case http.MethodPut:
		return p.Put
	case http.MethodPost:
		return p.Post
	case http.MethodDelete:
		return p.Delete
	case http.MethodOptions:
		return p.Options
	case http.MethodHead:
		return p.Head
	case http.MethodPatch:
		return p.Patch
	case http.MethodTrace:
		return p.Trace
	default:
		return nil
	}
}

// Operations returns every declared operation keyed by upper-case HTTP method.
func (p *PathItem) Operations() map[string]*Operation {
	ops := make(map[string]*Operation, 8)
	for _, method := range []string{
		http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete,
		http.MethodOptions, http.MethodHead, http.MethodPatch, http.MethodTrace,
	} {
		if op := p.Operation(method); op != nil {
			ops[method] = op
		}
	}
	return ops
}

// Operation describes a single API operation on a path.
type Operation struct {
	OperationID string                `yaml:"operationId,omitempty" json:"operationId,omitempty"`
	Summary     string                `yaml:"summary,omitempty" json:"summary,omitempty"`
	Parameters  []*Parameter          `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	RequestBody *RequestBody          `yaml:"requestBody,omitempty" json:"requestBody,omitempty"`
	Responses   map[string]*Response  `yaml:"responses,omitempty" json:"responses,omitempty"`
	Security    []SecurityRequirement `yaml:"security,omitempty" json:"security,omitempty"`
	Deprecated  bool                  `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`
}

// Parameter describes a single operation parameter.
type Parameter struct {
	Ref         string                `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Name        string                `yaml:"name,omitempty" json:"name,omitempty"`
	In          string                `yaml:"in,omitempty" json:"in,omitempty"`
	Description string                `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool                  `yaml:"required,omitempty" json:"required,omitempty"`
	Style       string                `yaml:"style,omitempty" json:"style,omitempty"`
	Explode     *bool                 `yaml:"explode,omitempty" json:"explode,omitempty"`
	Schema      *Schema               `yaml:"schema,omitempty" json:"schema,omitempty"`
	Content     map[string]*MediaType `yaml:"content,omitempty" json:"content,omitempty"`
}

// RequestBody describes a request body.
type RequestBody struct {
	Ref         string                `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Description string                `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool                  `yaml:"required,omitempty" json:"required,omitempty"`
	Content     map[string]*MediaType `yaml:"content,omitempty" json:"content,omitempty"`
}

// Response describes a single response of an operation.
type Response struct {
	Ref         string                `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Description string                `yaml:"description,omitempty" json:"description,omitempty"`
	Headers     map[string]*Header    `yaml:"headers,omitempty" json:"headers,omitempty"`
	Content     map[string]*MediaType `yaml:"content,omitempty" json:"content,omitempty"`
}

// Header describes a response header.
type Header struct {
	Ref         string  `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool    `yaml:"required,omitempty" json:"required,omitempty"`
	Style       string  `yaml:"style,omitempty" json:"style,omitempty"`
	Explode     *bool   `yaml:"explode,omitempty" json:"explode,omitempty"`
	Schema      *Schema `yaml:"schema,omitempty" json:"schema,omitempty"`
}

// MediaType describes the schema of one content type.
type MediaType struct {
	Schema *Schema `yaml:"schema,omitempty" json:"schema,omitempty"`
}

// Components holds the reusable objects of a document. It is the index used
// to resolve every $ref.
type Components struct {
	Schemas         map[string]*Schema         `yaml:"schemas,omitempty" json:"schemas,omitempty"`
	Parameters      map[string]*Parameter      `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	RequestBodies   map[string]*RequestBody    `yaml:"requestBodies,omitempty" json:"requestBodies,omitempty"`
	Responses       map[string]*Response       `yaml:"responses,omitempty" json:"responses,omitempty"`
	Headers         map[string]*Header         `yaml:"headers,omitempty" json:"headers,omitempty"`
	SecuritySchemes map[string]*SecurityScheme `yaml:"securitySchemes,omitempty" json:"securitySchemes,omitempty"`
}

// SecurityScheme describes an authentication mechanism. Only the fields the
// validator needs are modelled.
type SecurityScheme struct {
	Ref    string `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Type   string `yaml:"type,omitempty" json:"type,omitempty"`
	Name   string `yaml:"name,omitempty" json:"name,omitempty"`
	In     string `yaml:"in,omitempty" json:"in,omitempty"`
	Scheme string `yaml:"scheme,omitempty" json:"scheme,omitempty"`
}

// SecurityRequirement maps security scheme names to required scopes.
type SecurityRequirement map[string][]string

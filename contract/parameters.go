package contract

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/erraggy/oasguard/openapi"
)

// parameters returns the resolved parameters of the matched operation in
// location loc. Path item parameters come first; an operation parameter
// with the same name and location replaces the path item one. Parameters
// whose reference cannot be followed are reported as configuration errors.
func (v *Validator) parameters(ctx Context, m *Match, loc string) ([]*openapi.Parameter, Errors) {
	var (
		out  []*openapi.Parameter
		errs Errors
	)
	index := make(map[string]int)
	add := func(list []*openapi.Parameter) {
		for _, p := range list {
			if p == nil {
				continue
			}
			resolved, err := v.doc.ResolveParameter(p)
			if err != nil {
				errs.Add(configError(ctx, fmt.Sprintf("Cannot resolve parameter: %v", err)))
				continue
			}
			if resolved.In != loc {
				continue
			}
			key := resolved.Name
			if loc == openapi.ParamInHeader {
				key = http.CanonicalHeaderKey(key)
			}
			if i, dup := index[key]; dup {
				out[i] = resolved
				continue
			}
			index[key] = len(out)
			out = append(out, resolved)
		}
	}
	if m.PathItem != nil {
		add(m.PathItem.Parameters)
	}
	add(m.Operation.Parameters)
	return out, errs
}

// parameterSchema returns the schema of a parameter, taken from the content
// map when the parameter uses one.
func parameterSchema(p *openapi.Parameter) *openapi.Schema {
	if p.Schema != nil {
		return p.Schema
	}
	for _, media := range p.Content {
		if media != nil && media.Schema != nil {
			return media.Schema
		}
	}
	return nil
}

// ValidatePathParameters validates the template variables of the matched
// path against their declarations.
func (v *Validator) ValidatePathParameters(ctx Context, m *Match) Errors {
	params, errs := v.parameters(ctx, m, openapi.ParamInPath)
	for _, p := range params {
		pctx := ctx.WithEntityType(EntityPathParameter).WithEntity(p.Name).WithStatusCode(ctx.direction.StatusCode())
		raw, ok := m.PathParams[p.Name]
		if !ok {
			if p.Required {
				errs.Addf(pctx, "Path parameter %s is missing.", p.Name)
			}
			continue
		}
		schema := parameterSchema(p)
		if schema == nil {
			continue
		}
		if decoded, err := url.PathUnescape(raw); err == nil {
			raw = decoded
		}
		errs.AddAll(v.Validate(pctx, schema, deserializePath(raw, p, v.resolved(schema))))
	}
	return errs
}

// ValidateQueryParameters validates the declared query parameters and
// reports every query key that is neither declared nor used by an apiKey
// security scheme.
func (v *Validator) ValidateQueryParameters(ctx Context, m *Match, query url.Values) Errors {
	params, errs := v.parameters(ctx, m, openapi.ParamInQuery)
	qctx := ctx.WithEntityType(EntityQueryParameter).WithStatusCode(ctx.direction.StatusCode())

	consumed := make(map[string]struct{}, len(query))
	for _, p := range params {
		pctx := qctx.WithEntity(p.Name)
		schema := parameterSchema(p)

		var value any
		if values, present := query[p.Name]; present {
			consumed[p.Name] = struct{}{}
			value = deserializeQuery(values, p, v.resolved(schema))
		} else if p.Style == StyleDeepObject {
			obj, keys := deepObjectValue(query, p.Name)
			for _, key := range keys {
				consumed[key] = struct{}{}
			}
			if obj != nil {
				value = obj
			}
		}

		if value == nil {
			if p.Required {
				errs.Addf(pctx, "Required query parameter %s is missing.", p.Name)
			}
			continue
		}
		if schema != nil {
			errs.AddAll(v.Validate(pctx, schema, value))
		}
	}

	var unsupported []string
	for key := range query {
		if _, ok := consumed[key]; ok {
			continue
		}
		if _, ok := v.queryAllow[key]; ok {
			continue
		}
		unsupported = append(unsupported, key)
	}
	if len(unsupported) > 0 {
		slices.Sort(unsupported)
		errs.Addf(qctx, "There are query parameters that are not supported by the API: %s", strings.Join(unsupported, ", "))
	}
	return errs
}

// Header parameters that OpenAPI says to ignore; they are described by
// other parts of the document.
var ignoredHeaderParameters = map[string]struct{}{
	"Accept":        {},
	"Content-Type":  {},
	"Authorization": {},
}

// ValidateHeaderParameters validates the declared header parameters. Names
// are matched case-insensitively.
func (v *Validator) ValidateHeaderParameters(ctx Context, m *Match, header http.Header) Errors {
	params, errs := v.parameters(ctx, m, openapi.ParamInHeader)
	for _, p := range params {
		name := http.CanonicalHeaderKey(p.Name)
		if _, ignored := ignoredHeaderParameters[name]; ignored {
			continue
		}
		pctx := ctx.WithEntityType(EntityHeaderParameter).WithEntity(p.Name).WithStatusCode(ctx.direction.StatusCode())
		values := header.Values(name)
		if len(values) == 0 {
			if p.Required {
				errs.Addf(pctx, "Required header parameter %s is missing.", p.Name)
			}
			continue
		}
		schema := parameterSchema(p)
		if schema == nil {
			continue
		}
		raw := strings.Join(values, ",")
		errs.AddAll(v.Validate(pctx, schema, deserializeHeader(raw, p.Explode, v.resolved(schema))))
	}
	return errs
}

// ValidateResponseHeaders validates the headers declared for a response.
// Content-Type is described by the content map and is skipped.
func (v *Validator) ValidateResponseHeaders(ctx Context, resp *openapi.Response, header http.Header) Errors {
	var errs Errors
	for _, declared := range slices.Sorted(maps.Keys(resp.Headers)) {
		name := http.CanonicalHeaderKey(declared)
		if name == "Content-Type" {
			continue
		}
		hctx := ctx.WithEntityType(EntityHeaderParameter).WithEntity(declared)
		h, err := v.doc.ResolveHeader(resp.Headers[declared])
		if err != nil {
			errs.Add(configError(hctx, fmt.Sprintf("Cannot resolve header: %v", err)))
			continue
		}
		values := header.Values(name)
		if len(values) == 0 {
			if h.Required {
				errs.Addf(hctx, "Required response header %s is missing.", declared)
			}
			continue
		}
		if h.Schema == nil {
			continue
		}
		raw := strings.Join(values, ",")
		errs.AddAll(v.Validate(hctx, h.Schema, deserializeHeader(raw, h.Explode, v.resolved(h.Schema))))
	}
	return errs
}

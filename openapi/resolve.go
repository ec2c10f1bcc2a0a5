package openapi

import (
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/erraggy/oasguard/oaserrors"
)

const (
	refPrefixParameters    = "#/components/parameters/"
	refPrefixRequestBodies = "#/components/requestBodies/"
	refPrefixResponses     = "#/components/responses/"
	refPrefixHeaders       = "#/components/headers/"
)

// maxRefChain bounds the number of hops followed for non-schema objects.
// CheckReferences rejects cycles at load time; this is the backstop for
// documents built in code.
const maxRefChain = 32

// ResolveSchema looks up the component schema a reference points at.
// It returns the schema, its component name, and whether it was found.
func (d *Document) ResolveSchema(ref string) (*Schema, string, bool) {
	name := ComponentName(ref)
	if name == "" || d.Components == nil {
		return nil, "", false
	}
	s, ok := d.Components.Schemas[name]
	return s, name, ok && s != nil
}

// SchemaByName returns the component schema with the given name.
func (d *Document) SchemaByName(name string) (*Schema, bool) {
	if d.Components == nil {
		return nil, false
	}
	s, ok := d.Components.Schemas[name]
	return s, ok && s != nil
}

// ResolveParameter follows p.Ref until a concrete parameter is reached.
func (d *Document) ResolveParameter(p *Parameter) (*Parameter, error) {
	var index map[string]*Parameter
	if d.Components != nil {
		index = d.Components.Parameters
	}
	return follow(p, refPrefixParameters, index, func(p *Parameter) string { return p.Ref })
}

// ResolveRequestBody follows b.Ref until a concrete request body is reached.
func (d *Document) ResolveRequestBody(b *RequestBody) (*RequestBody, error) {
	var index map[string]*RequestBody
	if d.Components != nil {
		index = d.Components.RequestBodies
	}
	return follow(b, refPrefixRequestBodies, index, func(b *RequestBody) string { return b.Ref })
}

// ResolveResponse follows r.Ref until a concrete response is reached.
func (d *Document) ResolveResponse(r *Response) (*Response, error) {
	var index map[string]*Response
	if d.Components != nil {
		index = d.Components.Responses
	}
	return follow(r, refPrefixResponses, index, func(r *Response) string { return r.Ref })
}

// ResolveHeader follows h.Ref until a concrete header is reached.
func (d *Document) ResolveHeader(h *Header) (*Header, error) {
	var index map[string]*Header
	if d.Components != nil {
		index = d.Components.Headers
	}
	return follow(h, refPrefixHeaders, index, func(h *Header) string { return h.Ref })
}

func follow[T any](v *T, prefix string, index map[string]*T, refOf func(*T) string) (*T, error) {
	var chain []string
	for v != nil {
		ref := refOf(v)
		if ref == "" {
			return v, nil
		}
		if slices.Contains(chain, ref) || len(chain) >= maxRefChain {
			return nil, &oaserrors.ReferenceError{Ref: ref, IsCircular: true, Chain: append(chain, ref)}
		}
		chain = append(chain, ref)
		if !strings.HasPrefix(ref, prefix) {
			return nil, &oaserrors.ReferenceError{Ref: ref, Message: "expected a reference to " + strings.TrimSuffix(prefix, "/")}
		}
		next, ok := index[unescapePointer(strings.TrimPrefix(ref, prefix))]
		if !ok || next == nil {
			return nil, &oaserrors.ReferenceError{Ref: ref, Message: "not found"}
		}
		v = next
	}
	return nil, &oaserrors.ReferenceError{Message: "nil object"}
}

// CheckReferences verifies that every local $ref in the document resolves and
// that no schema reaches itself through $ref and composition alone. Cycles
// through properties, items or additionalProperties are legal recursion and
// are accepted. All problems are returned joined, in document order.
func CheckReferences(d *Document) error {
	c := &refChecker{doc: d}
	c.run()
	return errors.Join(c.errs...)
}

type refChecker struct {
	doc  *Document
	errs []error
}

func (c *refChecker) fail(ref, from, msg string) {
	c.errs = append(c.errs, &oaserrors.ReferenceError{Ref: ref, From: from, Message: msg})
}

func (c *refChecker) run() {
	if comps := c.doc.Components; comps != nil {
		for _, name := range slices.Sorted(maps.Keys(comps.Schemas)) {
			c.schema(comps.Schemas[name], "components.schemas."+name)
		}
		for _, name := range slices.Sorted(maps.Keys(comps.Parameters)) {
			c.parameter(comps.Parameters[name], "components.parameters."+name)
		}
		for _, name := range slices.Sorted(maps.Keys(comps.RequestBodies)) {
			c.requestBody(comps.RequestBodies[name], "components.requestBodies."+name)
		}
		for _, name := range slices.Sorted(maps.Keys(comps.Responses)) {
			c.response(comps.Responses[name], "components.responses."+name)
		}
		for _, name := range slices.Sorted(maps.Keys(comps.Headers)) {
			c.header(comps.Headers[name], "components.headers."+name)
		}
		c.cycles()
	}

	for _, tmpl := range slices.Sorted(maps.Keys(c.doc.Paths)) {
		item := c.doc.Paths[tmpl]
		if item == nil {
			continue
		}
		base := "paths." + tmpl
		for i, p := range item.Parameters {
			c.parameter(p, base+".parameters["+strconv.Itoa(i)+"]")
		}
		ops := item.Operations()
		for _, method := range slices.Sorted(maps.Keys(ops)) {
			op := ops[method]
			from := base + "." + strings.ToLower(method)
			for i, p := range op.Parameters {
				c.parameter(p, from+".parameters["+strconv.Itoa(i)+"]")
			}
			if op.RequestBody != nil {
				c.requestBody(op.RequestBody, from+".requestBody")
			}
			for _, code := range slices.Sorted(maps.Keys(op.Responses)) {
				c.response(op.Responses[code], from+".responses."+code)
			}
		}
	}
}

func (c *refChecker) parameter(p *Parameter, from string) {
	if p == nil {
		return
	}
	if p.Ref != "" {
		if _, err := c.doc.ResolveParameter(p); err != nil {
			c.withFrom(err, from)
		}
		return
	}
	c.schema(p.Schema, from+".schema")
	c.content(p.Content, from)
}

func (c *refChecker) requestBody(b *RequestBody, from string) {
	if b == nil {
		return
	}
	if b.Ref != "" {
		if _, err := c.doc.ResolveRequestBody(b); err != nil {
			c.withFrom(err, from)
		}
		return
	}
	c.content(b.Content, from)
}

func (c *refChecker) response(r *Response, from string) {
	if r == nil {
		return
	}
	if r.Ref != "" {
		if _, err := c.doc.ResolveResponse(r); err != nil {
			c.withFrom(err, from)
		}
		return
	}
	c.content(r.Content, from)
	for _, name := range slices.Sorted(maps.Keys(r.Headers)) {
		c.header(r.Headers[name], from+".headers."+name)
	}
}

func (c *refChecker) header(h *Header, from string) {
	if h == nil {
		return
	}
	if h.Ref != "" {
		if _, err := c.doc.ResolveHeader(h); err != nil {
			c.withFrom(err, from)
		}
		return
	}
	c.schema(h.Schema, from+".schema")
}

func (c *refChecker) content(content map[string]*MediaType, from string) {
	for _, mt := range slices.Sorted(maps.Keys(content)) {
		if media := content[mt]; media != nil {
			c.schema(media.Schema, from+".content."+mt+".schema")
		}
	}
}

func (c *refChecker) withFrom(err error, from string) {
	var refErr *oaserrors.ReferenceError
	if errors.As(err, &refErr) && refErr.From == "" {
		refErr.From = from
	}
	c.errs = append(c.errs, err)
}

// schema checks every $ref reachable from s without following the refs.
func (c *refChecker) schema(s *Schema, from string) {
	walkSchema(s, func(child *Schema) {
		if child.Ref == "" {
			return
		}
		if !strings.HasPrefix(child.Ref, "#/") {
			c.fail(child.Ref, from, "external references are not supported")
			return
		}
		if _, _, ok := c.doc.ResolveSchema(child.Ref); !ok {
			c.fail(child.Ref, from, "not found")
		}
	})
}

// cycles reports component schemas that reach themselves through $ref and
// composition keywords only.
func (c *refChecker) cycles() {
	graph := make(map[string][]string)
	names := slices.Sorted(maps.Keys(c.doc.Components.Schemas))
	for _, name := range names {
		graph[name] = directRefs(c.doc.Components.Schemas[name])
	}

	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(names))
	var stack []string
	var visit func(name string)
	visit = func(name string) {
		state[name] = inProgress
		stack = append(stack, name)
		for _, next := range graph[name] {
			switch state[next] {
			case unvisited:
				if _, ok := graph[next]; ok {
					visit(next)
				}
			case inProgress:
				start := slices.Index(stack, next)
				chain := append(slices.Clone(stack[start:]), next)
				c.errs = append(c.errs, &oaserrors.ReferenceError{
					Ref:        componentsSchemasPrefix + next,
					From:       "components.schemas." + name,
					IsCircular: true,
					Chain:      chain,
				})
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
	}
	for _, name := range names {
		if state[name] == unvisited {
			visit(name)
		}
	}
}

// directRefs lists the component names reachable from s without descending
// into properties, items or additionalProperties.
func directRefs(s *Schema) []string {
	var refs []string
	var walk func(*Schema)
	walk = func(s *Schema) {
		if s == nil {
			return
		}
		if name := ComponentName(s.Ref); name != "" && !slices.Contains(refs, name) {
			refs = append(refs, name)
		}
		for _, sub := range s.AllOf {
			walk(sub)
		}
		for _, sub := range s.AnyOf {
			walk(sub)
		}
		for _, sub := range s.OneOf {
			walk(sub)
		}
		walk(s.Not)
	}
	walk(s)
	return refs
}

// walkSchema calls fn for s and every schema nested inside it. References are
// not followed, so the walk always terminates.
func walkSchema(s *Schema, fn func(*Schema)) {
	if s == nil {
		return
	}
	fn(s)
	for _, name := range slices.Sorted(maps.Keys(s.Properties)) {
		walkSchema(s.Properties[name], fn)
	}
	walkSchema(s.Items, fn)
	for _, sub := range s.PrefixItems {
		walkSchema(sub, fn)
	}
	walkSchema(s.AdditionalProperties, fn)
	for _, sub := range s.AllOf {
		walkSchema(sub, fn)
	}
	for _, sub := range s.AnyOf {
		walkSchema(sub, fn)
	}
	for _, sub := range s.OneOf {
		walkSchema(sub, fn)
	}
	walkSchema(s.Not, fn)
}

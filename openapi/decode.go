package openapi

// decodeFromMap populates a Document from the generic map produced by nodeToValue.
func (d *Document) decodeFromMap(m map[string]any) {
	d.OpenAPI = mapGetString(m, "openapi")
	if sub := mapGetMap(m, "info"); sub != nil {
		d.Info = &Info{
			Title:       mapGetString(sub, "title"),
			Version:     mapGetString(sub, "version"),
			Description: mapGetString(sub, "description"),
		}
	}
	if arr, ok := m["servers"].([]any); ok {
		for _, item := range arr {
			if sub, ok := item.(map[string]any); ok {
				d.Servers = append(d.Servers, &Server{
					URL:         mapGetString(sub, "url"),
					Description: mapGetString(sub, "description"),
				})
			}
		}
	}
	if sub := mapGetMap(m, "paths"); sub != nil {
		d.Paths = make(Paths, len(sub))
		for k, v := range sub {
			if pm, ok := v.(map[string]any); ok {
				pi := new(PathItem)
				pi.decodeFromMap(pm)
				d.Paths[k] = pi
			}
		}
	}
	if sub := mapGetMap(m, "components"); sub != nil {
		d.Components = new(Components)
		d.Components.decodeFromMap(sub)
	}
	d.Security = decodeSecurity(m["security"])
	d.Extra = extractExtensionsFromMap(m)
}

func (p *PathItem) decodeFromMap(m map[string]any) {
	p.Summary = mapGetString(m, "summary")
	p.Get = decodeOperation(m["get"])
	p.Put = decodeOperation(m["put"])
	p.Post = decodeOperation(m["post"])
	p.Delete = decodeOperation(m["delete"])
	p.Options = decodeOperation(m["options"])
	p.Head = decodeOperation(m["head"])
	p.Patch = decodeOperation(m["patch"])
	p.Trace = decodeOperation(m["trace"])
	p.Parameters = decodeParameters(m["parameters"])
}

func decodeOperation(v any) *Operation {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	op := &Operation{
		OperationID: mapGetString(m, "operationId"),
		Summary:     mapGetString(m, "summary"),
		Parameters:  decodeParameters(m["parameters"]),
		Security:    decodeSecurity(m["security"]),
		Deprecated:  mapGetBool(m, "deprecated"),
	}
	if sub := mapGetMap(m, "requestBody"); sub != nil {
		op.RequestBody = new(RequestBody)
		op.RequestBody.decodeFromMap(sub)
	}
	if sub := mapGetMap(m, "responses"); sub != nil {
		op.Responses = make(map[string]*Response, len(sub))
		for code, rv := range sub {
			if rm, ok := rv.(map[string]any); ok {
				r := new(Response)
				r.decodeFromMap(rm)
				op.Responses[code] = r
			}
		}
	}
	return op
}

func decodeParameters(v any) []*Parameter {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	params := make([]*Parameter, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			p := new(Parameter)
			p.decodeFromMap(m)
			params = append(params, p)
		}
	}
	return params
}

func (p *Parameter) decodeFromMap(m map[string]any) {
	p.Ref = mapGetString(m, "$ref")
	p.Name = mapGetString(m, "name")
	p.In = mapGetString(m, "in")
	p.Description = mapGetString(m, "description")
	p.Required = mapGetBool(m, "required")
	p.Style = mapGetString(m, "style")
	p.Explode = mapGetBoolPtr(m, "explode")
	p.Schema = decodeSchema(m["schema"])
	p.Content = decodeContent(m["content"])
}

func (b *RequestBody) decodeFromMap(m map[string]any) {
	b.Ref = mapGetString(m, "$ref")
	b.Description = mapGetString(m, "description")
	b.Required = mapGetBool(m, "required")
	b.Content = decodeContent(m["content"])
}

func (r *Response) decodeFromMap(m map[string]any) {
	r.Ref = mapGetString(m, "$ref")
	r.Description = mapGetString(m, "description")
	r.Content = decodeContent(m["content"])
	if sub := mapGetMap(m, "headers"); sub != nil {
		r.Headers = make(map[string]*Header, len(sub))
		for name, hv := range sub {
			if hm, ok := hv.(map[string]any); ok {
				h := new(Header)
				h.decodeFromMap(hm)
				r.Headers[name] = h
			}
		}
	}
}

func (h *Header) decodeFromMap(m map[string]any) {
	h.Ref = mapGetString(m, "$ref")
	h.Description = mapGetString(m, "description")
	h.Required = mapGetBool(m, "required")
	h.Style = mapGetString(m, "style")
	h.Explode = mapGetBoolPtr(m, "explode")
	h.Schema = decodeSchema(m["schema"])
}

func decodeContent(v any) map[string]*MediaType {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	content := make(map[string]*MediaType, len(m))
	for mediaType, mv := range m {
		mt := new(MediaType)
		if mm, ok := mv.(map[string]any); ok {
			mt.Schema = decodeSchema(mm["schema"])
		}
		content[mediaType] = mt
	}
	return content
}

func decodeSecurity(v any) []SecurityRequirement {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	reqs := make([]SecurityRequirement, 0, len(arr))
	for _, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		req := make(SecurityRequirement, len(m))
		for name := range m {
			req[name] = mapGetStringSlice(m, name)
		}
		reqs = append(reqs, req)
	}
	return reqs
}

func (c *Components) decodeFromMap(m map[string]any) {
	if sub := mapGetMap(m, "schemas"); sub != nil {
		c.Schemas = make(map[string]*Schema, len(sub))
		for name, v := range sub {
			if s := decodeSchema(v); s != nil {
				c.Schemas[name] = s
			}
		}
	}
	if sub := mapGetMap(m, "parameters"); sub != nil {
		c.Parameters = make(map[string]*Parameter, len(sub))
		for name, v := range sub {
			if pm, ok := v.(map[string]any); ok {
				p := new(Parameter)
				p.decodeFromMap(pm)
				c.Parameters[name] = p
			}
		}
	}
	if sub := mapGetMap(m, "requestBodies"); sub != nil {
		c.RequestBodies = make(map[string]*RequestBody, len(sub))
		for name, v := range sub {
			if bm, ok := v.(map[string]any); ok {
				b := new(RequestBody)
				b.decodeFromMap(bm)
				c.RequestBodies[name] = b
			}
		}
	}
	if sub := mapGetMap(m, "responses"); sub != nil {
		c.Responses = make(map[string]*Response, len(sub))
		for name, v := range sub {
			if rm, ok := v.(map[string]any); ok {
				r := new(Response)
				r.decodeFromMap(rm)
				c.Responses[name] = r
			}
		}
	}
	if sub := mapGetMap(m, "headers"); sub != nil {
		c.Headers = make(map[string]*Header, len(sub))
		for name, v := range sub {
			if hm, ok := v.(map[string]any); ok {
				h := new(Header)
				h.decodeFromMap(hm)
				c.Headers[name] = h
			}
		}
	}
	if sub := mapGetMap(m, "securitySchemes"); sub != nil {
		c.SecuritySchemes = make(map[string]*SecurityScheme, len(sub))
		for name, v := range sub {
			if sm, ok := v.(map[string]any); ok {
				c.SecuritySchemes[name] = &SecurityScheme{
					Ref:    mapGetString(sm, "$ref"),
					Type:   mapGetString(sm, "type"),
					Name:   mapGetString(sm, "name"),
					In:     mapGetString(sm, "in"),
					Scheme: mapGetString(sm, "scheme"),
				}
			}
		}
	}
}

// decodeSchema decodes a schema mapping. Boolean schemas (3.1) are mapped to
// an empty schema for true and {not: {}} for false.
func decodeSchema(v any) *Schema {
	switch val := v.(type) {
	case map[string]any:
		s := new(Schema)
		s.decodeFromMap(val)
		return s
	case bool:
		if val {
			return &Schema{}
		}
		return &Schema{Not: &Schema{}}
	default:
		return nil
	}
}

func decodeSchemaSlice(v any) []*Schema {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	schemas := make([]*Schema, 0, len(arr))
	for _, item := range arr {
		if s := decodeSchema(item); s != nil {
			schemas = append(schemas, s)
		}
	}
	return schemas
}

func (s *Schema) decodeFromMap(m map[string]any) {
	s.Ref = mapGetString(m, "$ref")
	s.decodeType(m["type"])
	if mapGetBool(m, "nullable") {
		s.Nullable = true
	}
	s.Title = mapGetString(m, "title")
	s.Description = mapGetString(m, "description")
	s.Format = mapGetString(m, "format")
	s.Default = m["default"]
	if arr, ok := m["enum"].([]any); ok {
		s.Enum = arr
	}

	s.MultipleOf = mapGetDecimalPtr(m, "multipleOf")
	s.Maximum = mapGetDecimalPtr(m, "maximum")
	s.Minimum = mapGetDecimalPtr(m, "minimum")
	s.decodeExclusive(m)

	s.MaxLength = mapGetIntPtr(m, "maxLength")
	s.MinLength = mapGetIntPtr(m, "minLength")
	s.Pattern = mapGetString(m, "pattern")

	switch items := m["items"].(type) {
	case []any:
		// Tuple form of items is the pre-2020-12 spelling of prefixItems
		s.PrefixItems = decodeSchemaSlice(items)
	default:
		s.Items = decodeSchema(items)
	}
	if s.PrefixItems == nil {
		s.PrefixItems = decodeSchemaSlice(m["prefixItems"])
	}
	s.MaxItems = mapGetIntPtr(m, "maxItems")
	s.MinItems = mapGetIntPtr(m, "minItems")
	s.UniqueItems = mapGetBool(m, "uniqueItems")

	if sub := mapGetMap(m, "properties"); sub != nil {
		s.Properties = make(map[string]*Schema, len(sub))
		for name, v := range sub {
			if ps := decodeSchema(v); ps != nil {
				s.Properties[name] = ps
			}
		}
	}
	s.Required = mapGetStringSlice(m, "required")
	s.MaxProperties = mapGetIntPtr(m, "maxProperties")
	s.MinProperties = mapGetIntPtr(m, "minProperties")
	switch ap := m["additionalProperties"].(type) {
	case bool:
		s.AdditionalPropertiesAllowed = &ap
	case map[string]any:
		s.AdditionalProperties = decodeSchema(ap)
	}
	if sub := mapGetMap(m, "discriminator"); sub != nil {
		s.Discriminator = &Discriminator{
			PropertyName: mapGetString(sub, "propertyName"),
			Mapping:      mapGetStringMap(sub, "mapping"),
		}
	}
	s.ReadOnly = mapGetBool(m, "readOnly")
	s.WriteOnly = mapGetBool(m, "writeOnly")

	s.AllOf = decodeSchemaSlice(m["allOf"])
	s.AnyOf = decodeSchemaSlice(m["anyOf"])
	s.OneOf = decodeSchemaSlice(m["oneOf"])
	s.Not = decodeSchema(m["not"])

	s.Extra = extractExtensionsFromMap(m)
}

// decodeType handles both "type: string" and the 3.1 array form
// "type: [string, 'null']".
func (s *Schema) decodeType(v any) {
	switch t := v.(type) {
	case string:
		s.Type = t
	case []any:
		var types []string
		for _, item := range t {
			name, ok := item.(string)
			if !ok {
				continue
			}
			if name == TypeNull {
				s.Nullable = true
				continue
			}
			types = append(types, name)
		}
		switch len(types) {
		case 0:
			if s.Nullable {
				s.Type = TypeNull
			}
		case 1:
			s.Type = types[0]
		default:
			s.Types = types
		}
	}
}

// decodeExclusive accepts the boolean (3.0) and numeric (3.1) forms of
// exclusiveMinimum and exclusiveMaximum. A numeric bound replaces an inclusive
// one unless the inclusive one is stricter.
func (s *Schema) decodeExclusive(m map[string]any) {
	switch v := m["exclusiveMinimum"].(type) {
	case bool:
		s.ExclusiveMinimum = v
	default:
		if d := mapGetDecimalPtr(m, "exclusiveMinimum"); d != nil {
			if s.Minimum == nil || d.GreaterThanOrEqual(*s.Minimum) {
				s.Minimum = d
				s.ExclusiveMinimum = true
			}
		}
	}
	switch v := m["exclusiveMaximum"].(type) {
	case bool:
		s.ExclusiveMaximum = v
	default:
		if d := mapGetDecimalPtr(m, "exclusiveMaximum"); d != nil {
			if s.Maximum == nil || d.LessThanOrEqual(*s.Maximum) {
				s.Maximum = d
				s.ExclusiveMaximum = true
			}
		}
	}
}

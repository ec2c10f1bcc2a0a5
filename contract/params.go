package contract

import (
	"net/url"
	"slices"
	"strings"

	"github.com/erraggy/oasguard/openapi"
)

// Parameter serialization styles.
const (
	StyleSimple         = "simple"
	StyleLabel          = "label"
	StyleMatrix         = "matrix"
	StyleForm           = "form"
	StyleSpaceDelimited = "spaceDelimited"
	StylePipeDelimited  = "pipeDelimited"
	StyleDeepObject     = "deepObject"
)

// The deserializers below turn raw parameter text into instance values:
// strings, []any of strings or map[string]any of strings. They do not
// convert numbers or booleans; the validator coerces raw parameter strings
// itself so that messages can quote the original text.
//
// | Location | Default Style | Default Explode |
// |----------|---------------|-----------------|
// | path     | simple        | false           |
// | query    | form          | true            |
// | header   | simple        | false           |

// deserializePath decodes a path parameter according to its style.
func deserializePath(raw string, p *openapi.Parameter, schema *openapi.Schema) any {
	explode := p.Explode != nil && *p.Explode
	switch p.Style {
	case "", StyleSimple:
		return deserializeSimple(raw, schema, explode)
	case StyleLabel:
		return deserializeLabel(raw, schema, explode)
	case StyleMatrix:
		return deserializeMatrix(raw, p.Name, schema, explode)
	default:
		return raw
	}
}

// deserializeQuery decodes a query parameter according to its style.
// deepObject parameters are collected separately by deepObjectValue.
func deserializeQuery(values []string, p *openapi.Parameter, schema *openapi.Schema) any {
	explode := p.Explode == nil || *p.Explode
	switch p.Style {
	case "", StyleForm:
		return deserializeForm(values, schema, explode)
	case StyleSpaceDelimited:
		return deserializeDelimited(values, " ", schema)
	case StylePipeDelimited:
		return deserializeDelimited(values, "|", schema)
	default:
		return single(values)
	}
}

// deserializeHeader decodes a header value, which always uses simple style.
func deserializeHeader(raw string, explode *bool, schema *openapi.Schema) any {
	return deserializeSimple(raw, schema, explode != nil && *explode)
}

// deepObjectValue collects "name[prop]=value" keys into an object. It
// returns the consumed query keys, or nil when there are none.
func deepObjectValue(query url.Values, name string) (map[string]any, []string) {
	prefix := name + "["
	obj := make(map[string]any)
	var consumed []string
	for key, values := range query {
		if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "]") {
			continue
		}
		prop := key[len(prefix) : len(key)-1]
		if prop == "" || strings.ContainsAny(prop, "[]") {
			continue
		}
		consumed = append(consumed, key)
		obj[prop] = single(values)
	}
	if len(consumed) == 0 {
		return nil, nil
	}
	return obj, consumed
}

func deserializeSimple(raw string, schema *openapi.Schema, explode bool) any {
	switch {
	case isArraySchema(schema):
		return toAnySlice(strings.Split(raw, ","))
	case isObjectSchema(schema):
		return splitObject(strings.Split(raw, ","), explode)
	default:
		return raw
	}
}

func deserializeLabel(raw string, schema *openapi.Schema, explode bool) any {
	value, ok := strings.CutPrefix(raw, ".")
	if !ok {
		return raw
	}
	sep := ","
	if explode {
		sep = "."
	}
	switch {
	case isArraySchema(schema):
		return toAnySlice(strings.Split(value, sep))
	case isObjectSchema(schema):
		return splitObject(strings.Split(value, sep), explode)
	default:
		return value
	}
}

func deserializeMatrix(raw, name string, schema *openapi.Schema, explode bool) any {
	value, ok := strings.CutPrefix(raw, ";")
	if !ok {
		return raw
	}
	prefix := name + "="

	switch {
	case isArraySchema(schema) && explode:
		// ;id=3;id=4;id=5
		var items []string
		for _, part := range strings.Split(value, ";") {
			if item, ok := strings.CutPrefix(part, prefix); ok {
				items = append(items, item)
			}
		}
		return toAnySlice(items)
	case isArraySchema(schema):
		// ;id=3,4,5
		return toAnySlice(strings.Split(strings.TrimPrefix(value, prefix), ","))
	case isObjectSchema(schema) && explode:
		// ;role=admin;firstName=Alex
		return splitObject(strings.Split(value, ";"), true)
	case isObjectSchema(schema):
		// ;id=role,admin,firstName,Alex
		return splitObject(strings.Split(strings.TrimPrefix(value, prefix), ","), false)
	default:
		return strings.TrimPrefix(value, prefix)
	}
}

func deserializeForm(values []string, schema *openapi.Schema, explode bool) any {
	switch {
	case isArraySchema(schema):
		if !explode && len(values) == 1 {
			// id=3,4,5
			return toAnySlice(strings.Split(values[0], ","))
		}
		// id=3&id=4&id=5
		return toAnySlice(values)
	case isObjectSchema(schema) && !explode && len(values) == 1:
		// id=role,admin,firstName,Alex
		return splitObject(strings.Split(values[0], ","), false)
	default:
		return single(values)
	}
}

func deserializeDelimited(values []string, sep string, schema *openapi.Schema) any {
	parts := strings.Split(strings.Join(values, sep), sep)
	if isArraySchema(schema) {
		return toAnySlice(parts)
	}
	return single(parts)
}

// splitObject reads "k=v" pairs when explode is set and alternating
// "k,v" entries otherwise.
func splitObject(parts []string, explode bool) map[string]any {
	obj := make(map[string]any)
	if explode {
		for _, part := range parts {
			if k, v, ok := strings.Cut(part, "="); ok && k != "" {
				obj[k] = v
			}
		}
		return obj
	}
	for i := 0; i+1 < len(parts); i += 2 {
		obj[parts[i]] = parts[i+1]
	}
	return obj
}

// single returns the only value as a string and several values as an array.
func single(values []string) any {
	if len(values) == 1 {
		return values[0]
	}
	return toAnySlice(values)
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, s := range values {
		out[i] = s
	}
	return out
}

func isArraySchema(s *openapi.Schema) bool {
	return s != nil && (s.Type == openapi.TypeArray || slices.Contains(s.Types, openapi.TypeArray))
}

func isObjectSchema(s *openapi.Schema) bool {
	return s != nil && (s.Type == openapi.TypeObject || slices.Contains(s.Types, openapi.TypeObject))
}

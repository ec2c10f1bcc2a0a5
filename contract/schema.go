package contract

import (
	"fmt"
	"strings"

	"github.com/erraggy/oasguard/openapi"
)

// Validate checks value against schema and returns every violation found.
// An empty result means the value conforms.
//
// value is a JSON-shaped instance (nil, bool, string, json.Number or another
// numeric type, []any, map[string]any), the Absent marker, or a raw body
// ([]byte, RawJSON, io.Reader) that is parsed first.
func (v *Validator) Validate(ctx Context, schema *openapi.Schema, value any) Errors {
	if schema == nil {
		return nil
	}
	if ctx.depth > v.cfg.maxDepth {
		return Errors{NewError(ctx, fmt.Sprintf("maximum nesting depth of %d exceeded", v.cfg.maxDepth))}
	}
	if IsAbsent(value) {
		return Errors{NewError(ctx, "value is missing")}
	}
	if parsed, raw, err := parseRaw(value); raw {
		if err != nil {
			pctx := ctx.WithStatusCode(ctx.direction.StatusCode())
			return Errors{newKindError(pctx, KindParse, fmt.Sprintf("%s cannot be parsed as JSON: %v", entityLabel(ctx), err))}
		}
		value = parsed
	}

	// An explicit null under a nullable schema needs no further checks.
	if value == nil && v.nullable(schema) {
		return nil
	}

	if label := schema.TypeLabel(); label != "" {
		ctx = ctx.WithSchemaType(label)
	}

	var errs Errors
	if schema.HasComposition() {
		errs.AddAll(v.validateComposition(ctx, schema, value))
	}
	if schema.Ref != "" {
		errs.AddAll(v.validateRef(ctx, schema.Ref, value))
	}

	errs.AddAll(v.validateEnum(ctx, schema, value))
	errs.AddAll(v.validateStringRestrictions(ctx, schema, value))
	errs.AddAll(v.validateNumberRestrictions(ctx, schema, value))

	types := schemaTypes(schema)
	switch len(types) {
	case 0:
		errs.AddAll(v.validateUntyped(ctx, schema, value))
	case 1:
		errs.AddAll(v.validateType(ctx, schema, types[0], value))
	default:
		errs.AddAll(v.validateTypeUnion(ctx, schema, types, value))
	}
	return errs
}

// validateRef resolves a schema reference and validates against its target.
func (v *Validator) validateRef(ctx Context, ref string, value any) Errors {
	target, name, ok := v.doc.ResolveSchema(ref)
	if !ok {
		return Errors{configError(ctx, fmt.Sprintf("Cannot resolve the reference %s.", ref))}
	}
	next, fresh := ctx.withRef(name)
	if !fresh || next.refs.len > maxRefHops {
		chain := append(ctx.refs.names(), name)
		return Errors{configError(ctx, "circular reference: "+strings.Join(chain, " -> "))}
	}
	return v.Validate(next, target, value)
}

// nullable follows $ref hops looking for a nullable declaration.
func (v *Validator) nullable(schema *openapi.Schema) bool {
	for hops := 0; schema != nil && hops < maxRefHops; hops++ {
		if schema.Nullable || schema.Type == openapi.TypeNull {
			return true
		}
		if schema.Ref == "" {
			return false
		}
		schema, _, _ = v.doc.ResolveSchema(schema.Ref)
	}
	return false
}

// resolved returns the schema a chain of $refs ends at, or s itself.
func (v *Validator) resolved(s *openapi.Schema) *openapi.Schema {
	for hops := 0; s != nil && s.Ref != "" && hops < maxRefHops; hops++ {
		next, _, ok := v.doc.ResolveSchema(s.Ref)
		if !ok {
			return s
		}
		s = next
	}
	return s
}

func schemaTypes(s *openapi.Schema) []string {
	if len(s.Types) > 0 {
		return s.Types
	}
	if s.Type != "" {
		return []string{s.Type}
	}
	return nil
}

// validateType checks a single declared type and, for arrays and objects,
// continues into the structure.
func (v *Validator) validateType(ctx Context, schema *openapi.Schema, t string, value any) Errors {
	switch t {
	case openapi.TypeArray:
		return v.validateArray(ctx, schema, value)
	case openapi.TypeObject:
		return v.validateObject(ctx, schema, value)
	case openapi.TypeNull, openapi.TypeBoolean, openapi.TypeInteger, openapi.TypeNumber, openapi.TypeString:
		if v.typeMatches(ctx, t, value) {
			return nil
		}
		return Errors{NewError(ctx, typeMismatch(t, value))}
	default:
		return Errors{configError(ctx, fmt.Sprintf("Unknown schema type %s.", t))}
	}
}

// validateTypeUnion accepts the value when it matches any member type.
func (v *Validator) validateTypeUnion(ctx Context, schema *openapi.Schema, types []string, value any) Errors {
	for _, t := range types {
		if v.typeMatches(ctx, t, value) {
			return v.validateType(ctx, schema, t, value)
		}
	}
	return Errors{NewError(ctx, fmt.Sprintf("%s does not match any of the types %s.", preview(value), strings.Join(types, ", ")))}
}

// validateUntyped applies object and array keywords to values of that shape
// when the schema declares no type.
func (v *Validator) validateUntyped(ctx Context, schema *openapi.Schema, value any) Errors {
	if hasObjectKeywords(schema) {
		if _, ok := asObject(value); ok {
			return v.validateObject(ctx, schema, value)
		}
	}
	if hasArrayKeywords(schema) {
		if _, ok := asArray(value); ok {
			return v.validateArray(ctx, schema, value)
		}
	}
	return nil
}

func (v *Validator) typeMatches(ctx Context, t string, value any) bool {
	param := ctx.entityType.IsParameter()
	switch t {
	case openapi.TypeNull:
		return value == nil
	case openapi.TypeBoolean:
		switch b := value.(type) {
		case bool:
			return true
		case string:
			return b == "true" || b == "false"
		}
		return false
	case openapi.TypeInteger:
		d, ok := coerceNumber(value, param)
		return ok && isInteger(d)
	case openapi.TypeNumber:
		_, ok := coerceNumber(value, param)
		return ok
	case openapi.TypeString:
		_, ok := value.(string)
		return ok
	case openapi.TypeArray:
		_, ok := asArray(value)
		return ok
	case openapi.TypeObject:
		_, ok := asObject(value)
		return ok
	}
	return false
}

func typeMismatch(t string, value any) string {
	switch t {
	case openapi.TypeNull:
		return fmt.Sprintf("Value %s is not null.", preview(value))
	case openapi.TypeBoolean:
		return fmt.Sprintf("Value %s is not a boolean.", preview(value))
	case openapi.TypeInteger:
		return fmt.Sprintf("%s is not an integer.", preview(value))
	case openapi.TypeNumber:
		return fmt.Sprintf("%s is not a number.", preview(value))
	case openapi.TypeString:
		return fmt.Sprintf("%s is not a string.", preview(value))
	case openapi.TypeArray:
		return fmt.Sprintf("%s is not an array.", preview(value))
	default:
		return fmt.Sprintf("Value %s is not an object.", preview(value))
	}
}

func hasObjectKeywords(s *openapi.Schema) bool {
	return len(s.Properties) > 0 || len(s.Required) > 0 ||
		s.AdditionalProperties != nil || s.AdditionalPropertiesAllowed != nil ||
		s.MinProperties != nil || s.MaxProperties != nil || s.Discriminator != nil
}

func hasArrayKeywords(s *openapi.Schema) bool {
	return s.Items != nil || len(s.PrefixItems) > 0 ||
		s.MinItems != nil || s.MaxItems != nil || s.UniqueItems
}

func configError(ctx Context, msg string) ValidationError {
	return newKindError(ctx.WithStatusCode(500), KindConfiguration, msg)
}

func entityLabel(ctx Context) string {
	if ctx.entityType == EntityNone {
		return "Value"
	}
	l := ctx.entityType.Label()
	return strings.ToUpper(l[:1]) + l[1:]
}

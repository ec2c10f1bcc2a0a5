package contract

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/erraggy/oasguard/openapi"
)

// validateArray checks the items of an array and the array-level keywords.
func (v *Validator) validateArray(ctx Context, schema *openapi.Schema, value any) Errors {
	items, ok := asArray(value)
	if !ok {
		return Errors{NewError(ctx, typeMismatch(openapi.TypeArray, value))}
	}

	var errs Errors
	start := 0
	if len(schema.PrefixItems) > 0 {
		// Tuple typing is not supported; positional schemas are skipped.
		v.logger.Debug("prefixItems are not validated",
			"pointer", ctx.pointer,
			"complexType", ctx.complexType,
			"count", len(schema.PrefixItems))
		start = len(schema.PrefixItems)
	}
	if schema.Items != nil {
		for i := start; i < len(items); i++ {
			errs.AddAll(v.Validate(ctx.WithIndex(i), schema.Items, items[i]))
		}
	}

	if schema.MinItems != nil && len(items) < *schema.MinItems {
		errs.Addf(ctx, "Array has %d items. This is less than minItems of %d.", len(items), *schema.MinItems)
	}
	if schema.MaxItems != nil && len(items) > *schema.MaxItems {
		errs.Addf(ctx, "Array has %d items. This is more than maxItems of %d.", len(items), *schema.MaxItems)
	}
	if schema.UniqueItems {
		if dups := duplicates(items); len(dups) > 0 {
			errs.Addf(ctx, "Array with restriction uniqueItems has the duplicated values %s.", strings.Join(dups, ", "))
		}
	}
	return errs
}

// duplicates returns the canonical form of every value that occurs more than
// once, each listed once in order of first repetition.
func duplicates(items []any) []string {
	seen := make(map[string]int, len(items))
	var dups []string
	for _, item := range items {
		key := canonical(item)
		seen[key]++
		if seen[key] == 2 {
			dups = append(dups, key)
		}
	}
	return dups
}

// validateObject checks required, additional and declared properties, the
// object size and the discriminator.
func (v *Validator) validateObject(ctx Context, schema *openapi.Schema, value any) Errors {
	obj, ok := asObject(value)
	if !ok {
		return Errors{NewError(ctx, typeMismatch(openapi.TypeObject, value))}
	}

	var errs Errors
	errs.AddAll(v.validateRequired(ctx, schema, obj))
	errs.AddAll(v.validateAdditionalProperties(ctx, schema, obj))
	errs.AddAll(validateObjectSize(ctx, schema, obj))
	errs.AddAll(v.validateProperties(ctx, schema, obj))
	errs.AddAll(v.validateDiscriminator(ctx, schema, obj))
	return errs
}

func (v *Validator) validateRequired(ctx Context, schema *openapi.Schema, obj map[string]any) Errors {
	var errs Errors
	for _, name := range schema.Required {
		if _, present := obj[name]; present {
			continue
		}
		if prop := schema.Properties[name]; prop != nil {
			// readOnly values are set by the server, writeOnly values never leave it
			if ctx.direction == DirectionRequest && v.isReadOnly(prop) {
				continue
			}
			if ctx.direction == DirectionResponse && v.isWriteOnly(prop) {
				continue
			}
		}
		errs.Addf(ctx.WithPointerSegment(name), "Required property %s is missing.", name)
	}
	return errs
}

func (v *Validator) isReadOnly(prop *openapi.Schema) bool {
	return prop.ReadOnly || v.resolved(prop).ReadOnly
}

func (v *Validator) isWriteOnly(prop *openapi.Schema) bool {
	return prop.WriteOnly || v.resolved(prop).WriteOnly
}

// validateAdditionalProperties treats an absent additionalProperties like
// false on every schema, allOf members included, unless the validator was
// built with WithAdditionalPropertiesDefault(true).
func (v *Validator) validateAdditionalProperties(ctx Context, schema *openapi.Schema, obj map[string]any) Errors {
	var additional []string
	for _, key := range slices.Sorted(maps.Keys(obj)) {
		if _, declared := schema.Properties[key]; !declared {
			additional = append(additional, key)
		}
	}
	if len(additional) == 0 {
		return nil
	}

	if schema.AdditionalProperties != nil {
		var errs Errors
		for _, key := range additional {
			errs.AddAll(v.Validate(ctx.WithPointerSegment(key), schema.AdditionalProperties, obj[key]))
		}
		return errs
	}
	if allowed := schema.AdditionalPropertiesAllowed; allowed != nil {
		if *allowed {
			return nil
		}
	} else if v.cfg.allowAdditionalDef {
		return nil
	}

	word := "property"
	if len(additional) > 1 {
		word = "properties"
	}
	return Errors{NewError(ctx, fmt.Sprintf("The object has the additional %s: %s. But the schema does not allow additional properties.",
		word, strings.Join(additional, ", ")))}
}

func validateObjectSize(ctx Context, schema *openapi.Schema, obj map[string]any) Errors {
	var errs Errors
	if schema.MinProperties != nil && len(obj) < *schema.MinProperties {
		errs.Addf(ctx, "Object has %d properties. This is smaller than minProperties of %d.", len(obj), *schema.MinProperties)
	}
	if schema.MaxProperties != nil && len(obj) > *schema.MaxProperties {
		errs.Addf(ctx, "Object has %d properties. This is more than maxProperties of %d.", len(obj), *schema.MaxProperties)
	}
	return errs
}

func (v *Validator) validateProperties(ctx Context, schema *openapi.Schema, obj map[string]any) Errors {
	var errs Errors
	for _, name := range slices.Sorted(maps.Keys(schema.Properties)) {
		val, present := obj[name]
		if !present {
			continue
		}
		prop := schema.Properties[name]
		pctx := ctx.WithPointerSegment(name)
		errs.AddAll(v.Validate(pctx, prop, val))

		if ctx.direction == DirectionRequest && v.isReadOnly(prop) {
			errs.Addf(pctx, "The property %s is read only. But the request contains the value %s for this field.", name, preview(val))
		}
		if ctx.direction == DirectionResponse && v.isWriteOnly(prop) {
			errs.Addf(pctx, "The property %s is write only. But the response contains the value %s for this field.", name, preview(val))
		}
	}
	return errs
}

// validateDiscriminator validates the whole object against the schema its
// discriminator property selects. The value is looked up in the mapping
// first (as a name or a reference) and then as a component schema name.
func (v *Validator) validateDiscriminator(ctx Context, schema *openapi.Schema, obj map[string]any) Errors {
	disc := schema.Discriminator
	if disc == nil || disc.PropertyName == "" {
		return nil
	}

	raw, present := obj[disc.PropertyName]
	if !present || raw == nil {
		if slices.Contains(schema.Required, disc.PropertyName) {
			// already reported as a missing required property
			return nil
		}
		return Errors{NewError(ctx.WithPointerSegment(disc.PropertyName),
			fmt.Sprintf("Discriminator property %s is not set.", disc.PropertyName))}
	}
	selector := scalarText(raw)

	target, name, ok := v.discriminatedSchema(disc, selector)
	if !ok {
		return Errors{NewError(ctx.WithPointerSegment(disc.PropertyName),
			fmt.Sprintf("Discriminator value %q does not match any schema.", selector))}
	}

	next, fresh := ctx.withDiscriminated(name)
	if !fresh {
		// The object is already being validated against the selected schema.
		return nil
	}
	return v.Validate(next, target, obj)
}

func (v *Validator) discriminatedSchema(disc *openapi.Discriminator, selector string) (*openapi.Schema, string, bool) {
	if mapped, ok := disc.Mapping[selector]; ok {
		if strings.HasPrefix(mapped, "#") {
			return v.doc.ResolveSchema(mapped)
		}
		s, ok := v.doc.SchemaByName(mapped)
		return s, mapped, ok
	}
	s, ok := v.doc.SchemaByName(selector)
	return s, selector, ok
}

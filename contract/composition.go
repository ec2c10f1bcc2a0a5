package contract

import (
	"fmt"

	"github.com/erraggy/oasguard/openapi"
)

// validateComposition applies allOf, anyOf, oneOf and not. Each keyword is
// independent of the others and of the type-specific checks.
func (v *Validator) validateComposition(ctx Context, schema *openapi.Schema, value any) Errors {
	var errs Errors
	if len(schema.AllOf) > 0 {
		errs.AddAll(v.validateAllOf(ctx, schema.AllOf, value))
	}
	if len(schema.AnyOf) > 0 {
		errs.AddAll(v.validateAnyOf(ctx, schema.AnyOf, value))
	}
	if len(schema.OneOf) > 0 {
		errs.AddAll(v.validateOneOf(ctx, schema.OneOf, value))
	}
	if schema.Not != nil {
		errs.AddAll(v.validateNot(ctx, schema.Not, value))
	}
	return errs
}

// validateAllOf reports the violations of every member plus one summary.
func (v *Validator) validateAllOf(ctx Context, members []*openapi.Schema, value any) Errors {
	var errs Errors
	for _, member := range members {
		errs.AddAll(v.Validate(ctx, member, value))
	}
	if errs.Empty() {
		return nil
	}
	errs.Addf(ctx, "A subschema of allOf is not valid.")
	return errs
}

// validateAnyOf succeeds as soon as one member accepts the value. The
// violations of the rejecting members are not reported, except for problems
// with the document itself.
func (v *Validator) validateAnyOf(ctx Context, members []*openapi.Schema, value any) Errors {
	var internal Errors
	for _, member := range members {
		errs := v.Validate(ctx, member, value)
		if errs.Empty() {
			return nil
		}
		internal.AddAll(errs.ofKind(KindConfiguration))
	}
	internal.Addf(ctx, "%s does not match any of the %d subschemas of anyOf.", preview(value), len(members))
	return internal
}

// validateOneOf requires exactly one member to accept the value.
func (v *Validator) validateOneOf(ctx Context, members []*openapi.Schema, value any) Errors {
	var internal Errors
	matched := 0
	for _, member := range members {
		errs := v.Validate(ctx, member, value)
		if errs.Empty() {
			matched++
		}
		internal.AddAll(errs.ofKind(KindConfiguration))
	}
	if matched == 1 && internal.Empty() {
		return nil
	}
	if matched != 1 {
		internal.Addf(ctx, "%s matches %d of the %d subschemas of oneOf. It must match exactly one.", preview(value), matched, len(members))
	}
	return internal
}

// validateNot succeeds only when the subschema rejects the value.
func (v *Validator) validateNot(ctx Context, not *openapi.Schema, value any) Errors {
	errs := v.Validate(ctx, not, value)
	if internal := errs.ofKind(KindConfiguration); !internal.Empty() {
		return internal
	}
	if !errs.Empty() {
		return nil
	}
	return Errors{NewError(ctx, fmt.Sprintf("%s must not match the subschema of not.", preview(value)))}
}

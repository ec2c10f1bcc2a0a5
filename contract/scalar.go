package contract

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/erraggy/oasguard/internal/stringutil"
	"github.com/erraggy/oasguard/openapi"
)

// String formats checked by validateFormat. Unknown formats are ignored.
const (
	FormatUUID         = "uuid"
	FormatEmail        = "email"
	FormatURI          = "uri"
	FormatURIReference = "uri-reference"
	FormatDate         = "date"
	FormatDateTime     = "date-time"
	FormatIP           = "ip"
	FormatIPv4         = "ipv4"
	FormatIPv6         = "ipv6"
)

// validateEnum checks that the value is one of the enumerated values. Raw
// parameter strings also match the textual form of numeric and boolean
// members, so "2" matches enum [1, 2].
func (v *Validator) validateEnum(ctx Context, schema *openapi.Schema, value any) Errors {
	if len(schema.Enum) == 0 {
		return nil
	}
	s, isString := value.(string)
	param := isString && ctx.entityType.IsParameter()
	for _, allowed := range schema.Enum {
		if equalValues(value, allowed) {
			return nil
		}
		if param && scalarText(allowed) == s {
			return nil
		}
	}
	members := make([]string, len(schema.Enum))
	for i, allowed := range schema.Enum {
		members[i] = scalarText(allowed)
	}
	return Errors{NewError(ctx, fmt.Sprintf("%s is not a valid value. Allowed values are: %s.",
		preview(value), strings.Join(members, ", ")))}
}

// scalarText renders an enum member the way it would appear in a query string.
func scalarText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case json.Number:
		return t.String()
	}
	if d, ok := toDecimal(v); ok {
		return formatDecimal(d)
	}
	return canonical(v)
}

// validateStringRestrictions applies pattern, format and length keywords.
// Values that are not strings are ignored, as are parameter strings checked
// against a numeric or boolean schema, which only look like strings because
// they arrived in a URL or header.
func (v *Validator) validateStringRestrictions(ctx Context, schema *openapi.Schema, value any) Errors {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	if ctx.entityType.IsParameter() && isNonStringScalar(schema) {
		return nil
	}

	var errs Errors
	if schema.Pattern != "" {
		re, err := v.compilePattern(schema.Pattern)
		switch {
		case err != nil:
			errs.Add(configError(ctx, fmt.Sprintf("The pattern %s is not a valid regular expression: %v", schema.Pattern, err)))
		case !re.MatchString(s):
			errs.Addf(ctx, "The string '%s' does not match the regex pattern %s.", s, schema.Pattern)
		}
	}
	if schema.Format != "" {
		errs.AddAll(validateFormat(ctx, schema.Format, s))
	}
	if schema.MinLength != nil || schema.MaxLength != nil {
		n := utf8.RuneCountInString(s)
		if schema.MinLength != nil && n < *schema.MinLength {
			errs.Addf(ctx, "The string '%s' is %d characters long. This is shorter than the minLength of %d characters.", s, n, *schema.MinLength)
		}
		if schema.MaxLength != nil && n > *schema.MaxLength {
			errs.Addf(ctx, "The string '%s' is %d characters long. This is longer than the maxLength of %d characters.", s, n, *schema.MaxLength)
		}
	}
	return errs
}

func isNonStringScalar(s *openapi.Schema) bool {
	switch s.Type {
	case openapi.TypeInteger, openapi.TypeNumber, openapi.TypeBoolean:
		return true
	}
	return false
}

// validateFormat checks the well-known string formats.
func validateFormat(ctx Context, format, s string) Errors {
	var valid bool
	var expected string
	switch format {
	case FormatUUID:
		valid, expected = stringutil.IsUUID(s), "a UUID"
	case FormatEmail:
		valid, expected = stringutil.IsEmail(s), "an email address"
	case FormatURI, FormatURIReference:
		valid, expected = stringutil.IsURI(s), "a URI"
	case FormatDate:
		valid, expected = stringutil.IsDate(s), "a date (YYYY-MM-DD)"
	case FormatDateTime:
		valid, expected = stringutil.IsDateTime(s), "a date-time (RFC 3339)"
	case FormatIP:
		valid, expected = stringutil.IsIP(s, true, true), "an IP address"
	case FormatIPv4:
		valid, expected = stringutil.IsIP(s, true, false), "an IPv4 address"
	case FormatIPv6:
		valid, expected = stringutil.IsIP(s, false, true), "an IPv6 address"
	default:
		return nil
	}
	if valid {
		return nil
	}
	return Errors{NewError(ctx, fmt.Sprintf("The string '%s' is not %s.", s, expected))}
}

// numericSchema reports whether schema declares integer or number.
func numericSchema(schema *openapi.Schema) bool {
	for _, t := range schemaTypes(schema) {
		if t == openapi.TypeInteger || t == openapi.TypeNumber {
			return true
		}
	}
	return false
}

// validateNumberRestrictions applies minimum, maximum and multipleOf with
// exact decimal arithmetic. Non-numeric values are ignored; raw parameter
// strings are converted first. Numbers beyond the configured exponent bound
// are rejected before any arithmetic.
func (v *Validator) validateNumberRestrictions(ctx Context, schema *openapi.Schema, value any) Errors {
	if schema.Minimum == nil && schema.Maximum == nil && schema.MultipleOf == nil && !numericSchema(schema) {
		return nil
	}
	n, ok := coerceNumber(value, ctx.entityType.IsParameter())
	if !ok {
		return nil
	}
	if !withinExponent(n, v.cfg.maxExponent) {
		return Errors{NewError(ctx, fmt.Sprintf("The number %s exceeds the supported exponent range of %d.", formatDecimal(n), v.cfg.maxExponent))}
	}
	if schema.Minimum == nil && schema.Maximum == nil && schema.MultipleOf == nil {
		return nil
	}

	var errs Errors
	if lo := schema.Minimum; lo != nil {
		switch {
		case n.LessThan(*lo):
			errs.Addf(ctx, "%s is smaller than the minimum of %s.", formatDecimal(n), lo.String())
		case schema.ExclusiveMinimum && n.Equal(*lo):
			errs.Addf(ctx, "%s is not greater than the exclusive minimum of %s.", formatDecimal(n), lo.String())
		}
	}
	if hi := schema.Maximum; hi != nil {
		switch {
		case n.GreaterThan(*hi):
			errs.Addf(ctx, "%s is greater than the maximum of %s.", formatDecimal(n), hi.String())
		case schema.ExclusiveMaximum && n.Equal(*hi):
			errs.Addf(ctx, "%s is not smaller than the exclusive maximum of %s.", formatDecimal(n), hi.String())
		}
	}
	if m := schema.MultipleOf; m != nil && !m.IsZero() {
		if !n.Mod(*m).IsZero() {
			errs.Addf(ctx, "%s is not a multiple of %s.", formatDecimal(n), m.String())
		}
	}
	return errs
}

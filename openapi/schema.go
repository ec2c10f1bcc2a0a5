package openapi

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Schema is a JSON Schema node as used by OpenAPI 3.0 and 3.1.
//
// Numeric bounds are exact decimals. The 3.1 numeric form of
// exclusiveMinimum/exclusiveMaximum is normalised on load to the 3.0 form:
// Minimum/Maximum carry the bound and the Exclusive* flag is set.
type Schema struct {
	// Ref is a local reference such as "#/components/schemas/Pet"
	Ref string `yaml:"$ref,omitempty" json:"$ref,omitempty"`

	// Type is the single declared type, or "" when the schema accepts any type
	Type string `yaml:"type,omitempty" json:"type,omitempty"`
	// Types holds the non-null members of a 3.1 type array with more than one entry
	Types []string `yaml:"-" json:"-"`
	// Nullable is set by "nullable: true" (3.0) or a "null" member of a type array (3.1)
	Nullable bool `yaml:"nullable,omitempty" json:"nullable,omitempty"`

	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Format      string `yaml:"format,omitempty" json:"format,omitempty"`
	Default     any    `yaml:"default,omitempty" json:"default,omitempty"`
	Enum        []any  `yaml:"enum,omitempty" json:"enum,omitempty"`

	// Number/integer keywords
	MultipleOf       *decimal.Decimal `yaml:"multipleOf,omitempty" json:"multipleOf,omitempty"`
	Maximum          *decimal.Decimal `yaml:"maximum,omitempty" json:"maximum,omitempty"`
	ExclusiveMaximum bool             `yaml:"exclusiveMaximum,omitempty" json:"exclusiveMaximum,omitempty"`
	Minimum          *decimal.Decimal `yaml:"minimum,omitempty" json:"minimum,omitempty"`
	ExclusiveMinimum bool             `yaml:"exclusiveMinimum,omitempty" json:"exclusiveMinimum,omitempty"`

	// String keywords
	MaxLength *int   `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	MinLength *int   `yaml:"minLength,omitempty" json:"minLength,omitempty"`
	Pattern   string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// Array keywords
	Items       *Schema   `yaml:"items,omitempty" json:"items,omitempty"`
	PrefixItems []*Schema `yaml:"prefixItems,omitempty" json:"prefixItems,omitempty"`
	MaxItems    *int      `yaml:"maxItems,omitempty" json:"maxItems,omitempty"`
	MinItems    *int      `yaml:"minItems,omitempty" json:"minItems,omitempty"`
	UniqueItems bool      `yaml:"uniqueItems,omitempty" json:"uniqueItems,omitempty"`

	// Object keywords
	Properties    map[string]*Schema `yaml:"properties,omitempty" json:"properties,omitempty"`
	Required      []string           `yaml:"required,omitempty" json:"required,omitempty"`
	MaxProperties *int               `yaml:"maxProperties,omitempty" json:"maxProperties,omitempty"`
	MinProperties *int               `yaml:"minProperties,omitempty" json:"minProperties,omitempty"`
	// AdditionalProperties is the schema for undeclared properties, when one is given
	AdditionalProperties *Schema `yaml:"-" json:"-"`
	// AdditionalPropertiesAllowed is the boolean form of additionalProperties; nil when absent
	AdditionalPropertiesAllowed *bool          `yaml:"-" json:"-"`
	Discriminator               *Discriminator `yaml:"discriminator,omitempty" json:"discriminator,omitempty"`
	ReadOnly                    bool           `yaml:"readOnly,omitempty" json:"readOnly,omitempty"`
	WriteOnly                   bool           `yaml:"writeOnly,omitempty" json:"writeOnly,omitempty"`

	// Composition keywords
	AllOf []*Schema `yaml:"allOf,omitempty" json:"allOf,omitempty"`
	AnyOf []*Schema `yaml:"anyOf,omitempty" json:"anyOf,omitempty"`
	OneOf []*Schema `yaml:"oneOf,omitempty" json:"oneOf,omitempty"`
	Not   *Schema   `yaml:"not,omitempty" json:"not,omitempty"`

	// Extra holds specification extensions (x-* fields)
	Extra map[string]any `yaml:",inline" json:"-"`
}

// Discriminator selects a concrete schema by the value of one property.
type Discriminator struct {
	PropertyName string            `yaml:"propertyName" json:"propertyName"`
	Mapping      map[string]string `yaml:"mapping,omitempty" json:"mapping,omitempty"`
}

// TypeLabel returns the declared type for diagnostics: the single type, the
// members of a type union joined by "|", or "" for an untyped schema.
func (s *Schema) TypeLabel() string {
	if len(s.Types) > 0 {
		return strings.Join(s.Types, "|")
	}
	return s.Type
}

// HasComposition reports whether any of allOf, anyOf, oneOf or not is present.
func (s *Schema) HasComposition() bool {
	return len(s.AllOf) > 0 || len(s.AnyOf) > 0 || len(s.OneOf) > 0 || s.Not != nil
}

// ComponentName returns the schema name a local reference points at, for
// example "Pet" for "#/components/schemas/Pet". Other references return "".
func ComponentName(ref string) string {
	if !strings.HasPrefix(ref, componentsSchemasPrefix) {
		return ""
	}
	return unescapePointer(strings.TrimPrefix(ref, componentsSchemasPrefix))
}

// unescapePointer decodes the JSON pointer escapes ~1 and ~0.
func unescapePointer(token string) string {
	if !strings.Contains(token, "~") {
		return token
	}
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(token)
}

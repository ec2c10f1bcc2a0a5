package contract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/openapi"
)

// mustParse loads an inline YAML or JSON document.
func mustParse(t *testing.T, doc string) *openapi.Document {
	t.Helper()
	parsed, err := openapi.ParseWithOptions(openapi.WithBytes([]byte(doc)))
	require.NoError(t, err)
	return parsed
}

// mustValidator builds a validator for an inline document.
func mustValidator(t *testing.T, doc string, opts ...Option) *Validator {
	t.Helper()
	v, err := New(mustParse(t, doc), opts...)
	require.NoError(t, err)
	return v
}

// mustSchemas builds a validator over a document whose components.schemas
// is the given JSON object. Tabs are replaced so that indented Go raw
// strings stay valid YAML.
func mustSchemas(t *testing.T, schemas string, opts ...Option) *Validator {
	t.Helper()
	return mustValidator(t, fmt.Sprintf(
		`{"openapi": "3.0.3", "info": {"title": "Schemas", "version": "1"}, "paths": {}, "components": {"schemas": %s}}`,
		strings.ReplaceAll(schemas, "\t", "  ")), opts...)
}

// mustSubject builds a validator with a single component schema named
// Subject and returns both.
func mustSubject(t *testing.T, schema string, opts ...Option) (*Validator, *openapi.Schema) {
	t.Helper()
	v := mustSchemas(t, `{"Subject": `+schema+`}`, opts...)
	return v, mustSchema(t, v, "Subject")
}

func mustSchema(t *testing.T, v *Validator, name string) *openapi.Schema {
	t.Helper()
	s, ok := v.Document().SchemaByName(name)
	require.True(t, ok, "schema %s not found", name)
	return s
}

// validateJSON validates a JSON instance in a request body context.
func validateJSON(v *Validator, schema *openapi.Schema, instance string) Errors {
	return v.Validate(NewContext().WithEntityType(EntityBody), schema, RawJSON(instance))
}

func messages(errs Errors) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message()
	}
	return out
}

func keys(errs Errors) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Context().Key()
	}
	return out
}

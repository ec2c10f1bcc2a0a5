package openapi

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/oaserrors"
)

// Helper to create a parsed document from YAML content
func mustParse(t *testing.T, yaml string) *Document {
	t.Helper()
	doc, err := ParseWithOptions(WithBytes([]byte(yaml)))
	require.NoError(t, err)
	return doc
}

const petstore = `
openapi: "3.0.3"
info:
  title: Petstore
  version: "1.0"
servers:
  - url: https://api.example.com/v1/
x-membrane-validation:
  requests: true
  responses: false
paths:
  /pets:
    parameters:
      - $ref: '#/components/parameters/Limit'
    get:
      operationId: listPets
      responses:
        "200":
          description: OK
          headers:
            X-Rate-Limit:
              required: true
              schema:
                type: integer
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Pet'
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Pet'
      responses:
        "201":
          $ref: '#/components/responses/Created'
components:
  parameters:
    Limit:
      name: limit
      in: query
      schema:
        type: integer
        maximum: 100
  responses:
    Created:
      description: created
  securitySchemes:
    key:
      type: apiKey
      in: query
      name: api_key
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        id:
          type: integer
          readOnly: true
        name:
          type: string
          maxLength: 20
        weight:
          type: number
          multipleOf: 0.1
          minimum: 0
          exclusiveMinimum: true
`

func TestParseWithOptions(t *testing.T) {
	t.Run("parses bytes", func(t *testing.T) {
		doc := mustParse(t, petstore)
		assert.Equal(t, "3.0.3", doc.OpenAPI)
		assert.Equal(t, "Petstore", doc.Title())
		assert.Equal(t, "/v1", doc.BasePath())
		require.Contains(t, doc.Paths, "/pets")

		pets := doc.Paths["/pets"]
		require.NotNil(t, pets.Get)
		require.NotNil(t, pets.Post)
		assert.Nil(t, pets.Put)
		assert.Equal(t, "listPets", pets.Operation("get").OperationID)
		assert.Len(t, pets.Operations(), 2)

		require.Len(t, pets.Parameters, 1)
		limit, err := doc.ResolveParameter(pets.Parameters[0])
		require.NoError(t, err)
		assert.Equal(t, "limit", limit.Name)
		assert.Equal(t, ParamInQuery, limit.In)
		assert.Equal(t, "100", limit.Schema.Maximum.String())
	})

	t.Run("parses JSON", func(t *testing.T) {
		doc, err := ParseWithOptions(WithBytes([]byte(`{"openapi":"3.1.0","info":{"title":"J","version":"1"},"paths":{}}`)))
		require.NoError(t, err)
		assert.Equal(t, "J", doc.Title())
	})

	t.Run("parses file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "api.yaml")
		require.NoError(t, os.WriteFile(path, []byte(petstore), 0o600))
		doc, err := ParseWithOptions(WithFilePath(path))
		require.NoError(t, err)
		assert.Equal(t, path, doc.SourcePath)
	})

	t.Run("parses reader with source name", func(t *testing.T) {
		doc, err := ParseWithOptions(WithReader(strings.NewReader(petstore)), WithSourceName("inline"))
		require.NoError(t, err)
		assert.Equal(t, "inline", doc.SourcePath)
	})

	t.Run("requires exactly one source", func(t *testing.T) {
		_, err := ParseWithOptions()
		assert.ErrorIs(t, err, oaserrors.ErrConfig)

		_, err = ParseWithOptions(WithBytes([]byte(petstore)), WithFilePath("x.yaml"))
		assert.ErrorIs(t, err, oaserrors.ErrConfig)
	})

	t.Run("rejects invalid YAML", func(t *testing.T) {
		_, err := ParseWithOptions(WithBytes([]byte("openapi: [unclosed")))
		assert.ErrorIs(t, err, oaserrors.ErrParse)
	})

	t.Run("rejects swagger 2.0", func(t *testing.T) {
		_, err := ParseWithOptions(WithBytes([]byte("swagger: \"2.0\"\ninfo: {title: x, version: '1'}\npaths: {}\n")))
		var pe *oaserrors.ParseError
		require.True(t, errors.As(err, &pe))
		assert.Contains(t, pe.Message, "swagger 2.0")
	})

	t.Run("rejects empty document", func(t *testing.T) {
		_, err := ParseWithOptions(WithBytes([]byte("  \n")))
		assert.ErrorIs(t, err, oaserrors.ErrParse)
	})

	t.Run("enforces document size limit", func(t *testing.T) {
		_, err := ParseWithOptions(WithBytes([]byte(petstore)), WithMaxDocumentSize(10))
		assert.ErrorIs(t, err, oaserrors.ErrResourceLimit)

		_, err = ParseWithOptions(WithReader(strings.NewReader(petstore)), WithMaxDocumentSize(10))
		assert.ErrorIs(t, err, oaserrors.ErrResourceLimit)

		_, err = ParseWithOptions(WithBytes([]byte(petstore)), WithMaxDocumentSize(0))
		assert.ErrorIs(t, err, oaserrors.ErrConfig)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ParseWithOptions(WithFilePath(filepath.Join(t.TempDir(), "nope.yaml")))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestSchemaDecoding(t *testing.T) {
	doc := mustParse(t, petstore)
	pet, name, ok := doc.ResolveSchema("#/components/schemas/Pet")
	require.True(t, ok)
	assert.Equal(t, "Pet", name)
	assert.Equal(t, TypeObject, pet.Type)
	assert.Equal(t, []string{"name"}, pet.Required)
	assert.True(t, pet.Properties["id"].ReadOnly)
	require.NotNil(t, pet.Properties["name"].MaxLength)
	assert.Equal(t, 20, *pet.Properties["name"].MaxLength)

	weight := pet.Properties["weight"]
	require.NotNil(t, weight.MultipleOf)
	assert.Equal(t, "0.1", weight.MultipleOf.String())
	assert.True(t, weight.ExclusiveMinimum)
	assert.True(t, weight.Minimum.IsZero())

	t.Run("3.1 type arrays and numeric exclusive bounds", func(t *testing.T) {
		doc := mustParse(t, `
openapi: "3.1.0"
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    MaybeName:
      type: [string, "null"]
    Mixed:
      type: [string, integer]
    OnlyNull:
      type: ["null"]
    Range:
      type: number
      minimum: 1
      exclusiveMinimum: 5
      exclusiveMaximum: 10.25
    Tuple:
      type: array
      prefixItems:
        - type: string
    Free:
      type: object
      additionalProperties: true
    Typed:
      type: object
      additionalProperties:
        type: integer
    Anything: true
    Nothing: false
    Choice:
      enum: [1, 2.5, "x", null]
`)
		s, _ := doc.SchemaByName("MaybeName")
		assert.Equal(t, TypeString, s.Type)
		assert.True(t, s.Nullable)

		s, _ = doc.SchemaByName("Mixed")
		assert.Empty(t, s.Type)
		assert.Equal(t, []string{"string", "integer"}, s.Types)
		assert.Equal(t, "string|integer", s.TypeLabel())

		s, _ = doc.SchemaByName("OnlyNull")
		assert.Equal(t, TypeNull, s.Type)

		s, _ = doc.SchemaByName("Range")
		assert.Equal(t, "5", s.Minimum.String())
		assert.True(t, s.ExclusiveMinimum)
		assert.Equal(t, "10.25", s.Maximum.String())
		assert.True(t, s.ExclusiveMaximum)

		s, _ = doc.SchemaByName("Tuple")
		assert.Len(t, s.PrefixItems, 1)
		assert.Nil(t, s.Items)

		s, _ = doc.SchemaByName("Free")
		require.NotNil(t, s.AdditionalPropertiesAllowed)
		assert.True(t, *s.AdditionalPropertiesAllowed)

		s, _ = doc.SchemaByName("Typed")
		require.NotNil(t, s.AdditionalProperties)
		assert.Equal(t, TypeInteger, s.AdditionalProperties.Type)

		s, _ = doc.SchemaByName("Anything")
		assert.False(t, s.HasComposition())
		s, _ = doc.SchemaByName("Nothing")
		assert.NotNil(t, s.Not)

		s, _ = doc.SchemaByName("Choice")
		assert.Equal(t, []any{json.Number("1"), json.Number("2.5"), "x", nil}, s.Enum)
	})

	t.Run("yaml anchors and merge keys", func(t *testing.T) {
		doc := mustParse(t, `
openapi: "3.0.0"
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Base: &base
      type: string
      minLength: 2
    Derived:
      <<: *base
      maxLength: 5
    Alias: *base
`)
		s, _ := doc.SchemaByName("Derived")
		assert.Equal(t, TypeString, s.Type)
		require.NotNil(t, s.MinLength)
		assert.Equal(t, 2, *s.MinLength)
		assert.Equal(t, 5, *s.MaxLength)

		s, _ = doc.SchemaByName("Alias")
		assert.Equal(t, 2, *s.MinLength)
	})
}

func TestValidationSettings(t *testing.T) {
	doc := mustParse(t, petstore)
	settings := doc.ValidationSettings()
	require.NotNil(t, settings.Requests)
	assert.True(t, *settings.Requests)
	require.NotNil(t, settings.Responses)
	assert.False(t, *settings.Responses)
	assert.Nil(t, settings.Details)
	assert.Nil(t, settings.Security)

	assert.Equal(t, []string{"api_key"}, doc.APIKeyQueryParameters())

	empty := mustParse(t, "openapi: 3.0.0\ninfo: {title: t, version: '1'}\npaths: {}\n")
	assert.Equal(t, ValidationSettings{}, empty.ValidationSettings())
}

func TestComponentName(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"#/components/schemas/Pet", "Pet"},
		{"#/components/schemas/a~1b~0c", "a/b~c"},
		{"#/components/parameters/Limit", ""},
		{"other.yaml#/Pet", ""},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, ComponentName(tt.ref))
		})
	}
}

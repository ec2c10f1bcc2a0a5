package openapi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/oaserrors"
)

func TestCheckReferences(t *testing.T) {
	tests := []struct {
		name       string
		schemas    string
		wantErr    bool
		isCircular bool
		contains   string
	}{
		{
			name: "recursive through properties is accepted",
			schemas: `
    Node:
      type: object
      properties:
        children:
          type: array
          items:
            $ref: '#/components/schemas/Node'
        parent:
          $ref: '#/components/schemas/Node'`,
		},
		{
			name: "self reference",
			schemas: `
    Loop:
      $ref: '#/components/schemas/Loop'`,
			wantErr:    true,
			isCircular: true,
			contains:   "Loop -> Loop",
		},
		{
			name: "two step cycle",
			schemas: `
    A:
      $ref: '#/components/schemas/B'
    B:
      $ref: '#/components/schemas/A'`,
			wantErr:    true,
			isCircular: true,
			contains:   "A -> B -> A",
		},
		{
			name: "cycle through allOf",
			schemas: `
    A:
      allOf:
        - $ref: '#/components/schemas/B'
    B:
      oneOf:
        - type: string
        - $ref: '#/components/schemas/A'`,
			wantErr:    true,
			isCircular: true,
		},
		{
			name: "unresolved reference",
			schemas: `
    A:
      type: object
      properties:
        b:
          $ref: '#/components/schemas/Missing'`,
			wantErr:  true,
			contains: "components.schemas.A",
		},
		{
			name: "external reference",
			schemas: `
    A:
      $ref: 'other.yaml#/components/schemas/B'`,
			wantErr:  true,
			contains: "external references are not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWithOptions(WithBytes([]byte(`
openapi: "3.0.0"
info: {title: t, version: "1"}
paths: {}
components:
  schemas:` + tt.schemas + "\n")))
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, oaserrors.ErrReference)
			assert.Equal(t, tt.isCircular, errors.Is(err, oaserrors.ErrCircularReference))
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestCheckReferences_Operations(t *testing.T) {
	_, err := ParseWithOptions(WithBytes([]byte(`
openapi: "3.0.0"
info: {title: t, version: "1"}
paths:
  /pets:
    get:
      parameters:
        - $ref: '#/components/parameters/Nope'
      responses:
        "200":
          $ref: '#/components/responses/Gone'
`)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "#/components/parameters/Nope (at paths./pets.get.parameters[0])")
	assert.Contains(t, err.Error(), "#/components/responses/Gone (at paths./pets.get.responses.200)")
}

func TestResolveChains(t *testing.T) {
	doc := &Document{Components: &Components{
		Parameters: map[string]*Parameter{
			"A": {Ref: "#/components/parameters/B"},
			"B": {Name: "b", In: ParamInQuery},
			"X": {Ref: "#/components/parameters/Y"},
			"Y": {Ref: "#/components/parameters/X"},
		},
		Headers: map[string]*Header{"H": {Required: true}},
	}}

	p, err := doc.ResolveParameter(&Parameter{Ref: "#/components/parameters/A"})
	require.NoError(t, err)
	assert.Equal(t, "b", p.Name)

	_, err = doc.ResolveParameter(&Parameter{Ref: "#/components/parameters/X"})
	assert.ErrorIs(t, err, oaserrors.ErrCircularReference)

	_, err = doc.ResolveParameter(&Parameter{Ref: "#/components/headers/H"})
	assert.ErrorIs(t, err, oaserrors.ErrReference)

	h, err := doc.ResolveHeader(&Header{Ref: "#/components/headers/H"})
	require.NoError(t, err)
	assert.True(t, h.Required)

	_, err = doc.ResolveRequestBody(&RequestBody{Ref: "#/components/requestBodies/None"})
	assert.ErrorIs(t, err, oaserrors.ErrReference)

	_, _, ok := doc.ResolveSchema("#/components/schemas/None")
	assert.False(t, ok)
}

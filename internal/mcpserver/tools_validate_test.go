package mcpserver

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petstore = `openapi: "3.0.3"
info:
  title: Petstore
  version: "1.0"
servers:
  - url: /api
components:
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
          minLength: 1
        tags:
          type: array
          items:
            type: string
paths:
  /pets:
    get:
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
            maximum: 100
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: "#/components/schemas/Pet"
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/Pet"
      responses:
        "201":
          description: created
`

func locations(out validateOutput) []string {
	var locs []string
	for _, v := range out.Violations {
		locs = append(locs, v.Location)
	}
	return locs
}

func TestValidateRequestTool(t *testing.T) {
	tests := []struct {
		name       string
		request    requestInput
		wantStatus int
		wantLocs   []string
	}{
		{
			name:    "valid",
			request: requestInput{Method: "get", Path: "/api/pets?limit=10"},
		},
		{
			name:       "query parameter",
			request:    requestInput{Method: "GET", Path: "/api/pets?limit=500"},
			wantStatus: 400,
			wantLocs:   []string{"REQUEST/QUERY_PARAMETER/limit"},
		},
		{
			name: "body",
			request: requestInput{
				Method:  "POST",
				Path:    "/api/pets",
				Headers: map[string]string{"content-type": "application/json"},
				Body:    `{"name": "", "tags": [1]}`,
			},
			wantStatus: 400,
			wantLocs:   []string{"REQUEST/BODY#/name", "REQUEST/BODY#/tags/0"},
		},
		{
			name:       "unknown path",
			request:    requestInput{Method: "GET", Path: "/api/owners"},
			wantStatus: 404,
			wantLocs:   []string{"REQUEST/PATH"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validateRequestInput{Spec: specInput{Content: petstore}, Request: tt.request}
			result, out, err := handleValidateRequest(context.Background(), &mcp.CallToolRequest{}, input)
			require.NoError(t, err)
			require.Nil(t, result)

			assert.Equal(t, "Petstore", out.API)
			assert.Equal(t, len(tt.wantLocs) == 0, out.Valid)
			assert.Equal(t, tt.wantStatus, out.Status)
			assert.ElementsMatch(t, tt.wantLocs, locations(out))
			assert.Equal(t, len(tt.wantLocs), out.ViolationCount)
		})
	}
}

func TestValidateRequestToolTemplate(t *testing.T) {
	input := validateRequestInput{Spec: specInput{Content: petstore}, Request: requestInput{Method: "GET", Path: "/api/pets"}}
	_, out, err := handleValidateRequest(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.Equal(t, "/pets", out.Template)
}

func TestValidateRequestToolPagination(t *testing.T) {
	input := validateRequestInput{
		Spec: specInput{Content: petstore},
		Request: requestInput{
			Method:  "POST",
			Path:    "/api/pets",
			Headers: map[string]string{"Content-Type": "application/json"},
			Body:    `{"name": "", "tags": [1, 2, 3]}`,
		},
		Offset: 1,
		Limit:  2,
	}
	_, out, err := handleValidateRequest(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.Equal(t, 4, out.ViolationCount)
	assert.Equal(t, 2, out.Returned)
	assert.Len(t, out.Violations, 2)
}

func TestValidateRequestToolErrors(t *testing.T) {
	tests := []struct {
		name  string
		input validateRequestInput
	}{
		{name: "missing spec", input: validateRequestInput{Request: requestInput{Method: "GET", Path: "/api/pets"}}},
		{name: "missing method", input: validateRequestInput{Spec: specInput{Content: petstore}, Request: requestInput{Path: "/api/pets"}}},
		{name: "relative path", input: validateRequestInput{Spec: specInput{Content: petstore}, Request: requestInput{Method: "GET", Path: "pets"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _, err := handleValidateRequest(context.Background(), &mcp.CallToolRequest{}, tt.input)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.True(t, result.IsError)
		})
	}
}

func TestValidateResponseTool(t *testing.T) {
	get := requestInput{Method: "GET", Path: "/api/pets"}
	json := map[string]string{"Content-Type": "application/json"}

	tests := []struct {
		name     string
		status   int
		headers  map[string]string
		body     string
		wantLocs []string
	}{
		{name: "valid", status: 200, headers: json, body: `[{"id": 1, "name": "Rex"}]`},
		{name: "item", status: 200, headers: json, body: `[{"id": "x", "name": "Rex"}]`, wantLocs: []string{"RESPONSE/BODY#/0/id"}},
		{name: "undeclared status", status: 404, wantLocs: []string{"RESPONSE/STATUS_CODE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validateResponseInput{
				Spec:    specInput{Content: petstore},
				Request: get,
				Status:  tt.status,
				Headers: tt.headers,
				Body:    tt.body,
			}
			result, out, err := handleValidateResponse(context.Background(), &mcp.CallToolRequest{}, input)
			require.NoError(t, err)
			require.Nil(t, result)
			assert.Equal(t, tt.wantLocs, locations(out))
			if len(tt.wantLocs) > 0 {
				assert.Equal(t, 500, out.Status)
				assert.Equal(t, 500, out.Violations[0].Status)
			}
		})
	}

	result, _, err := handleValidateResponse(context.Background(), &mcp.CallToolRequest{},
		validateResponseInput{Spec: specInput{Content: petstore}, Request: get, Status: 42})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestValidatePayloadTool(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		direction string
		wantLocs  []string
		wantType  string
	}{
		{name: "valid", payload: `{"name": "Rex"}`},
		{name: "read only in request", payload: `{"id": 1, "name": "Rex"}`, wantLocs: []string{"REQUEST/BODY#/id"}},
		{name: "read only in response", payload: `{"id": 1, "name": "Rex"}`, direction: "response"},
		{name: "missing name", payload: `{}`, direction: "Response", wantLocs: []string{"RESPONSE/BODY#/name"}},
		{name: "unparsable", payload: `{"name":`, wantLocs: []string{"REQUEST/BODY"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validatePayloadInput{
				Spec:      specInput{Content: petstore},
				Schema:    "Pet",
				Payload:   tt.payload,
				Direction: tt.direction,
			}
			result, out, err := handleValidatePayload(context.Background(), &mcp.CallToolRequest{}, input)
			require.NoError(t, err)
			require.Nil(t, result)
			assert.Equal(t, tt.wantLocs, locations(out))
			assert.Empty(t, out.Template)
		})
	}
}

func TestValidatePayloadToolComplexType(t *testing.T) {
	input := validatePayloadInput{Spec: specInput{Content: petstore}, Schema: "Pet", Payload: `{"name": 7}`}
	_, out, err := handleValidatePayload(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	require.Len(t, out.Violations, 1)
	assert.Equal(t, "Pet", out.Violations[0].ComplexType)
	assert.Equal(t, "string", out.Violations[0].SchemaType)
	assert.Equal(t, "schema violation", out.Violations[0].Kind)
}

func TestValidatePayloadToolErrors(t *testing.T) {
	tests := []struct {
		name  string
		input validatePayloadInput
	}{
		{name: "unknown schema", input: validatePayloadInput{Spec: specInput{Content: petstore}, Schema: "Owner", Payload: `{}`}},
		{name: "missing schema", input: validatePayloadInput{Spec: specInput{Content: petstore}, Payload: `{}`}},
		{name: "direction", input: validatePayloadInput{Spec: specInput{Content: petstore}, Schema: "Pet", Payload: `{}`, Direction: "sideways"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _, err := handleValidatePayload(context.Background(), &mcp.CallToolRequest{}, tt.input)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.True(t, result.IsError)
		})
	}
}

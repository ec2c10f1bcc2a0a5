package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oasguard/contract"
	"github.com/erraggy/oasguard/openapi"
)

type requestInput struct {
	Method  string            `json:"method"            jsonschema:"HTTP method, e.g. GET"`
	Path    string            `json:"path"              jsonschema:"Request path as received, including any base path and query string"`
	Headers map[string]string `json:"headers,omitempty" jsonschema:"Request headers, e.g. Content-Type"`
	Body    string            `json:"body,omitempty"    jsonschema:"Raw request body"`
}

type validateRequestInput struct {
	Spec    specInput    `json:"spec"             jsonschema:"The OAS document to validate against"`
	Request requestInput `json:"request"          jsonschema:"The HTTP request"`
	Offset  int          `json:"offset,omitempty" jsonschema:"Skip the first N violations (for pagination)"`
	Limit   int          `json:"limit,omitempty"  jsonschema:"Maximum number of violations to return (default 100)"`
}

type validateResponseInput struct {
	Spec    specInput         `json:"spec"              jsonschema:"The OAS document to validate against"`
	Request requestInput      `json:"request"           jsonschema:"The request the response answers; method and path select the operation"`
	Status  int               `json:"status"            jsonschema:"HTTP status code of the response"`
	Headers map[string]string `json:"headers,omitempty" jsonschema:"Response headers, e.g. Content-Type"`
	Body    string            `json:"body,omitempty"    jsonschema:"Raw response body"`
	Offset  int               `json:"offset,omitempty"  jsonschema:"Skip the first N violations (for pagination)"`
	Limit   int               `json:"limit,omitempty"   jsonschema:"Maximum number of violations to return (default 100)"`
}

type validatePayloadInput struct {
	Spec      specInput `json:"spec"                jsonschema:"The OAS document containing the schema"`
	Schema    string    `json:"schema"              jsonschema:"Name of a schema under components/schemas"`
	Payload   string    `json:"payload"             jsonschema:"JSON payload to validate"`
	Direction string    `json:"direction,omitempty" jsonschema:"request (default) or response"`
	Offset    int       `json:"offset,omitempty"    jsonschema:"Skip the first N violations (for pagination)"`
	Limit     int       `json:"limit,omitempty"     jsonschema:"Maximum number of violations to return (default 100)"`
}

type violation struct {
	Location    string `json:"location"`
	Message     string `json:"message"`
	Kind        string `json:"kind"`
	Status      int    `json:"status"`
	SchemaType  string `json:"schema_type,omitempty"`
	ComplexType string `json:"complex_type,omitempty"`
}

type validateOutput struct {
	Valid          bool        `json:"valid"`
	API            string      `json:"api"`
	Template       string      `json:"template,omitempty"`
	Status         int         `json:"status,omitempty"`
	ViolationCount int         `json:"violation_count"`
	Returned       int         `json:"returned"`
	Violations     []violation `json:"violations,omitempty"`
}

func handleValidateRequest(ctx context.Context, _ *mcp.CallToolRequest, input validateRequestInput) (*mcp.CallToolResult, validateOutput, error) {
	v, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	req, err := input.Request.build()
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	errs := v.ValidateRequest(req)
	return nil, summarize(v, req, errs, input.Offset, input.Limit), nil
}

func handleValidateResponse(ctx context.Context, _ *mcp.CallToolRequest, input validateResponseInput) (*mcp.CallToolResult, validateOutput, error) {
	if input.Status < 100 || input.Status > 599 {
		return errResult(fmt.Errorf("status must be a valid HTTP status code, got %d", input.Status)), validateOutput{}, nil
	}
	v, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	req, err := input.Request.build()
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	resp := &contract.Response{StatusCode: input.Status, Header: toHeader(input.Headers)}
	if input.Body != "" {
		resp.Body = []byte(input.Body)
	}
	errs := v.ValidateResponse(req, resp)
	return nil, summarize(v, req, errs, input.Offset, input.Limit), nil
}

func handleValidatePayload(ctx context.Context, _ *mcp.CallToolRequest, input validatePayloadInput) (*mcp.CallToolResult, validateOutput, error) {
	dir := contract.DirectionRequest
	switch strings.ToLower(input.Direction) {
	case "", "request":
	case "response":
		dir = contract.DirectionResponse
	default:
		return errResult(fmt.Errorf("direction must be request or response, got %q", input.Direction)), validateOutput{}, nil
	}
	if input.Schema == "" {
		return errResult(fmt.Errorf("schema is required")), validateOutput{}, nil
	}

	v, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}
	if _, ok := v.Document().SchemaByName(input.Schema); !ok {
		return errResult(fmt.Errorf("schema %q is not defined in components/schemas", input.Schema)), validateOutput{}, nil
	}

	vctx := contract.NewContext().WithDirection(dir).WithEntityType(contract.EntityBody)
	ref := &openapi.Schema{Ref: "#/components/schemas/" + input.Schema}
	errs := v.Validate(vctx, ref, contract.RawJSON(input.Payload))

	out := summarize(v, nil, errs, input.Offset, input.Limit)
	return nil, out, nil
}

// build turns the tool input into the request the validator expects.
func (r requestInput) build() (*contract.Request, error) {
	if r.Method == "" || r.Path == "" {
		return nil, fmt.Errorf("request method and path are required")
	}
	u, err := url.ParseRequestURI(r.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", r.Path, err)
	}
	req := &contract.Request{
		Method: strings.ToUpper(r.Method),
		Path:   u.Path,
		Query:  u.Query(),
		Header: toHeader(r.Headers),
	}
	if r.Body != "" {
		req.Body = []byte(r.Body)
	}
	return req, nil
}

func toHeader(m map[string]string) http.Header {
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}

func summarize(v *contract.Validator, req *contract.Request, errs contract.Errors, offset, limit int) validateOutput {
	out := validateOutput{
		Valid:          errs.Empty(),
		API:            v.Document().Title(),
		Status:         errs.StatusCode(),
		ViolationCount: errs.Len(),
	}
	if req != nil {
		if m, failed := v.MatchOperation(contract.NewContext(), req); failed.Empty() {
			out.Template = m.Template
		}
	}

	all := makeSlice[violation](errs.Len())
	for _, e := range errs {
		c := e.Context()
		all = append(all, violation{
			Location:    c.Key(),
			Message:     e.Message(),
			Kind:        e.Kind().String(),
			Status:      e.StatusCode(),
			SchemaType:  c.SchemaType(),
			ComplexType: c.ComplexType(),
		})
	}
	out.Violations = paginate(all, offset, limit)
	out.Returned = len(out.Violations)
	return out
}

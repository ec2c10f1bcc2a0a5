package contract

import (
	"fmt"
	"strings"

	"github.com/erraggy/oasguard/openapi"
)

// Match is the operation a request was routed to.
type Match struct {
	// Template is the matched URI template, e.g. "/pets/{id}"
	Template string
	// PathItem is the document's path item for Template
	PathItem *openapi.PathItem
	// Operation is the operation declared for the request method
	Operation *openapi.Operation
	// PathParams holds the raw values of the template variables
	PathParams map[string]string
}

type phase int

const (
	phaseMatchOperation phase = iota
	phaseRequest
	phaseResponse
	phaseDone
)

// ValidateRequest validates a request: path parameters, query parameters,
// header parameters and the body. Every phase runs even if an earlier one
// found violations.
func (v *Validator) ValidateRequest(req *Request) Errors {
	return v.ValidateExchange(req, nil)
}

// ValidateResponse validates the response to req: the status code, the
// declared response headers and the body. All violations have status 500.
func (v *Validator) ValidateResponse(req *Request, resp *Response) Errors {
	if resp == nil {
		return Errors{configError(v.rootContext(req, DirectionResponse), "No response to validate.")}
	}
	return v.ValidateExchange(req, resp)
}

// ValidateExchange runs the request phase when resp is nil and the response
// phase otherwise.
func (v *Validator) ValidateExchange(req *Request, resp *Response) Errors {
	dir := DirectionRequest
	if resp != nil {
		dir = DirectionResponse
	}
	ctx := v.rootContext(req, dir)

	var (
		errs  Errors
		match *Match
	)
	for state := phaseMatchOperation; state != phaseDone; {
		switch state {
		case phaseMatchOperation:
			var failed Errors
			match, failed = v.MatchOperation(ctx, req)
			if !failed.Empty() {
				errs.AddAll(failed)
				state = phaseDone
				continue
			}
			ctx = ctx.WithURITemplate(match.Template)
			if resp == nil {
				state = phaseRequest
			} else {
				state = phaseResponse
			}

		case phaseRequest:
			if req.BodyErr != nil {
				// the body is incomplete; nothing else is checked
				errs.Add(bodyReadError(ctx, req.BodyErr))
				state = phaseDone
				continue
			}
			errs.AddAll(v.ValidatePathParameters(ctx, match))
			errs.AddAll(v.ValidateQueryParameters(ctx, match, req.Query))
			errs.AddAll(v.ValidateHeaderParameters(ctx, match, req.Header))
			errs.AddAll(v.ValidateRequestBody(ctx, match, req))
			state = phaseDone

		case phaseResponse:
			errs.AddAll(v.validateResponsePhase(ctx, match, resp))
			state = phaseDone
		}
	}
	return errs
}

func (v *Validator) rootContext(req *Request, dir Direction) Context {
	return NewContext().
		WithMethod(strings.ToUpper(req.Method)).
		WithPath(req.Path).
		WithDirection(dir)
}

// MatchOperation finds the path template and the operation for the request.
// An unknown path yields one KindNotFound error with status 404, a method
// without operation one KindMethodNotAllowed error with status 405.
func (v *Validator) MatchOperation(ctx Context, req *Request) (*Match, Errors) {
	path, ok := v.stripBasePath(req.Path)
	if !ok {
		return nil, Errors{pathNotFound(ctx, req.Path)}
	}
	tmpl, params, found := v.matchers.Match(path)
	if !found {
		return nil, Errors{pathNotFound(ctx, req.Path)}
	}
	item := v.doc.Paths[tmpl]
	op := item.Operation(req.Method)
	if op == nil {
		mctx := ctx.WithURITemplate(tmpl).WithEntityType(EntityMethod).WithEntity(req.Method).WithStatusCode(405)
		return nil, Errors{newKindError(mctx, KindMethodNotAllowed,
			fmt.Sprintf("Method %s is not allowed for path %s.", strings.ToUpper(req.Method), req.Path))}
	}
	return &Match{Template: tmpl, PathItem: item, Operation: op, PathParams: params}, nil
}

func pathNotFound(ctx Context, path string) ValidationError {
	nctx := ctx.WithEntityType(EntityPath).WithEntity(path).WithStatusCode(404)
	return newKindError(nctx, KindNotFound, fmt.Sprintf("Path %s is invalid.", path))
}

// stripBasePath removes the configured base path. Paths outside the base
// path do not belong to the API.
func (v *Validator) stripBasePath(path string) (string, bool) {
	if v.basePath == "" {
		return path, true
	}
	rest, ok := strings.CutPrefix(path, v.basePath)
	if !ok {
		return "", false
	}
	if rest == "" {
		return "/", true
	}
	if !strings.HasPrefix(rest, "/") {
		return "", false
	}
	return rest, true
}

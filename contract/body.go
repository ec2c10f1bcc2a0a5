package contract

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/erraggy/oasguard/internal/httputil"
	"github.com/erraggy/oasguard/openapi"
)

// ValidateRequestBody validates the request body against the content entry
// of the operation's requestBody that matches the request Content-Type.
func (v *Validator) ValidateRequestBody(ctx Context, m *Match, req *Request) Errors {
	if req.BodyErr != nil {
		return Errors{bodyReadError(ctx, req.BodyErr)}
	}
	if m.Operation.RequestBody == nil {
		return nil
	}
	bctx := ctx.WithEntityType(EntityBody)
	rb, err := v.doc.ResolveRequestBody(m.Operation.RequestBody)
	if err != nil {
		return Errors{configError(bctx, fmt.Sprintf("Cannot resolve request body: %v", err))}
	}
	if !hasBody(req.Body) {
		if rb.Required {
			return Errors{NewError(bctx, "Request body is required.")}
		}
		return nil
	}
	return v.validateContent(ctx, rb.Content, req.ContentType(), req.Body)
}

// ValidateResponseBody validates the response body against the response
// declared for its status code.
func (v *Validator) ValidateResponseBody(ctx Context, m *Match, resp *Response) Errors {
	decl, errs := v.responseFor(ctx, m, resp.StatusCode)
	if decl == nil {
		return errs
	}
	return v.validateResponseContent(ctx, decl, resp)
}

// validateResponsePhase checks status code, headers and body of a response.
func (v *Validator) validateResponsePhase(ctx Context, m *Match, resp *Response) Errors {
	decl, errs := v.responseFor(ctx, m, resp.StatusCode)
	if decl == nil {
		return errs
	}
	errs.AddAll(v.ValidateResponseHeaders(ctx, decl, resp.Header))
	errs.AddAll(v.validateResponseContent(ctx, decl, resp))
	return errs
}

func (v *Validator) validateResponseContent(ctx Context, decl *openapi.Response, resp *Response) Errors {
	if resp.BodyErr != nil {
		return Errors{bodyReadError(ctx, resp.BodyErr)}
	}
	if len(decl.Content) == 0 || !hasBody(resp.Body) {
		return nil
	}
	return v.validateContent(ctx, decl.Content, resp.ContentType(), resp.Body)
}

// responseFor returns the resolved response declared for status: the exact
// code first, then the range ("2XX"), then "default".
func (v *Validator) responseFor(ctx Context, m *Match, status int) (*openapi.Response, Errors) {
	sctx := ctx.WithEntityType(EntityStatusCode).WithEntity(strconv.Itoa(status))

	var decl *openapi.Response
	for _, key := range httputil.ResponseKeys(status) {
		if r, ok := m.Operation.Responses[key]; ok && r != nil {
			decl = r
			break
		}
	}
	if decl == nil {
		return nil, Errors{NewError(sctx, fmt.Sprintf("Status code %d is not declared for %s %s.", status, ctx.method, m.Template))}
	}
	resolved, err := v.doc.ResolveResponse(decl)
	if err != nil {
		return nil, Errors{configError(sctx, fmt.Sprintf("Cannot resolve response: %v", err))}
	}
	return resolved, nil
}

// validateContent selects the media type entry and validates the body.
func (v *Validator) validateContent(ctx Context, content map[string]*openapi.MediaType, mediaType string, body any) Errors {
	if len(content) == 0 {
		return nil
	}
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	declared, media := selectMediaType(content, mediaType)
	if media == nil {
		mctx := ctx.WithEntityType(EntityMediaType).WithEntity(mediaType)
		if ctx.direction == DirectionRequest {
			mctx = mctx.WithStatusCode(415)
		}
		return Errors{NewError(mctx, fmt.Sprintf("The media type %s is not allowed. Declared media types are: %s.",
			mediaType, strings.Join(slices.Sorted(maps.Keys(content)), ", ")))}
	}
	if media.Schema == nil {
		return nil
	}

	bctx := ctx.WithEntityType(EntityBody)
	switch {
	case IsJSONMediaType(mediaType):
		return v.Validate(bctx, media.Schema, body)
	case isXMLMediaType(mediaType), isFormMediaType(mediaType):
		return Errors{newKindError(bctx, KindNotImplemented,
			fmt.Sprintf("Validation of %s bodies is not implemented", mediaType))}
	default:
		v.logger.Debug("body not validated",
			"mediaType", mediaType,
			"declared", declared,
			"template", ctx.uriTemplate)
		return nil
	}
}

// selectMediaType finds the content entry for mediaType: an exact match,
// then "type/*", then "*/*".
func selectMediaType(content map[string]*openapi.MediaType, mediaType string) (string, *openapi.MediaType) {
	if media, ok := content[mediaType]; ok && media != nil {
		return mediaType, media
	}
	for declared, media := range content {
		if media != nil && strings.EqualFold(declared, mediaType) {
			return declared, media
		}
	}
	if major, _, ok := strings.Cut(mediaType, "/"); ok {
		if media, ok := content[major+"/*"]; ok && media != nil {
			return major + "/*", media
		}
	}
	if media, ok := content["*/*"]; ok && media != nil {
		return "*/*", media
	}
	return "", nil
}

// IsJSONMediaType reports whether a media type carries JSON, including
// suffix types such as application/problem+json.
func IsJSONMediaType(mt string) bool {
	mt = strings.ToLower(mt)
	return mt == "application/json" || strings.HasSuffix(mt, "+json") || strings.HasSuffix(mt, "/json")
}

func isXMLMediaType(mt string) bool {
	mt = strings.ToLower(mt)
	return mt == "application/xml" || mt == "text/xml" || strings.HasSuffix(mt, "+xml")
}

func isFormMediaType(mt string) bool {
	mt = strings.ToLower(mt)
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}

// bodyReadError describes a body that could not be read. A body cut off at
// a size limit is KindBodyTooLarge, with status 413 for requests; any other
// failure is KindParse.
func bodyReadError(ctx Context, err error) ValidationError {
	bctx := ctx.WithEntityType(EntityBody)
	label := "Request"
	if ctx.direction == DirectionResponse {
		label = "Response"
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		if ctx.direction == DirectionRequest {
			bctx = bctx.WithStatusCode(http.StatusRequestEntityTooLarge)
		}
		return newKindError(bctx, KindBodyTooLarge,
			fmt.Sprintf("%s body exceeds the limit of %d bytes.", label, tooLarge.Limit))
	}
	return newKindError(bctx, KindParse, fmt.Sprintf("%s body cannot be read: %v", label, err))
}

package contract

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// Request is the part of an HTTP request the validator looks at.
type Request struct {
	// Method is the HTTP method, e.g. "POST"
	Method string
	// Path is the request path as received, including any base path
	Path string
	// Query holds the decoded query parameters
	Query url.Values
	// Header holds the request headers
	Header http.Header
	// Body is the raw body ([]byte, RawJSON, io.Reader) or an already
	// parsed JSON value. nil means the request has no body.
	Body any

	// BodyErr records a failure to read the body, e.g. an
	// *http.MaxBytesError when the body was cut off at a size limit
	BodyErr error
}

// NewRequest captures r for validation. The body is read completely and
// r.Body is replaced with a reader over the same bytes, so the request can
// still be forwarded afterwards.
func NewRequest(r *http.Request) *Request {
	req := &Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header,
	}
	if r.Body != nil && r.Body != http.NoBody {
		data, err := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(data))
		req.BodyErr = err
		if len(data) > 0 {
			req.Body = data
		}
	}
	return req
}

// BodyErrors reports a body that could not be read completely as one
// violation. A body cut off by http.MaxBytesReader yields a
// KindBodyTooLarge error with status 413.
func (r *Request) BodyErrors() Errors {
	if r.BodyErr == nil {
		return nil
	}
	ctx := NewContext().WithMethod(strings.ToUpper(r.Method)).WithPath(r.Path)
	return Errors{bodyReadError(ctx, r.BodyErr)}
}

// ContentType returns the declared media type without parameters.
func (r *Request) ContentType() string {
	return mediaType(r.Header)
}

// Response is the part of an HTTP response the validator looks at.
type Response struct {
	// StatusCode is the returned HTTP status
	StatusCode int
	// Header holds the response headers
	Header http.Header
	// Body is the raw body or an already parsed JSON value; nil means none
	Body any
	// BodyErr records a failure to read the body
	BodyErr error
}

// NewResponse captures r for validation. Like NewRequest it leaves a
// readable copy of the body in r.Body.
func NewResponse(r *http.Response) *Response {
	resp := &Response{
		StatusCode: r.StatusCode,
		Header:     r.Header,
	}
	if r.Body != nil && r.Body != http.NoBody {
		data, err := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(data))
		resp.BodyErr = err
		if len(data) > 0 {
			resp.Body = data
		}
	}
	return resp
}

// ContentType returns the declared media type without parameters.
func (r *Response) ContentType() string {
	return mediaType(r.Header)
}

func mediaType(h http.Header) string {
	ct := h.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}

// hasBody reports whether a body value carries any content.
func hasBody(body any) bool {
	switch b := body.(type) {
	case nil:
		return false
	case []byte:
		return len(b) > 0
	case RawJSON:
		return len(b) > 0
	}
	return !IsAbsent(body)
}

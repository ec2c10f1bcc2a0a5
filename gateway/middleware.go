package gateway

import (
	"bytes"
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/erraggy/oasguard/contract"
	"github.com/erraggy/oasguard/openapi"
)

// RequestIDHeader carries the id correlating log lines of one exchange.
const RequestIDHeader = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestID returns the request id stored by the middleware, or "".
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Middleware validates exchanges against the engine held by a Store.
type Middleware struct {
	store   *Store
	metrics *Metrics
	logger  openapi.Logger
}

// NewMiddleware returns a Middleware. metrics may be nil.
func NewMiddleware(store *Store, metrics *Metrics, logger openapi.Logger) *Middleware {
	if logger == nil {
		logger = openapi.NopLogger{}
	}
	return &Middleware{store: store, metrics: metrics, logger: logger}
}

// Wrap returns a handler that validates the request before passing it to
// next and, when response validation is on, validates the response before
// it reaches the client. Rejected requests never reach next.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))
		w.Header().Set(RequestIDHeader, id)

		// one engine for the whole exchange, even across a reload
		engine := m.store.Load()
		log := m.logger.With("api", engine.Title, "request_id", id)

		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic while validating",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				InternalProblem(engine.Title).Write(w)
			}
		}()

		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, engine.MaxBodySize)
		}
		req := contract.NewRequest(r)
		if errs := req.BodyErrors(); !errs.Empty() {
			log.Info("request body rejected", "method", r.Method, "path", r.URL.Path, "error", req.BodyErr)
			NewProblem(errs, contract.DirectionRequest, engine.Settings.Details).Write(w)
			return
		}
		if engine.Settings.Requests {
			errs := m.validate(engine, req, nil)
			if !errs.Empty() {
				log.Info("request rejected", "method", r.Method, "path", r.URL.Path, "violations", errs.Len())
				NewProblem(errs, contract.DirectionRequest, engine.Settings.Details).Write(w)
				return
			}
		}

		if !engine.Settings.Responses {
			next.ServeHTTP(w, r)
			return
		}

		rec := newRecorder(engine.MaxBodySize)
		next.ServeHTTP(rec, r)

		resp := &contract.Response{StatusCode: rec.status, Header: rec.header, BodyErr: rec.err}
		if rec.body.Len() > 0 && rec.err == nil {
			resp.Body = rec.body.Bytes()
		}
		errs := m.validate(engine, req, resp)
		if !errs.Empty() {
			log.Warn("response rejected", "method", r.Method, "path", r.URL.Path,
				"status", rec.status, "violations", errs.Len())
			NewProblem(errs, contract.DirectionResponse, engine.Settings.Details).Write(w)
			return
		}
		rec.flush(w)
	})
}

func (m *Middleware) validate(engine *Engine, req *contract.Request, resp *contract.Response) contract.Errors {
	start := time.Now()
	errs := engine.Validator.ValidateExchange(req, resp)
	if m.metrics != nil {
		dir := contract.DirectionRequest
		if resp != nil {
			dir = contract.DirectionResponse
		}
		m.metrics.Observe(engine.Title, req.Method, templateOf(engine.Validator, req, errs), dir, errs, time.Since(start))
	}
	return errs
}

// templateOf finds the URI template for metric labels.
func templateOf(v *contract.Validator, req *contract.Request, errs contract.Errors) string {
	for _, e := range errs {
		if t := e.Context().URITemplate(); t != "" {
			return t
		}
	}
	if match, failed := v.MatchOperation(contract.NewContext(), req); failed.Empty() {
		return match.Template
	}
	return ""
}

// recorder buffers a response until it has been validated. Writes past
// limit are dropped and recorded in err.
type recorder struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
	limit       int64
	err         error
}

func newRecorder(limit int64) *recorder {
	return &recorder{header: make(http.Header), status: http.StatusOK, limit: limit}
}

func (r *recorder) Header() http.Header {
	return r.header
}

func (r *recorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.status = code
	r.wroteHeader = true
}

func (r *recorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	if r.err != nil {
		return len(b), nil
	}
	if int64(r.body.Len())+int64(len(b)) > r.limit {
		r.err = &http.MaxBytesError{Limit: r.limit}
		r.body.Reset()
		return len(b), nil
	}
	return r.body.Write(b)
}

// flush copies the buffered response to w.
func (r *recorder) flush(w http.ResponseWriter) {
	dst := w.Header()
	for k, vs := range r.header {
		dst[k] = vs
	}
	w.WriteHeader(r.status)
	_, _ = w.Write(r.body.Bytes())
}

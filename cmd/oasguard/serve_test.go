package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/gateway"
	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/openapi"
)

type upstreamCall struct {
	path      string
	forwarded string
}

func newUpstream(t *testing.T, calls *atomic.Int32, last *atomic.Pointer[upstreamCall]) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		last.Store(&upstreamCall{path: r.URL.RequestURI(), forwarded: r.Header.Get("X-Forwarded-For")})
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			return
		}
		_, _ = io.WriteString(w, `[{"id": 1, "name": "Rex"}]`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestGateway(t *testing.T, upstream string) *gatewayServer {
	t.Helper()
	cfg := &gateway.Config{Spec: writeFile(t, "api.yaml", petstore), Upstream: upstream}
	gw, err := newGatewayServer(cfg, openapi.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(gw.close)
	return gw
}

func TestGatewayProxy(t *testing.T) {
	var calls atomic.Int32
	var last atomic.Pointer[upstreamCall]
	upstream := newUpstream(t, &calls, &last)
	gw := newTestGateway(t, upstream.URL)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantCalled bool
	}{
		{name: "valid get", method: http.MethodGet, target: "/api/pets?limit=5", wantStatus: http.StatusOK, wantCalled: true},
		{name: "valid post", method: http.MethodPost, target: "/api/pets", body: `{"name": "Rex"}`, wantStatus: http.StatusCreated, wantCalled: true},
		{name: "invalid query", method: http.MethodGet, target: "/api/pets?limit=500", wantStatus: http.StatusBadRequest},
		{name: "invalid body", method: http.MethodPost, target: "/api/pets", body: `{"name": ""}`, wantStatus: http.StatusBadRequest},
		{name: "unknown path", method: http.MethodGet, target: "/api/owners", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := calls.Load()
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.target, body)
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			gw.handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(gateway.RequestIDHeader))
			if tt.wantCalled {
				assert.Equal(t, before+1, calls.Load())
				assert.Equal(t, tt.target, last.Load().path)
				assert.NotEmpty(t, last.Load().forwarded)
			} else {
				assert.Equal(t, before, calls.Load())
				assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestGatewayHealth(t *testing.T) {
	gw := newTestGateway(t, "http://127.0.0.1:1")

	rec := httptest.NewRecorder()
	gw.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Petstore", body["api"])
}

func TestGatewayMetrics(t *testing.T) {
	var calls atomic.Int32
	var last atomic.Pointer[upstreamCall]
	upstream := newUpstream(t, &calls, &last)
	gw := newTestGateway(t, upstream.URL)

	gw.handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/pets?limit=500", nil))

	rec := httptest.NewRecorder()
	gw.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "oasguard_validation_messages_total")
	assert.Contains(t, rec.Body.String(), `location="REQUEST/QUERY_PARAMETER/limit"`)
	assert.Zero(t, calls.Load())
}

func TestGatewayUpstreamDown(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	gw := newTestGateway(t, down.URL)

	rec := httptest.NewRecorder()
	gw.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pets", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "/problems/upstream")
}

func TestGatewayServerErrors(t *testing.T) {
	spec := writeFile(t, "api.yaml", petstore)

	_, err := newGatewayServer(&gateway.Config{Spec: spec}, openapi.NopLogger{})
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrConfig)

	_, err = newGatewayServer(&gateway.Config{Spec: "/nonexistent/api.yaml", Upstream: "http://localhost:9000"}, openapi.NopLogger{})
	assert.Error(t, err)
}

func TestGatewayReloadWatcher(t *testing.T) {
	cfg := &gateway.Config{Spec: writeFile(t, "api.yaml", petstore), Upstream: "http://localhost:9000"}
	cfg.Reload.Enabled = true
	gw, err := newGatewayServer(cfg, openapi.NopLogger{})
	require.NoError(t, err)
	require.NotNil(t, gw.watcher)
	gw.close()
}

func TestRunServeShutdown(t *testing.T) {
	spec := writeFile(t, "api.yaml", petstore)
	config := writeFile(t, "gateway.yaml", "spec: "+spec+"\nupstream: http://localhost:9000\nlisten: 127.0.0.1:0\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, runServe(ctx, &serveFlags{config: config}))
}

func TestRunServeConfigError(t *testing.T) {
	t.Setenv("OASGUARD_SPEC", "")
	err := runServe(context.Background(), &serveFlags{config: writeFile(t, "gateway.yaml", "listen: \"x\"\n")})
	require.Error(t, err)
	assert.ErrorIs(t, err, oaserrors.ErrConfig)
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/erraggy/oasguard"
	"github.com/erraggy/oasguard/gateway"
	"github.com/erraggy/oasguard/internal/zaplog"
	"github.com/erraggy/oasguard/oaserrors"
	"github.com/erraggy/oasguard/openapi"
)

const shutdownTimeout = 10 * time.Second

type serveFlags struct {
	config string
	listen string
	debug  bool
}

func newServeCmd() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the validating reverse proxy",
		Long: `Run a reverse proxy that validates every exchange against an OpenAPI
document before it is forwarded.

Invalid requests are answered with an application/problem+json document and
never reach the upstream. With response validation on, an invalid upstream
response is replaced by a 500 problem.

The proxy also serves /metrics (Prometheus) and /healthz.

Examples:
  # Configuration file
  oasguard serve --config gateway.yaml

  # Environment only
  OASGUARD_SPEC=api.yaml OASGUARD_UPSTREAM=http://localhost:9000 oasguard serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.config, "config", "c", "", "gateway configuration file (YAML)")
	f.StringVarP(&flags.listen, "listen", "l", "", "override the listen address")
	f.BoolVar(&flags.debug, "debug", false, "development logging at debug level")

	return cmd
}

func runServe(ctx context.Context, flags *serveFlags) error {
	zl, err := zaplog.NewDefault(flags.debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := zaplog.New(zl)

	cfg, err := gateway.LoadConfig(flags.config)
	if err != nil {
		return err
	}
	if flags.listen != "" {
		cfg.Listen = flags.listen
	}

	gw, err := newGatewayServer(cfg, logger)
	if err != nil {
		return err
	}
	defer gw.close()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           gw.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if gw.watcher != nil {
		go func() {
			if err := gw.watcher.Run(ctx); err != nil {
				logger.Warn("watcher stopped", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", "config", cfg.String(), "api", gw.store.Load().Title, "version", oasguard.Version())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// gatewayServer is the wired proxy: engine store, metrics, router and the
// optional document watcher.
type gatewayServer struct {
	store   *gateway.Store
	metrics *gateway.Metrics
	handler http.Handler
	watcher *gateway.Watcher
}

func newGatewayServer(cfg *gateway.Config, logger openapi.Logger) (*gatewayServer, error) {
	if cfg.Upstream == "" {
		return nil, &oaserrors.ConfigError{Option: "upstream", Message: "required to serve"}
	}
	target, err := url.Parse(cfg.Upstream)
	if err != nil {
		return nil, &oaserrors.ConfigError{Option: "upstream", Value: cfg.Upstream, Message: "invalid URL", Cause: err}
	}

	engine, err := gateway.LoadEngine(cfg, logger)
	if err != nil {
		return nil, err
	}
	gw := &gatewayServer{
		store:   gateway.NewStore(engine),
		metrics: gateway.NewMetrics(nil),
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("upstream request failed", "method", r.Method, "path", r.URL.Path,
				"request_id", gateway.RequestID(r.Context()), "error", err)
			problem := &gateway.Problem{
				Type:   "/problems/upstream",
				Title:  "Bad gateway",
				Status: http.StatusBadGateway,
				Detail: "upstream " + target.Host + " is not reachable",
			}
			problem.Write(w)
		},
	}
	mw := gateway.NewMiddleware(gw.store, gw.metrics, logger)

	router := mux.NewRouter()
	router.Handle("/metrics", gw.metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", gw.health).Methods(http.MethodGet)
	router.PathPrefix("/").Handler(mw.Wrap(proxy))
	gw.handler = router

	if cfg.Reload.Enabled {
		w, err := gateway.NewWatcher(cfg, gw.store, logger)
		if err != nil {
			return nil, err
		}
		gw.watcher = w
	}
	return gw, nil
}

func (g *gatewayServer) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"api":     g.store.Load().Title,
		"version": oasguard.Version(),
	})
}

func (g *gatewayServer) close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

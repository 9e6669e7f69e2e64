package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/navrouter/internal/config"
	"github.com/vango-dev/navrouter/internal/errors"
	"github.com/vango-dev/navrouter/pkg/location"
	"github.com/vango-dev/navrouter/pkg/manifest"
	"github.com/vango-dev/navrouter/pkg/routepath"
	"github.com/vango-dev/navrouter/pkg/router"
	"github.com/vango-dev/navrouter/pkg/telemetry"
	"github.com/vango-dev/navrouter/pkg/transition"
	"github.com/vango-dev/navrouter/pkg/wsnav"
)

// loadConfig reads path, which may name navrouter.json or its directory.
// A directory without navrouter.json yields the defaults.
func loadConfig(path string) (*config.Config, error) {
	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		return config.LoadFile(path)
	}
	if config.Exists(path) {
		return config.Load(path)
	}

	cfg := config.New()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from the log section.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// newStore returns the content store named by the content section.
func newStore(cfg *config.Config) manifest.Store {
	if cfg.UsesS3() {
		client := manifest.NewS3Client(manifest.S3Options{
			Region:   cfg.Content.S3.Region,
			Endpoint: cfg.Content.S3.Endpoint,
		})
		return manifest.NewS3Store(client, cfg.Content.S3.Bucket, cfg.Content.S3.Prefix)
	}
	dir := cfg.Content.Dir
	if cfg.Path() != "" {
		dir = cfg.ContentPath()
	}
	return manifest.NewDirStore(filepath.Clean(dir))
}

// loadRoutes loads the manifest from the store and builds the router.
func loadRoutes(ctx context.Context, cfg *config.Config, store manifest.Store) (*manifest.Manifest, *router.Router, error) {
	m, err := manifest.Load(ctx, store, cfg.Routes.Manifest)
	if err != nil {
		return nil, nil, err
	}
	routes, err := manifestRouter(m, cfg.Routes.AllowPartial)
	if err != nil {
		return nil, nil, err
	}
	return m, routes, nil
}

func manifestRouter(m *manifest.Manifest, allowPartial bool) (*router.Router, error) {
	var opts []router.Option
	if allowPartial {
		opts = append(opts, router.WithPartialMatch())
	}
	return m.Router(opts...)
}

// app is a configured server: routes, view loader, telemetry and the
// thin-client bridge.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	routes   *router.Router
	loader   *manifest.Loader
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	tracing  *telemetry.Tracing
	nav      *wsnav.Server
}

func newApp(ctx context.Context, cfg *config.Config, store manifest.Store, logger *slog.Logger) (*app, error) {
	m, routes, err := loadRoutes(ctx, cfg, store)
	if err != nil {
		return nil, err
	}
	logger.Info("routes loaded", "count", routes.Len(), "manifest", cfg.Routes.Manifest)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		routes:   routes,
		registry: prometheus.NewRegistry(),
	}

	a.loader = manifest.NewLoader(store,
		manifest.WithContext(ctx),
		manifest.WithRetry(2, 200*time.Millisecond),
		manifest.WithTimeout(10*time.Second),
		manifest.WithLoaderLogger(logger),
	)
	go func() {
		if err := a.loader.Preload(ctx, m.Views()...); err != nil {
			logger.Warn("view preload failed", "error", err)
		}
	}()

	var observers telemetry.Observers
	var recorder wsnav.Recorder
	if cfg.Telemetry.Metrics {
		a.metrics = telemetry.NewMetrics(
			telemetry.WithNamespace(cfg.Telemetry.Namespace),
			telemetry.WithRegistry(a.registry),
		)
		observers = append(observers, a.metrics)
		recorder = a.metrics
	}
	if cfg.Telemetry.Tracing {
		a.tracing = telemetry.NewTracing(
			telemetry.WithTracerName(cfg.Telemetry.TracerName),
			telemetry.WithParentContext(ctx),
		)
		observers = append(observers, a.tracing)
	}

	var observer transition.Observer
	if len(observers) > 0 {
		observer = observers
	}
	a.nav = wsnav.NewServer(wsnav.Config{
		Routes:   routes,
		Renderer: a.loader,
		Origin:   cfg.Origin,
		Observer: observer,
		Recorder: recorder,
		Logger:   logger,
	})
	return a, nil
}

// Handler returns the HTTP handler serving the bridge, diagnostics and the
// page shell.
func (a *app) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(a.logger))
	r.Use(middleware.Recoverer)

	r.Get(a.cfg.Server.WSPath, a.nav.ServeHTTP)
	if a.metrics != nil {
		r.Method(http.MethodGet, a.cfg.Server.MetricsPath, telemetry.Handler(a.registry))
	}
	r.Get("/_nav/match", a.handleMatch)
	r.Get("/*", a.handleShell)
	return r
}

// requestLogger logs each request at debug level through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// matchResult describes the route selected for a URL.
type matchResult struct {
	URL        string            `json:"url"`
	Path       string            `json:"path"`
	Query      map[string]string `json:"query"`
	Hash       string            `json:"hash,omitempty"`
	Route      string            `json:"route,omitempty"`
	Default    bool              `json:"default,omitempty"`
	Rank       string            `json:"rank,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
	View       string            `json:"view,omitempty"`
	Candidates []string          `json:"candidates,omitempty"`
}

func describeMatch(routes *router.Router, loc location.Location) matchResult {
	res := matchResult{
		URL:   loc.URL,
		Path:  loc.Path,
		Query: loc.Query,
		Hash:  loc.Hash,
	}

	sel := routes.Select(loc.Path)
	if !sel.Empty() {
		res.Route = sel.Pattern()
		res.Default = sel.Entry.Default
		res.Rank = router.EntryRank(*sel.Entry).String()
		res.Params = sel.Params
		if rt, ok := sel.Entry.Payload.(manifest.Route); ok {
			res.View = rt.View
		}
	}
	for _, s := range routes.MatchAll(loc.Path) {
		res.Candidates = append(res.Candidates, s.Pattern())
	}
	return res
}

// handleMatch reports the route selected for the "url" query parameter.
func (a *app) handleMatch(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeJSONError(w, http.StatusBadRequest, missingArg("url", "/_nav/match?url=/users/42"))
		return
	}
	target, err := routepath.CanonicalizeAndValidateNavPath(raw)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, errors.New("P002").WithSubject(raw).Wrap(err))
		return
	}

	res := describeMatch(a.routes, location.Parse(target, a.cfg.Origin))
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(res)
}

// handleShell serves the page shell for any path the client may navigate
// to directly.
func (a *app) handleShell(w http.ResponseWriter, r *http.Request) {
	title := "navrouter"
	sel := a.routes.Select(routepath.TrimTrailingSlash(r.URL.EscapedPath()))
	if rt, ok := selectedRoute(sel); ok && rt.Title != "" {
		title = rt.Title
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := wsnav.WriteShell(w, wsnav.ShellData{Title: title, WSPath: a.cfg.Server.WSPath}); err != nil {
		a.logger.Warn("shell render failed", "error", err)
	}
}

func selectedRoute(sel router.Selection) (manifest.Route, bool) {
	if sel.Empty() {
		return manifest.Route{}, false
	}
	rt, ok := sel.Entry.Payload.(manifest.Route)
	return rt, ok
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	re := errors.FromError(err, "")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, re.FormatJSON())
}

// sortedKeys returns the keys of m in order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

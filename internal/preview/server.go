// Package preview serves a live view of a site configuration: the composed
// homepage, the resolved configuration and link table, health and metrics.
// The configuration is reloaded when its files change; a reload that fails
// keeps the last good configuration in service.
package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/homepage"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
	"git.home.luguber.info/inful/sitecfg/internal/metrics"
	"git.home.luguber.info/inful/sitecfg/internal/routes"
)

const (
	defaultAddr     = "127.0.0.1:3000"
	defaultDebounce = 300 * time.Millisecond
)

// Loader produces the configuration to serve.
type Loader func() (*config.Config, error)

// Options configures a Server.
type Options struct {
	Addr string
	// Load is called for the initial configuration and on every reload. Required.
	Load Loader
	// WatchPaths are the configuration files whose changes trigger a reload.
	WatchPaths []string
	// Root is the site source directory. When set, routes are indexed and
	// static files are served under baseUrl.
	Root      string
	StaticDir string
	Debounce  time.Duration

	Logger   *slog.Logger
	Recorder metrics.Recorder
	// Registry backs /metrics. Nil serves the default Prometheus registry.
	Registry *prom.Registry
}

// Health is the /healthz payload.
type Health struct {
	Status    string    `json:"status"`
	Snapshot  string    `json:"snapshot"`
	LoadedAt  time.Time `json:"loaded_at"`
	Reloads   int       `json:"reloads"`
	LastError string    `json:"last_error,omitempty"`
	Category  string    `json:"category,omitempty"`
}

// Server holds the configuration currently in service.
type Server struct {
	opts     Options
	logger   *slog.Logger
	recorder metrics.Recorder
	errs     *ferrors.HTTPErrorAdapter
	router   chi.Router

	// reloadMu keeps reloads in order so an older load never replaces a newer one.
	reloadMu sync.Mutex

	mu       sync.RWMutex
	cfg      *config.Config
	idx      *routes.Index
	loadedAt time.Time
	reloads  int
	lastErr  error
}

// New loads the initial configuration and builds the router. The initial
// load must succeed.
func New(opts Options) (*Server, error) {
	if opts.Load == nil {
		return nil, ferrors.InternalError("preview loader required").Build()
	}
	if opts.Addr == "" {
		opts.Addr = defaultAddr
	}
	if opts.StaticDir == "" {
		opts.StaticDir = routes.DefaultStaticDir
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	s := &Server{
		opts:     opts,
		logger:   opts.Logger,
		recorder: opts.Recorder,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.recorder == nil {
		s.recorder = metrics.NoopRecorder{}
	}
	s.errs = ferrors.NewHTTPErrorAdapter(s.logger)

	cfg, idx, err := s.load()
	if err != nil {
		return nil, err
	}
	s.cfg, s.idx, s.loadedAt = cfg, idx, time.Now()
	s.router = s.routes()
	return s, nil
}

func (s *Server) load() (*config.Config, *routes.Index, error) {
	cfg, err := s.opts.Load()
	if err != nil {
		return nil, nil, err
	}
	if s.opts.Root == "" {
		return cfg, nil, nil
	}
	idx, err := routes.Build(s.opts.Root, cfg,
		routes.WithLogger(s.logger), routes.WithStaticDir(s.opts.StaticDir))
	if err != nil {
		return nil, nil, err
	}
	return cfg, idx, nil
}

// Reload loads the configuration again. On failure the previous
// configuration stays in service and the error is reported by /healthz.
func (s *Server) Reload() error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	cfg, idx, err := s.load()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloads++
	if err != nil {
		s.lastErr = err
		s.recorder.IncConfigReload(false)
		s.logger.Error("Configuration reload failed; keeping last good configuration",
			slog.String("category", string(ferrors.GetCategory(err))),
			logfields.Snapshot(s.cfg.Snapshot()),
			logfields.Error(err))
		return err
	}
	s.cfg, s.idx, s.loadedAt, s.lastErr = cfg, idx, time.Now(), nil
	s.recorder.IncConfigReload(true)
	s.logger.Info("Configuration reloaded", logfields.Snapshot(cfg.Snapshot()))
	return nil
}

// Config returns the configuration in service.
func (s *Server) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Server) current() (*config.Config, *routes.Index) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.idx
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.NoCache)

	r.Get("/", s.handleHome)
	r.Get("/siteconfig.yaml", s.handleConfig)
	r.Get("/links.json", s.handleLinks)
	r.Get("/routes.json", s.handleRoutes)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.HTTPHandler(s.opts.Registry))
	r.NotFound(s.handleSite)
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			logfields.Path(r.URL.Path),
			logfields.Status(ww.Status()),
			slog.String("request_id", chimw.GetReqID(r.Context())),
			logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	cfg, idx := s.current()
	var buf bytes.Buffer
	if err := homepage.Render(&buf, cfg, homepage.Options{Index: idx}); err != nil {
		s.errs.WriteErrorResponse(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg, _ := s.current()
	data, err := config.Marshal(cfg)
	if err != nil {
		s.errs.WriteErrorResponse(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(data)
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	cfg, _ := s.current()
	s.writeJSON(w, r, config.ResolveLinks(cfg))
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	_, idx := s.current()
	if idx == nil {
		s.errs.WriteErrorResponse(w, r, ferrors.NewError(ferrors.CategoryNotFound, "no site root configured").Build())
		return
	}
	s.writeJSON(w, r, idx.Pages())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	h := Health{
		Status:   "ok",
		Snapshot: s.cfg.Snapshot(),
		LoadedAt: s.loadedAt,
		Reloads:  s.reloads,
	}
	if s.lastErr != nil {
		h.Status = "degraded"
		h.LastError = s.lastErr.Error()
		h.Category = string(ferrors.GetCategory(s.lastErr))
	}
	s.mu.RUnlock()
	s.writeJSON(w, r, h)
}

// handleSite serves the homepage at baseUrl and static files beneath it.
func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	cfg, _ := s.current()
	base := cfg.BaseURL
	p := r.URL.Path
	if p == base || p+"/" == base {
		s.handleHome(w, r)
		return
	}
	if s.opts.Root == "" || !strings.HasPrefix(p, base) {
		http.NotFound(w, r)
		return
	}
	rel := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(p, base)), "/")
	file := filepath.Join(s.opts.Root, s.opts.StaticDir, filepath.FromSlash(rel))
	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, file)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.errs.WriteErrorResponse(w, r, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode response").Build())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(append(data, '\n'))
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Preview server listening", logfields.URL("http://"+s.opts.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return ferrors.WrapError(err, ferrors.CategoryNetwork, "preview server failed").
				WithContext(ferrors.ContextTarget, s.opts.Addr).Build()
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "preview server shutdown failed").Build()
	}
	s.logger.Info("Preview server stopped")
	return nil
}

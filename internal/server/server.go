// Package server renders content on request, so every page view reflects the
// current time.
package server

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/futurelink/internal/foundation/errors"
	"git.home.luguber.info/inful/futurelink/internal/logfields"
	"git.home.luguber.info/inful/futurelink/internal/metrics"
	"git.home.luguber.info/inful/futurelink/internal/publish"
)

// Server represents the render server.
type Server struct {
	Addr      string
	source    string
	router    *chi.Mux
	server    *http.Server
	publisher *publish.Publisher
	registry  *prom.Registry
	errs      *errors.HTTPErrorAdapter
	clock     func() time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithRegistry exposes reg on /metrics.
func WithRegistry(reg *prom.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithClock overrides the time source sampled once per request.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) { s.clock = clock }
}

// New creates a render server for the content tree at source.
func New(addr, source string, publisher *publish.Publisher, opts ...Option) *Server {
	s := &Server{
		Addr:      addr,
		source:    source,
		router:    chi.NewRouter(),
		publisher: publisher,
		errs:      errors.NewHTTPErrorAdapter(nil),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Get("/healthz", s.handleHealth)
	if s.registry != nil {
		s.router.Method(http.MethodGet, "/metrics", metrics.HTTPHandler(s.registry))
	}
	s.router.Get("/check", s.handleCheck)
	s.router.Get("/*", s.handlePage)
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("Render server listening", logfields.Addr(s.Addr), logfields.Path(s.source))
	if err := s.server.ListenAndServe(); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
		return errors.WrapError(err, errors.CategoryRuntime, "render server failed").
			WithContext("addr", s.Addr).
			Build()
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	report, err := s.publisher.Check(r.Context())
	if err != nil {
		s.errs.WriteErrorResponse(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := (&publish.JSONFormatter{}).Format(w, report); err != nil {
		slog.Error("Failed to encode check report", logfields.Error(err))
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	rel, abs, err := s.resolve(r.URL.Path)
	if err != nil {
		s.errs.WriteErrorResponse(w, r, err)
		return
	}
	if !s.publisher.IsPage(rel) {
		http.ServeFile(w, r, abs)
		return
	}

	src, err := os.ReadFile(abs) // #nosec G304 -- abs is confined to the source root by resolve
	if err != nil {
		s.errs.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryFileSystem, "failed to read page").
			WithContext("path", rel).
			Build())
		return
	}
	page, err := s.publisher.Renderer().Render(r.Context(), rel, src, s.clock())
	if err != nil {
		s.errs.WriteErrorResponse(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(page.HTML))
}

// resolve maps a request path to a file under the source root. Directories
// resolve to their index.html or index.md.
func (s *Server) resolve(urlPath string) (rel, abs string, err error) {
	// Parent segments and hidden files are never served.
	for _, part := range strings.Split(urlPath, "/") {
		if part != "." && strings.HasPrefix(part, ".") {
			return "", "", notFound(urlPath)
		}
	}
	rel = strings.TrimPrefix(path.Clean("/"+urlPath), "/")

	root, err := filepath.Abs(s.source)
	if err != nil {
		return "", "", errors.WrapError(err, errors.CategoryInternal, "failed to resolve source").Build()
	}
	abs = filepath.Join(root, filepath.FromSlash(rel))
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", "", notFound(urlPath)
	}

	info, err := os.Stat(abs)
	if err == nil && !info.IsDir() {
		return filepath.ToSlash(rel), abs, nil
	}
	if err == nil && info.IsDir() {
		for _, index := range []string{"index.html", "index.md"} {
			candidate := filepath.Join(abs, index)
			if fi, statErr := os.Stat(candidate); statErr == nil && !fi.IsDir() {
				return path.Join(rel, index), candidate, nil
			}
		}
		return "", "", notFound(urlPath)
	}
	// /about.html may be served from about.md.
	if strings.HasSuffix(abs, ".html") {
		candidate := strings.TrimSuffix(abs, ".html") + ".md"
		if fi, statErr := os.Stat(candidate); statErr == nil && !fi.IsDir() {
			return strings.TrimSuffix(rel, ".html") + ".md", candidate, nil
		}
	}
	return "", "", notFound(urlPath)
}

func notFound(urlPath string) error {
	return errors.NotFoundError("page not found").WithContext("path", urlPath).Build()
}

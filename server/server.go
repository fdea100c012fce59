package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ansel1/tangview/metrics"
	"github.com/ansel1/tangview/parser"
	"github.com/ansel1/tangview/results"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server publishes the collector's current report over HTTP, both as the
// result script the JSONP fetcher consumes and as plain JSON.
type Server struct {
	collector  *results.Collector
	callback   string
	groupLevel int
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Option configures the server
type Option func(*Server)

// WithCallback sets the callback name the result script invokes.
func WithCallback(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.callback = name
		}
	}
}

// WithGroupLevel sets the default group level of /api/groups.
func WithGroupLevel(level int) Option {
	return func(s *Server) {
		s.groupLevel = level
	}
}

// WithMetrics enables /metrics and served payload counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New creates a server reading from collector.
func New(collector *results.Collector, opts ...Option) *Server {
	s := &Server{
		collector:  collector,
		callback:   parser.DefaultCallback,
		groupLevel: 1,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthzHandler)

	r.Get("/result.js", s.scriptHandler)
	r.Get("/api/report", s.reportHandler)
	r.Get("/api/results", s.resultsHandler)
	r.Get("/api/groups/*", s.groupsHandler)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving report", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func healthzHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// current returns the current report, or nil if none has been loaded.
func (s *Server) current() *results.Report {
	var report *results.Report
	s.collector.WithCurrent(func(r *results.Report) {
		report = r
	})
	return report
}

func (s *Server) scriptHandler(w http.ResponseWriter, r *http.Request) {
	report := s.current()
	if report == nil {
		http.Error(w, "no report loaded", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := parser.EncodeJSONP(w, s.callback, report); err != nil {
		s.logger.Error("encode result script", "error", err)
		return
	}
	s.recordServed("jsonp")
}

func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	report := s.current()
	if report == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no report loaded"})
		return
	}
	writeJSON(w, http.StatusOK, report)
	s.recordServed("json")
}

func (s *Server) resultsHandler(w http.ResponseWriter, r *http.Request) {
	report := s.current()
	if report == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no report loaded"})
		return
	}
	writeJSON(w, http.StatusOK, results.ShapeResults(report.TestResults))
	s.recordServed("json")
}

// groupsHandler returns the grouped rows of one test file. The file path is
// the remainder of the URL; ?level= overrides the group level.
func (s *Server) groupsHandler(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")

	level := s.groupLevel
	if raw := r.URL.Query().Get("level"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "level must be a non-negative integer"})
			return
		}
		level = n
	}

	report := s.current()
	if report == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no report loaded"})
		return
	}

	for _, f := range report.TestResults {
		if trimSlash(f.TestFilePath) == path {
			writeJSON(w, http.StatusOK, results.GroupByAncestors(f.TestResults, level))
			s.recordServed("json")
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown test file " + path})
}

func (s *Server) recordServed(format string) {
	if s.metrics != nil {
		s.metrics.RecordServed(format)
	}
}

// trimSlash drops the leading slash of absolute paths, which chi's
// wildcard never includes.
func trimSlash(p string) string {
	if len(p) > 0 && p[0] == '/' {
		return p[1:]
	}
	return p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode JSON response", "error", err)
	}
}

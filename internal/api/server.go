// Package api serves the repeater data and viewer settings over HTTP.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/dbehnke/relaisblick/internal/loader"
	"github.com/dbehnke/relaisblick/internal/logger"
	"github.com/dbehnke/relaisblick/internal/metrics"
	"github.com/dbehnke/relaisblick/internal/preferences"
	"github.com/dbehnke/relaisblick/internal/siteconfig"
)

// DataSource provides the loaded dataset and manual reloads.
type DataSource interface {
	State() loader.State
	Retry(ctx context.Context) error
}

// SiteConfig provides the optional site configuration.
type SiteConfig interface {
	Get(ctx context.Context) siteconfig.Config
}

// LanguageStore reads and writes the language preference.
type LanguageStore interface {
	Language(ctx context.Context) (preferences.Language, error)
	SetLanguage(ctx context.Context, lang preferences.Language) error
	Reset(ctx context.Context) error
}

// HealthChecker reports backend health, e.g. *database.DB.
type HealthChecker interface {
	Health() error
}

// Options wires the server to its backends. Data is required; the other
// backends are optional and their routes answer 503 when missing.
type Options struct {
	Data       DataSource
	SiteConfig SiteConfig
	Languages  LanguageStore
	Database   HealthChecker
	StaticDir  string
	Version    string
	Logger     *logger.Logger
}

// Manual reload rate, shared by all clients.
const (
	reloadInterval = 10 * time.Second
	reloadBurst    = 3
)

// Server holds the HTTP handlers.
type Server struct {
	opts   Options
	log    *logger.Logger
	now    func() time.Time
	reload *rate.Limiter
	events *hub
}

// NewServer creates the API server.
func NewServer(opts Options) *Server {
	return &Server{
		opts:   opts,
		log:    logger.OrNop(opts.Logger).Named("api"),
		now:    time.Now,
		reload: rate.NewLimiter(rate.Every(reloadInterval), reloadBurst),
		events: newHub(),
	}
}

// Handler returns the instrumented router with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterHandlers(mux)
	return s.instrument(mux)
}

// RegisterHandlers registers the API routes on mux.
func (s *Server) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/relais", s.handleRelaisList)
	mux.HandleFunc("GET /api/relais/nearby", s.handleNearby)
	mux.HandleFunc("GET /api/relais/{id}", s.handleRelais)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/config", s.handleConfig)
	mux.HandleFunc("GET /api/language", s.handleGetLanguage)
	mux.HandleFunc("PUT /api/language", s.handlePutLanguage)
	mux.HandleFunc("DELETE /api/language", s.handleDeleteLanguage)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	if s.opts.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.opts.StaticDir)))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.APIRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.log.Debugw("Request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warnw("Error encoding response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

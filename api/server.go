// Package api provides the HTTP server for chartfolio.
//
// It serves the portfolio page, the embedded assets, the chart SVGs and
// render plans, the dataset aggregates, and the live hover WebSocket.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/seenimoa/chartfolio/internal/config"
	"github.com/seenimoa/chartfolio/internal/dataset"
	"github.com/seenimoa/chartfolio/internal/site"
	"github.com/seenimoa/chartfolio/internal/views"
	"github.com/seenimoa/chartfolio/web"
)

// Version is reported by /health and `chartfolio version`.
var Version = "dev"

// Server is the HTTP server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	site   *site.Builder
	logger *zap.Logger
	hub    *HoverHub
}

// NewServer creates a configured server with all routes and middleware.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &Server{
		cfg:    cfg,
		site:   site.New(cfg, logger),
		logger: logger,
		hub:    NewHoverHub(),
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the live hover session registry.
func (s *Server) Hub() *HoverHub {
	return s.hub
}

// ListenAndServe starts the HTTP server and blocks until SIGINT or SIGTERM,
// then shuts down gracefully.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.hub.Run()
	defer s.hub.Close()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(done)

	errc := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()
	s.logger.Info("server listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return errors.Wrap(err, "http server")
	case <-done:
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.Server.CORSOrigins) > 0 {
		origins = s.cfg.Server.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// The hover socket is long-lived and must not sit behind the timeout.
	r.Get("/ws/hover", s.handleHover)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(120 * time.Second))

		r.Get("/health", s.handleHealth)
		r.Get("/", s.handleIndex)
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.StaticFS())))
		r.Get("/charts/{name}.svg", s.handleChartSVG)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/health", s.handleHealth)
			r.Get("/charts/{name}", s.handleChartPlan)
			r.Get("/views", s.handleViews)
			r.Get("/dataset/platforms", s.handlePlatforms)
			r.Post("/reload", s.handleReload)
			r.Get("/config", s.handleGetConfig)
		})
	})

	return r
}

// requestLogger logs one line per request through zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// ============================================================
// Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ChartResponse is the body of GET /api/v1/charts/{name}.
type ChartResponse struct {
	Name     string      `json:"name"`
	Plan     interface{} `json:"plan"`
	Bindings interface{} `json:"bindings"`
}

// PlatformsResponse is the body of GET /api/v1/dataset/platforms.
type PlatformsResponse struct {
	Source    string          `json:"source"`
	Rows      int             `json:"rows"`
	Platforms []dataset.Total `json:"platforms"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":        "ok",
			"version":       Version,
			"hover_clients": s.hub.ClientCount(),
			"time":          time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	out, err := s.site.Page(r.Context(), site.PageOptions{ActivePath: "/"})
	if err != nil {
		s.logger.Error("page build failed", zap.Error(err))
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out)) //nolint:errcheck
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	svg, err := s.site.SVG(chi.URLParam(r, "name"))
	if err != nil {
		writeChartError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(svg)) //nolint:errcheck
}

func (s *Server) handleChartPlan(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	plan, err := s.site.Plan(name)
	if err != nil {
		writeChartError(w, err)
		return
	}
	bindings, err := s.site.Bindings(name)
	if err != nil {
		writeChartError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    ChartResponse{Name: name, Plan: plan, Bindings: bindings},
	})
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    views.Statuses(s.site.Views(r.Context())),
	})
}

func (s *Server) handlePlatforms(w http.ResponseWriter, r *http.Request) {
	top := 0
	if q := r.URL.Query().Get("top"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "top must be a non-negative integer")
			return
		}
		top = n
	}

	t, err := s.site.Table(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	totals := dataset.SalesByPlatform(t)
	if top > 0 && top < len(totals) {
		totals = totals[:top]
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    PlatformsResponse{Source: t.Source, Rows: t.Len(), Platforms: totals},
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.site.Reload()
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"reloaded": true},
	})
}

// ============================================================
// Helpers
// ============================================================

func writeChartError(w http.ResponseWriter, err error) {
	if errors.Is(err, site.ErrUnknownChart) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

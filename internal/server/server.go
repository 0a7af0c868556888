// Package server hosts the Instagram code-exchange proxy.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ziadkadry99/newsletter-kit/internal/exchange"
	"github.com/ziadkadry99/newsletter-kit/internal/logging"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins
}

// Exchanger turns a login code into account media.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (*exchange.Result, error)
}

// Server is the stateless code-exchange proxy.
type Server struct {
	cfg        Config
	exchanger  Exchanger
	logger     *zap.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server that delegates exchanges to ex.
func New(cfg Config, ex Exchanger, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:       cfg,
		exchanger: ex,
		logger:    logger,
	}

	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Post("/exchange", s.handleExchange)
	r.Post("/api/instagram/exchange", s.handleExchange)

	return r
}

type exchangeRequest struct {
	Code string `json:"code"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type exchangeResponse struct {
	Success bool `json:"success"`
	*exchange.Result
}

func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil || req.Code == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing code"})
		return
	}

	res, err := s.exchanger.Exchange(r.Context(), req.Code)
	if err != nil {
		var upstream *exchange.UpstreamError
		switch {
		case errors.As(err, &upstream):
			s.logger.Warn("exchange_upstream_failed",
				zap.String("stage", string(upstream.Stage)),
				zap.Int("status", upstream.Status),
			)
			writeJSON(w, upstream.Status, errorResponse{Error: upstream.Message(), Details: upstream.Details})
		case errors.Is(err, exchange.ErrNoBusinessAccount):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No Instagram business account found"})
		default:
			s.logger.Error("exchange_failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Server error", Details: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, exchangeResponse{Success: true, Result: res})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
// It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("proxy_listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Package devserver serves the generated pages locally and reloads open
// browsers whenever the configuration changes.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/newsletter-kit/internal/bundle"
	"github.com/ziadkadry99/newsletter-kit/internal/config"
	"github.com/ziadkadry99/newsletter-kit/internal/logging"
)

// Messages pushed to browsers over /ws.
const (
	MsgConnected = "connected"
	MsgReload    = "reload"
)

// reloadScript is injected before </body> of every served page.
const reloadScript = `<script>
(function () {
  var ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
  ws.onmessage = function (e) { if (e.data === 'reload') location.reload(); };
})();
</script>
`

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Source produces a fresh bundle, typically by reloading the config file.
type Source func() (*bundle.Bundle, error)

// Server holds the latest bundle and the connected browsers.
type Server struct {
	source Source
	logger *zap.Logger
	router chi.Router

	mu      sync.RWMutex
	current *bundle.Bundle
	lastErr error

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]struct{}
}

// New creates a dev server and performs the first generation. A failing
// first generation is reported on every page until a reload succeeds.
func New(source Source, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		source:  source,
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
	}
	s.regenerate()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logging.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Get("/", s.handlePage)
	r.Post("/", s.handleSubmit)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/files/{name}", s.handleFile)
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Reload regenerates the bundle and tells every browser to refresh. On
// failure the previous bundle keeps being served and the error is shown.
func (s *Server) Reload() error {
	err := s.regenerate()
	s.broadcast(MsgReload)
	return err
}

func (s *Server) regenerate() error {
	b, err := s.source()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		s.logger.Warn("regenerate_failed", zap.Error(err))
		return err
	}
	s.current = b
	return nil
}

// Watch polls path every interval and reloads when its modification time
// changes. It returns when ctx is done.
func (s *Server) Watch(ctx context.Context, path string, interval time.Duration) {
	last := modTime(path)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mt := modTime(path)
			if mt.Equal(last) {
				continue
			}
			last = mt
			s.logger.Info("config_changed", zap.String("path", path))
			_ = s.Reload()
		}
	}
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func (s *Server) snapshot() (*bundle.Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.lastErr
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	b, err := s.snapshot()
	if err != nil || b == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		msg := "no bundle generated yet"
		if err != nil {
			msg = err.Error()
		}
		_, _ = w.Write([]byte("<!DOCTYPE html><html><body><h1>Generation failed</h1><pre>" +
			html.EscapeString(msg) + "</pre>" + reloadScript + "</body></html>"))
		return
	}

	name := bundle.FileForm
	if r.URL.Query().Get("thankyou") == "true" {
		name = bundle.FileConfirmation
	}
	f, _ := b.File(name)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(injectReload(f.Content)))
}

// handleSubmit answers the form the way the deployed doPost does for a new
// address, without storing anything. Like Apps Script, every answer is a
// 200 and failures are reported in the body.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var sub struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&sub); err != nil {
		msg := "Invalid JSON data"
		if errors.Is(err, io.EOF) {
			msg = "Invalid request format"
		}
		s.logger.Info("form_submission_rejected", zap.String("reason", msg), zap.Error(err))
		writeJSON(w, map[string]any{"success": false, "error": msg})
		return
	}

	email := strings.ToLower(strings.TrimSpace(sub.Email))
	if !config.ValidEmail(email) {
		s.logger.Info("form_submission_rejected", zap.String("reason", "invalid email"), zap.String("email", sub.Email))
		writeJSON(w, map[string]any{"success": false, "error": "Invalid email address"})
		return
	}
	s.logger.Info("form_submission", zap.String("email", email), zap.String("name", strings.TrimSpace(sub.Name)))

	status := "active"
	if b, _ := s.snapshot(); b != nil && b.Features.Verification {
		status = "pending"
	}
	writeJSON(w, map[string]any{
		"success": true,
		"message": "Subscriber added",
		"status":  status,
	})
}

func writeJSON(w http.ResponseWriter, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	b, _ := s.snapshot()
	if b == nil {
		http.Error(w, "no bundle generated yet", http.StatusServiceUnavailable)
		return
	}
	f, ok := b.File(chi.URLParam(r, "name"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(f.Content))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket_upgrade_failed", zap.Error(err))
		return
	}
	defer conn.Close()

	s.clientsMu.Lock()
	s.clients[conn] = struct{}{}
	err = conn.WriteMessage(websocket.TextMessage, []byte(MsgConnected))
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
	}()
	if err != nil {
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket_read_failed", zap.Error(err))
			}
			return
		}
	}
}

func (s *Server) broadcast(msg string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			s.logger.Debug("websocket_write_failed", zap.Error(err))
		}
	}
}

func injectReload(page string) string {
	if i := strings.LastIndex(page, "</body>"); i >= 0 {
		return page[:i] + reloadScript + page[i:]
	}
	return page + reloadScript
}

// ABOUTME: HTTP operator surface: status page, QR image, logout, SSE event stream
// ABOUTME: Thin consumer of session state and the broadcast hub

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/doorman-bot/doorman/internal/hub"
)

// heartbeatInterval is how often an SSE comment is written to detect dead
// connections.
const heartbeatInterval = 30 * time.Second

// SessionState is the read-only view of the session the endpoint renders.
// *bot.State satisfies it.
type SessionState interface {
	LoggedInName() string
	QRSVG() string
}

// LogoutFunc triggers a session logout when the operator requests one.
type LogoutFunc func(ctx context.Context) error

// Server is the operator HTTP endpoint. It reads session state, streams hub
// notifications over SSE, and issues logout commands back into the session.
type Server struct {
	state  SessionState
	hub    *hub.Hub
	logout LogoutFunc
	logger *slog.Logger
	tmpl   *template.Template
}

// NewServer creates the operator endpoint. Pass nil logger for default.
func NewServer(state SessionState, h *hub.Hub, logout LogoutFunc, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Server{
		state:  state,
		hub:    h,
		logout: logout,
		logger: logger.With("component", "web"),
		tmpl:   tmpl,
	}, nil
}

// Handler returns the route mux for the operator endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /qrcode.svg", s.handleQRCode)
	mux.HandleFunc("GET /logout", s.handleLogout)
	mux.HandleFunc("GET /events", s.handleEvents)
	return mux
}

// Run serves the operator endpoint until ctx ends, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("operator endpoint listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down operator endpoint: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("operator endpoint: %w", err)
	}
}

type indexData struct {
	LoggedIn     bool
	LoggedInName string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	name := s.state.LoggedInName()
	data := indexData{
		LoggedIn:     name != "",
		LoggedInName: name,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.Error("rendering index", "error", err)
	}
}

// handleQRCode serves the most recent login challenge. Before the first scan
// event the body is empty.
func (s *Server) handleQRCode(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	fmt.Fprint(w, s.state.QRSVG())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.logout(r.Context()); err != nil {
		s.logger.Error("logout request failed", "error", err)
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "logged out")
}

// handleEvents upgrades to an SSE stream mirroring hub notifications as
// data: <json> frames. Connection close unsubscribes the observer.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	obs := s.hub.Subscribe()
	defer s.hub.Unsubscribe(obs)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case n, ok := <-obs.C:
			if !ok {
				return
			}
			payload, err := json.Marshal(n)
			if err != nil {
				s.logger.Error("encoding notification", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				// Write failure means the observer is gone; the deferred
				// unsubscribe removes it.
				return
			}
			flusher.Flush()
		}
	}
}

// Package relay runs the local HTTP relay: a health endpoint, a token-guarded
// /continue API (so a Discord button or Shortcut can unblock a waiting agent),
// and a websocket pane stream for remote viewing.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/asheshgoplani/occtl/internal/logging"
)

var relayLog = logging.ForComponent(logging.CompRelay)

// sessionNameRe guards against tmux target injection from the network.
var sessionNameRe = regexp.MustCompile(`^[a-zA-Z0-9._:-]+$`)

// SessionControl is the slice of the tmux client the relay needs.
type SessionControl interface {
	HasSession(name string) (bool, error)
	SendKeys(target string, keys ...string) error
}

// FocusReader resolves the focused session when /continue omits one.
type FocusReader interface {
	GetFocus() string
}

// Config defines runtime options for the relay server.
type Config struct {
	ListenAddr string
	Token      string
	Tmux       SessionControl
	Focus      FocusReader
}

// Server wraps the relay HTTP server.
type Server struct {
	cfg        Config
	httpServer *http.Server
	limiter    *rate.Limiter
	baseCtx    context.Context
	cancelBase context.CancelFunc
}

// NewServer creates a relay server with routes and middleware configured.
func NewServer(cfg Config) *Server {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "0.0.0.0:8878"
	}

	s := &Server{
		cfg: cfg,
		// A human pressing a Discord button is slow; anything faster than
		// a small burst per second is abuse or a retry loop.
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
	s.baseCtx, s.cancelBase = context.WithCancel(context.Background())

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/continue", s.handleContinue)
	mux.HandleFunc("/ws/pane", s.handlePaneWS)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           withRecover(mux),
		BaseContext:       func(_ net.Listener) context.Context { return s.baseCtx },
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the configured HTTP handler (used by tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server and blocks until shutdown or error.
// Returns nil on graceful shutdown.
func (s *Server) Start() error {
	relayLog.Info("relay_listening", slog.String("addr", s.cfg.ListenAddr))
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, force-closing if long-lived
// websocket connections hold up the graceful path.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancelBase != nil {
		s.cancelBase()
	}

	err := s.httpServer.Shutdown(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		if closeErr := s.httpServer.Close(); closeErr != nil {
			return fmt.Errorf("graceful shutdown timed out and force close failed: %w", closeErr)
		}
		return nil
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": "oc-relay"})
}

// continueRequest is the /continue payload. press_enter defaults to true.
type continueRequest struct {
	Session    string `json:"session"`
	Text       string `json:"text"`
	PressEnter *bool  `json:"press_enter"`
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return
	}
	if !s.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": "rate limited"})
		return
	}

	var req continueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}

	session := strings.TrimSpace(req.Session)
	if session == "" && s.cfg.Focus != nil {
		session = s.cfg.Focus.GetFocus()
	}
	if session == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "session required"})
		return
	}
	if !sessionNameRe.MatchString(session) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid session"})
		return
	}

	exists, err := s.cfg.Tmux.HasSession(session)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "tmux unavailable"})
		return
	}
	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "session not found"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if req.Text == "" {
		text = "continue"
	}
	pressEnter := req.PressEnter == nil || *req.PressEnter

	target := session + ":main"
	if text != "" {
		if err := s.cfg.Tmux.SendKeys(target, text); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "send failed"})
			return
		}
	}
	if pressEnter {
		if err := s.cfg.Tmux.SendKeys(target, "Enter"); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "send failed"})
			return
		}
	}

	relayLog.Info("continue_delivered",
		slog.String("session", session),
		slog.Bool("press_enter", pressEnter))

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"session":       session,
		"sent_text":     text,
		"pressed_enter": pressEnter,
	})
}

func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.Token == "" {
		return false
	}
	return parseBearerToken(r.Header.Get("Authorization")) == s.cfg.Token
}

func parseBearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				relayLog.Error("panic",
					slog.String("recover", fmt.Sprintf("%v", rec)),
					slog.String("path", r.URL.Path))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

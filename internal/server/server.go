// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jeranaias/termfolio/internal/catalog"
	"github.com/jeranaias/termfolio/internal/commands"
	"github.com/jeranaias/termfolio/internal/config"
	"github.com/jeranaias/termfolio/internal/prefs"
	"github.com/jeranaias/termfolio/internal/render"
	"github.com/jeranaias/termfolio/internal/session"
)

//go:embed static
var staticFiles embed.FS

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// VisitorCookie names the cookie carrying the visitor identifier.
	VisitorCookie = "termfolio_visitor"

	// visitorCookieMaxAge keeps a visitor's theme for a year.
	visitorCookieMaxAge = 365 * 24 * 60 * 60

	// sweepInterval is how often idle sessions are expired.
	sweepInterval = time.Minute
)

// ErrNoCatalog is returned by New when no catalog is configured.
var ErrNoCatalog = errors.New("server: catalog is required")

// ============================================================================
// OPTIONS
// ============================================================================

// PrefsFunc returns the preference store for one visitor.
type PrefsFunc func(visitor string) prefs.Store

// Options configures a Server.
type Options struct {
	Addr     string
	Version  string
	Catalog  *catalog.Catalog
	Registry *commands.Registry

	// Prefs scopes preferences per visitor. Nil keeps each visitor's
	// preferences in memory for the life of the server.
	Prefs PrefsFunc

	Terminal config.TerminalConfig
	Sessions session.Config

	// RatePerSecond and RateBurst throttle messages on one connection
	RatePerSecond float64
	RateBurst     int

	AllowedOrigins []string
	SecureCookies  bool
	LogRequests    bool

	Logger *log.Logger
}

// OptionsFromConfig fills the transport settings of Options from cfg.
// Content, registry and preference wiring are left to the caller.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Addr:     cfg.Server.Addr,
		Terminal: cfg.Terminal,
		Sessions: session.Config{
			MaxSessions: cfg.Server.MaxSessions,
			IdleTimeout: cfg.Server.IdleTimeout(),
		},
		RatePerSecond:  cfg.Server.RatePerSecond,
		RateBurst:      cfg.Server.RateBurst,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SecureCookies:  cfg.Server.SecureCookies,
		LogRequests:    cfg.Log.Requests,
	}
}

// ============================================================================
// SERVER
// ============================================================================

// Server serves the browser terminal: the page, its assets and one
// WebSocket session per visitor tab.
type Server struct {
	opts     Options
	router   *http.ServeMux
	handler  http.Handler
	logger   *log.Logger
	html     *render.HTML
	sessions *session.Manager
	upgrader websocket.Upgrader
	connects *RateLimiter
	started  time.Time

	terminal atomic.Pointer[config.TerminalConfig]

	mu     sync.Mutex
	server *http.Server
	cancel context.CancelFunc
}

// New creates a Server. Zero options fall back to defaults.
func New(opts Options) (*Server, error) {
	if opts.Catalog == nil {
		return nil, ErrNoCatalog
	}
	if opts.Registry == nil {
		opts.Registry = commands.NewRegistry()
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 20
	}
	if opts.RateBurst < 1 {
		opts.RateBurst = 40
	}
	if opts.Prefs == nil {
		opts.Prefs = prefs.NewMemoryStores().Scoped
	}
	if opts.Sessions == (session.Config{}) {
		opts.Sessions = session.DefaultConfig()
	}

	s := &Server{
		opts:     opts,
		router:   http.NewServeMux(),
		logger:   opts.Logger,
		html:     render.NewHTML(),
		sessions: session.NewManager(opts.Sessions),
		connects: DefaultRateLimiter(),
		started:  time.Now(),
	}
	policy := OriginPolicy{AllowedOrigins: opts.AllowedOrigins}
	s.upgrader = websocket.Upgrader{
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      policy.Allow,
	}
	terminal := opts.Terminal
	s.terminal.Store(&terminal)

	s.setupRoutes()

	middlewares := []func(http.Handler) http.Handler{
		RecoveryMiddleware(s.logger),
		SecurityHeadersMiddleware(),
	}
	if opts.LogRequests {
		middlewares = append(middlewares, LoggingMiddleware(s.logger))
	}
	s.handler = Chain(middlewares...)(s.router)

	return s, nil
}

// Handler returns the server's HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Sessions returns the session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// UpdateTerminal replaces the typing and navigation timings. Connections
// pick up new typing delays on their next output.
func (s *Server) UpdateTerminal(t config.TerminalConfig) {
	s.terminal.Store(&t)
	s.logger.Printf("SERVER_RELOAD | banner_delay_ms=%d typing_delay_ms=%d navigation_delay_ms=%d",
		t.BannerDelayMs, t.TypingDelayMs, t.NavigationDelayMs)
}

func (s *Server) terminalConfig() config.TerminalConfig {
	return *s.terminal.Load()
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	assets, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}

	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(assets))))
	s.router.HandleFunc("GET /ws", s.handleWebSocket)
	s.router.HandleFunc("GET /health", s.handleHealth)
}

// ============================================================================
// PAGE HANDLER
// ============================================================================

// handleIndex handles GET /.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "page unavailable")
		return
	}

	if _, fresh := s.visitor(r); fresh != "" {
		http.SetCookie(w, s.visitorCookie(fresh))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(page)
}

// visitor returns the request's visitor identifier. When the request
// carries no valid cookie a new identifier is returned as both values.
func (s *Server) visitor(r *http.Request) (id, fresh string) {
	if c, err := r.Cookie(VisitorCookie); err == nil {
		if parsed, err := uuid.Parse(c.Value); err == nil {
			return parsed.String(), ""
		}
	}
	id = uuid.NewString()
	return id, id
}

func (s *Server) visitorCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     VisitorCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   visitorCookieMaxAge,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// ============================================================================
// HEALTH HANDLER
// ============================================================================

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	ActiveSessions int    `json:"active_sessions"`
	UptimeSecs     int64  `json:"uptime_secs"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:         "ok",
		Version:        s.opts.Version,
		ActiveSessions: s.sessions.Count(),
		UptimeSecs:     int64(time.Since(s.started) / time.Second),
	})
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve serves on l until Shutdown. Idle sessions are expired in the
// background while serving.
func (s *Server) Serve(l net.Listener) error {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.cancel = cancel
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	go s.sessions.Run(ctx, sweepInterval)
	go s.cleanupLoop(ctx)

	s.logger.Printf("SERVER_START | addr=%s version=%s", l.Addr(), s.opts.Version)
	err := srv.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server. Open terminal connections
// are closed by expiring every session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, cancel := s.server, s.cancel
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	s.logger.Printf("SERVER_SHUTDOWN | starting graceful shutdown sessions=%d", s.sessions.Count())

	cancel()
	s.sessions.CloseAll()
	return srv.Shutdown(ctx)
}

func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.connects.Cleanup()
		}
	}
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("SERVER | failed to encode response: %v", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"code":    status,
		},
	})
}

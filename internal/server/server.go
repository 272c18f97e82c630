package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/grindworks/grindstone/internal/config"
	"github.com/grindworks/grindstone/internal/database"
	"github.com/grindworks/grindstone/internal/logger"
)

// Server is the HTTP front end: account and task management, the points shop,
// and the game endpoints, all backed by the session registry.
type Server struct {
	config     *config.ServerConfig
	db         *database.Database
	registry   *SessionRegistry
	httpServer *http.Server
}

// NewServer wires the HTTP routes over the database and session registry.
func NewServer(cfg *config.ServerConfig, db *database.Database, registry *SessionRegistry) *Server {
	s := &Server{
		config:   cfg,
		db:       db,
		registry: registry,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.requireAuth(s.handleLogout))
	mux.HandleFunc("GET /api/me", s.requireAuth(s.handleMe))

	mux.HandleFunc("GET /api/tasks", s.requireAuth(s.handleListTasks))
	mux.HandleFunc("POST /api/tasks", s.requireAuth(s.handleCreateTask))
	mux.HandleFunc("PUT /api/tasks/{id}", s.requireAuth(s.handleUpdateTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", s.requireAuth(s.handleDeleteTask))
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.requireAuth(s.handleCompleteTask))

	mux.HandleFunc("GET /api/points", s.requireAuth(s.handlePoints))
	mux.HandleFunc("GET /api/shop", s.requireAuth(s.handleListShop))
	mux.HandleFunc("POST /api/shop/{id}/purchase", s.requireAuth(s.handlePurchase))

	mux.HandleFunc("GET /api/game/state", s.requireAuth(s.handleGameState))
	mux.HandleFunc("POST /api/game/generate", s.requireAuth(s.handleGenerate))
	mux.HandleFunc("GET /api/game/enemies", s.requireAuth(s.handleEnemies))
	mux.HandleFunc("POST /api/game/fight", s.requireAuth(s.handleFight))
	mux.HandleFunc("POST /api/game/upgrade", s.requireAuth(s.handleUpgrade))
	mux.HandleFunc("POST /api/game/sell", s.requireAuth(s.handleSell))
	mux.HandleFunc("POST /api/game/sell/cancel", s.requireAuth(s.handleCancelSale))
	mux.HandleFunc("POST /api/game/equip", s.requireAuth(s.handleEquip))
	mux.HandleFunc("POST /api/game/travel", s.requireAuth(s.handleTravel))
	mux.HandleFunc("GET /api/game/areas", s.requireAuth(s.handleAreas))
	mux.HandleFunc("PUT /api/game/settings", s.requireAuth(s.handleSettings))

	mux.HandleFunc("GET /ws", s.requireAuth(s.handleWebSocket))

	s.httpServer = &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // the WebSocket stream is long-lived
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the route mux for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens and serves until the context is canceled, then drains
// connections and saves all live sessions.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warning("HTTP shutdown incomplete", "error", err)
	}
	s.registry.SaveAll()
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// getRealIP extracts the client IP, honoring X-Forwarded-For and X-Real-IP
// set by reverse proxies.
func getRealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Package httpserver exposes the dormhub HTTP API and the viewer push channel.
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/kstepanov/dormhub/internal/hub"
	"github.com/kstepanov/dormhub/internal/service"
	"github.com/kstepanov/dormhub/internal/token"
)

// Pinger reports storage connectivity (implemented by *postgres.DB).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires services into HTTP handlers.
type Server struct {
	log     *zap.Logger
	auth    service.AuthService
	ingest  service.IngestService
	tokens  *token.Service
	hub     *hub.Hub
	db      Pinger
	handler http.Handler
}

// New constructs the server with injected services and installs routes.
func New(log *zap.Logger, auth service.AuthService, ingest service.IngestService,
	tokens *token.Service, h *hub.Hub, db Pinger) *Server {

	s := &Server{log: log, auth: auth, ingest: ingest, tokens: tokens, hub: h, db: db}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.Handle("POST /upload-groups", s.requireToken(s.handleUploadGroups))
	mux.Handle("POST /upload-hostels", s.requireToken(s.handleUploadHostels))
	mux.Handle("GET /groups", s.requireToken(s.handleListGroups))
	mux.Handle("GET /hostels", s.requireToken(s.handleListHostels))
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.handler = recoverMiddleware(log, loggingMiddleware(log, mux))
	return s
}

// ServeHTTP dispatches through the middleware chain.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

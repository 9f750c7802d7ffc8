package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"net"
	"net/http"
	"time"
)

// Config wires the process-wide resources into the HTTP handlers. Everything
// is injected here once at startup; handlers never reach for globals.
type Config struct {
	Addr  string // e.g. ":5000"
	DB    *sql.DB
	Auth  AuthConfig
	Store FileStore
}

type Server struct {
	httpServer *http.Server
}

func New(cfg Config) *Server {
	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
		})
	})

	mux.HandleFunc("/api/auth/register", cfg.RegisterHandler)
	mux.HandleFunc("/api/auth/login", cfg.LoginHandler)
	mux.Handle("/api/candidatures", cfg.CandidaturesHandler())
	mux.HandleFunc("/uploads/", cfg.UploadsHandler)

	// Wrap middleware: requestID -> logging -> cors -> mux
	var handler http.Handler = mux
	handler = corsMiddleware(handler)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{httpServer: s}
}

// Handler exposes the composed handler chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

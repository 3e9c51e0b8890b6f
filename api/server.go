package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"invest-retro/auth"
	"invest-retro/database/reports"
	"invest-retro/database/users"
	"invest-retro/review"
)

// apiPrefix is the versioned route prefix
const apiPrefix = "/api/v1"

// Server handles HTTP API requests
type Server struct {
	reviews  *review.Service
	users    *users.Repository
	reports  *reports.Repository
	sessions *auth.SessionManager

	mu         sync.Mutex
	httpServer *http.Server
}

// NewServer creates a new API server instance
func NewServer(reviews *review.Service, userRepo *users.Repository, reportRepo *reports.Repository, sessions *auth.SessionManager) *Server {
	return &Server{
		reviews:  reviews,
		users:    userRepo,
		reports:  reportRepo,
		sessions: sessions,
	}
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port int) error {
	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("POST "+apiPrefix+"/auth/register", s.handleRegister)
	mux.HandleFunc("POST "+apiPrefix+"/auth/login", s.handleLogin)
	mux.HandleFunc("POST "+apiPrefix+"/auth/logout", s.handleLogout)

	// Review routes
	mux.HandleFunc("POST "+apiPrefix+"/review", s.requireUser(s.handleCreateReview))
	mux.HandleFunc("GET "+apiPrefix+"/review", s.requireUser(s.handleListReviews))
	mux.HandleFunc("GET "+apiPrefix+"/review/{id}", s.requireUser(s.handleGetReview))
	mux.HandleFunc("PATCH "+apiPrefix+"/review/{id}/memo", s.requireUser(s.handleUpdateFinalMemo))

	// Report route
	mux.HandleFunc("GET "+apiPrefix+"/report", s.requireUser(s.handleReport))

	mux.HandleFunc("GET /health", s.handleHealth)

	// Add middleware
	handler := s.corsMiddleware(s.loggingMiddleware(mux))

	serverAddr := fmt.Sprintf("0.0.0.0:%d", port)
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: handler,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	log.Printf("🚀 API Server starting on %s", serverAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting new requests and waits for in-flight ones,
// bounded by the context deadline
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// authedHandler is a handler that has already resolved the calling user
type authedHandler func(w http.ResponseWriter, r *http.Request, userID int64)

// requireUser resolves the bearer token to a user id or rejects with 401
func (s *Server) requireUser(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		userID, err := s.sessions.Resolve(r.Context(), token)
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			respondWithError(w, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		next(w, r, userID)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth reports service liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

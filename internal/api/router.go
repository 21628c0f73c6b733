package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/riftstats/riftstats/internal/auth"
	"github.com/riftstats/riftstats/internal/refresh"
	"github.com/riftstats/riftstats/internal/storage"
)

// Router holds the HTTP routes and dependencies
type Router struct {
	mux       *http.ServeMux
	store     *storage.Store
	refresher *refresh.Refresher
	wsHub     *WebSocketHub
	auth      *auth.Service
	staticDir string
	now       func() time.Time
}

// NewRouter creates a new HTTP router
func NewRouter(store *storage.Store, refresher *refresh.Refresher, authService *auth.Service, staticDir string) *Router {
	r := &Router{
		mux:       http.NewServeMux(),
		store:     store,
		refresher: refresher,
		wsHub:     NewWebSocketHub(),
		auth:      authService,
		staticDir: staticDir,
		now:       time.Now,
	}

	// API routes
	r.mux.HandleFunc("GET /api/summoner", r.handleGetSummoner)
	r.mux.HandleFunc("GET /api/stats/champions", r.handleGetChampionStats)
	r.mux.HandleFunc("GET /api/matches", r.handleGetMatches)
	r.mux.HandleFunc("GET /api/meta/patches", r.handleGetPatches)
	r.mux.HandleFunc("GET /api/meta/modes", r.handleGetModes)

	// Auth routes
	r.mux.HandleFunc("POST /api/auth/login", r.handleLogin)
	r.mux.HandleFunc("GET /api/auth/check", r.handleAuthCheck)

	// Refresh (admin only)
	r.mux.HandleFunc("POST /api/refresh", r.requireAuth(r.handleRefresh))

	// WebSocket endpoint
	r.mux.HandleFunc("GET /ws", r.handleWebSocket)

	// Health check
	r.mux.HandleFunc("GET /health", r.handleHealth)

	// Static files - only serve if staticDir is configured
	if staticDir != "" {
		r.mux.HandleFunc("GET /", r.handleStatic)
	}

	return r
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// CORS headers for API
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if req.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.mux.ServeHTTP(w, req)
}

// StartWebSocketHub starts broadcasting refresh events to WebSocket clients
func (r *Router) StartWebSocketHub() {
	go r.wsHub.Run()

	go func() {
		for event := range r.refresher.Events() {
			r.wsHub.Broadcast(event)
		}
	}()
}

// handleStatic serves the generated dashboard from the output directory
func (r *Router) handleStatic(w http.ResponseWriter, req *http.Request) {
	path := filepath.Clean(req.URL.Path)
	if path == "/" {
		path = "/index.html"
	}

	fullPath := filepath.Join(r.staticDir, path)

	// Security: ensure the path is within staticDir. The separator keeps a
	// sibling like "docs-extra" from passing a "docs" prefix check.
	absStaticDir, _ := filepath.Abs(r.staticDir)
	absPath, _ := filepath.Abs(fullPath)
	if absPath != absStaticDir && !strings.HasPrefix(absPath, absStaticDir+string(os.PathSeparator)) {
		http.NotFound(w, req)
		return
	}

	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		http.NotFound(w, req)
		return
	}

	http.ServeFile(w, req, fullPath)
}

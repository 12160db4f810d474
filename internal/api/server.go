// Package api provides the HTTP API for observing the world.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/curious-world/internal/agents"
	"github.com/talgya/curious-world/internal/engine"
	"github.com/talgya/curious-world/internal/persistence"
	"github.com/talgya/curious-world/internal/world"
)

// Server serves the world state over HTTP.
type Server struct {
	Sim       *engine.Simulation
	Eng       *engine.Engine
	DB        *persistence.Journal // Optional
	Port      int
	AdminKey  string // Bearer token for POST endpoints. Empty = POST disabled.
	Instincts agents.Instincts

	journalLimiter *RateLimiter
}

// Handler builds the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	if s.journalLimiter == nil {
		s.journalLimiter = NewRateLimiter(120, time.Minute)
	}

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/entities", s.handleEntities)
	mux.HandleFunc("/api/v1/entity/", s.handleEntityRoutes)
	mux.HandleFunc("/api/v1/map", s.handleMap)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/stats/history", RateLimitMiddleware(s.journalLimiter, s.handleStatsHistory))
	mux.HandleFunc("/api/v1/runs", RateLimitMiddleware(s.journalLimiter, s.handleRuns))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/intervention", s.adminOnly(s.handleIntervention))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "journal", s.DB != nil)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && token == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no WORLDSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := struct {
		engine.Status
		Speed   float64 `json:"speed"`
		Running bool    `json:"running"`
		RunID   string  `json:"run_id,omitempty"`
	}{Status: s.Sim.Status()}

	if s.Eng != nil {
		status.Speed = s.Eng.Speed()
		status.Running = s.Eng.Running()
	}
	if s.DB != nil {
		status.RunID = s.DB.RunID()
	}
	writeJSON(w, status)
}

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	species := r.URL.Query().Get("species")
	phase := r.URL.Query().Get("phase")

	result := []engine.EntityView{}
	for _, e := range s.Sim.Entities() {
		if species != "" && e.Species != species {
			continue
		}
		if phase != "" && !strings.HasPrefix(e.Phase, phase) {
			continue
		}
		result = append(result, e)
	}
	writeJSON(w, result)
}

// handleEntityRoutes serves /api/v1/entity/:id and /api/v1/entity/:id/perception.
func (s *Server) handleEntityRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 4 || parts[3] == "" {
		http.Error(w, "missing entity id", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(parts[3], 10, 64)
	if err != nil {
		http.Error(w, "invalid entity id", http.StatusBadRequest)
		return
	}

	if len(parts) >= 5 && parts[4] == "perception" {
		p, ok := s.Sim.Perceive(agents.EntityID(id))
		if !ok {
			http.Error(w, "entity not found", http.StatusNotFound)
			return
		}
		writeJSON(w, p)
		return
	}

	e, ok := s.Sim.Entity(agents.EntityID(id))
	if !ok {
		http.Error(w, "entity not found", http.StatusNotFound)
		return
	}
	writeJSON(w, e)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.MapView())
}

// handleEvents serves recent events. With a journal the query goes to the
// run's table (rate limited); otherwise the in-memory history is used.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	category := r.URL.Query().Get("category")

	if s.DB != nil {
		RateLimitMiddleware(s.journalLimiter, func(w http.ResponseWriter, r *http.Request) {
			events, err := s.DB.RecentEvents(limit, category)
			if err != nil {
				slog.Error("event query failed", "error", err)
				http.Error(w, "event query failed", http.StatusInternalServerError)
				return
			}
			if events == nil {
				events = []engine.Event{}
			}
			writeJSON(w, events)
		})(w, r)
		return
	}

	events := []engine.Event{}
	for _, e := range s.Sim.RecentEvents(0) {
		if category != "" && e.Category != category {
			continue
		}
		events = append(events, e)
		if len(events) == limit {
			break
		}
	}
	writeJSON(w, events)
}

func (s *Server) handleStatsHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "journal not available", http.StatusServiceUnavailable)
		return
	}

	limit := 30
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	rows, err := s.DB.StatsHistory(limit)
	if err != nil {
		slog.Error("stats history query failed", "error", err)
		// Empty rather than an error; the table may not have data yet.
		writeJSON(w, []persistence.StatsRow{})
		return
	}
	if rows == nil {
		rows = []persistence.StatsRow{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "journal not available", http.StatusServiceUnavailable)
		return
	}
	runs, err := s.DB.Runs()
	if err != nil {
		slog.Error("run query failed", "error", err)
		http.Error(w, "run query failed", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []persistence.Run{}
	}
	writeJSON(w, runs)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "engine not attached", http.StatusServiceUnavailable)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleIntervention(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Type    string `json:"type"`
		X       int    `json:"x"`
		Y       int    `json:"y"`
		Kind    string `json:"kind,omitempty"`    // provision: food or water
		Amount  uint32 `json:"amount,omitempty"`  // provision
		Species string `json:"species,omitempty"` // introduce
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	pos := world.Position{X: req.X, Y: req.Y}

	switch req.Type {
	case "provision":
		var kind world.CellKind
		switch req.Kind {
		case "food":
			kind = world.CellFood
		case "water":
			kind = world.CellWater
		default:
			http.Error(w, "kind must be food or water", http.StatusBadRequest)
			return
		}
		details, err := s.Sim.Provision(pos, kind, req.Amount)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"success": true, "details": details})

	case "introduce":
		sp, err := agents.ParseSpecies(req.Species)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id, err := s.Sim.Introduce(sp, pos, s.Instincts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		writeJSON(w, map[string]any{"success": true, "id": id})

	default:
		http.Error(w, "type must be provision or introduce", http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

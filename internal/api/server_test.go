package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/curious-world/internal/agents"
	"github.com/talgya/curious-world/internal/config"
	"github.com/talgya/curious-world/internal/engine"
	"github.com/talgya/curious-world/internal/entropy"
	"github.com/talgya/curious-world/internal/persistence"
	"github.com/talgya/curious-world/internal/world"
)

const adminKey = "secret"

func newServer(t *testing.T, withJournal bool) *Server {
	t.Helper()
	cfg := config.Default()
	src := entropy.NewStream(21)
	b := world.Bounds{MinX: cfg.World.MinX, MaxX: cfg.World.MaxX, MinY: cfg.World.MinY, MaxY: cfg.World.MaxY}
	sim := engine.NewSimulation(world.Generate(b, world.DefaultGenConfig(), src), cfg.Rules, cfg.Metabolism, src)
	require.NoError(t, sim.Populate(agents.NewSpawner(src, agents.DefaultInstincts()), cfg.Population))

	s := &Server{Sim: sim, Eng: engine.NewEngine(), AdminKey: adminKey, Instincts: agents.DefaultInstincts()}
	if withJournal {
		j, err := persistence.Open(filepath.Join(t.TempDir(), "journal.db"))
		require.NoError(t, err)
		t.Cleanup(func() { j.Close() })
		_, err = j.StartRun(21, cfg)
		require.NoError(t, err)
		sim.Sink = j
		s.DB = j
	}
	return s
}

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestStatusAndEntities(t *testing.T) {
	s := newServer(t, false)
	s.Sim.Step()
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/v1/status", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), status["tick"])
	assert.Equal(t, float64(1), status["speed"])

	rec = do(t, h, http.MethodGet, "/api/v1/entities?species=carnivore", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]engine.EntityView](t, rec)
	require.NotEmpty(t, list)
	for _, e := range list {
		assert.Equal(t, "carnivore", e.Species)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/entities?species=dragon", "", "")
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestEntityRoutes(t *testing.T) {
	s := newServer(t, false)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/v1/entity/1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	e := decode[engine.EntityView](t, rec)
	assert.Equal(t, agents.EntityID(1), e.ID)

	rec = do(t, h, http.MethodGet, "/api/v1/entity/1/perception", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"walkable"`)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/entity/999", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/entity/abc", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/entity/", "", "").Code)
}

func TestMap(t *testing.T) {
	s := newServer(t, false)
	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/map", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[engine.MapView](t, rec)
	assert.Equal(t, s.Sim.MapView(), view)
}

func TestEventsFromMemory(t *testing.T) {
	s := newServer(t, false)
	for i := 0; i < 10; i++ {
		s.Sim.Step()
	}
	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/events?limit=3", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]engine.Event](t, rec)
	assert.Len(t, events, 3)
	assert.Equal(t, uint64(10), events[0].Tick, "newest first")
}

func TestEventsFromJournal(t *testing.T) {
	s := newServer(t, true)
	for i := 0; i < 5; i++ {
		s.Sim.Step()
	}
	h := s.Handler()
	rec := do(t, h, http.MethodGet, "/api/v1/events?limit=500", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]engine.Event](t, rec)
	assert.Equal(t, len(s.Sim.RecentEvents(500)), len(events))

	rec = do(t, h, http.MethodGet, "/api/v1/runs", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	runs := decode[[]persistence.Run](t, rec)
	require.Len(t, runs, 1)
	assert.Equal(t, s.DB.RunID(), runs[0].ID)
}

func TestStatsHistory(t *testing.T) {
	s := newServer(t, false)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s.Handler(), http.MethodGet, "/api/v1/stats/history", "", "").Code)

	s = newServer(t, true)
	for tick := uint64(1); tick <= 3; tick++ {
		s.Sim.Step()
		require.NoError(t, s.DB.SaveStats(tick, s.Sim.Status().Stats))
	}
	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/stats/history?limit=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]persistence.StatsRow](t, rec)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0].Tick)
	assert.Equal(t, int64(3), rows[1].Tick)
}

func TestSpeedRequiresToken(t *testing.T) {
	s := newServer(t, false)
	h := s.Handler()

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":5}`, "wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":5}`, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":5000}`, adminKey).Code)

	rec := do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":5}`, adminKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5.0, s.Eng.Speed())

	rec = do(t, h, http.MethodGet, "/api/v1/speed", "", "")
	assert.Equal(t, map[string]float64{"speed": 5}, decode[map[string]float64](t, rec))

	s.AdminKey = ""
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodPost, "/api/v1/speed", `{"speed":1}`, "x").Code)
}

func TestInterventions(t *testing.T) {
	s := newServer(t, false)
	h := s.Handler()

	cases := []struct {
		name string
		body string
		code int
	}{
		{"provision food", `{"type":"provision","x":0,"y":0,"kind":"food","amount":12}`, http.StatusOK},
		{"provision bad kind", `{"type":"provision","x":0,"y":0,"kind":"stone","amount":1}`, http.StatusBadRequest},
		{"provision outside", `{"type":"provision","x":500,"y":0,"kind":"water","amount":1}`, http.StatusBadRequest},
		{"introduce unknown species", `{"type":"introduce","x":1,"y":1,"species":"dragon"}`, http.StatusBadRequest},
		{"unknown type", `{"type":"meteor"}`, http.StatusBadRequest},
		{"broken json", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/intervention", tc.body, adminKey)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}

	c, _ := s.Sim.Map.Cell(world.Position{})
	assert.Equal(t, world.CellFood, c.Kind)

	// Find a free cell, introduce there, then collide with it.
	var free world.Position
	held := map[world.Position]bool{}
	for _, e := range s.Sim.Entities() {
		held[e.Pos] = true
	}
	for held[free] {
		free.X++
	}
	body := `{"type":"introduce","x":` + strconv.Itoa(free.X) + `,"y":0,"species":"omnivore"}`
	rec := do(t, h, http.MethodPost, "/api/v1/intervention", body, adminKey)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/api/v1/intervention", body, adminKey).Code)

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/api/v1/intervention", "", "").Code)
}

func TestInterventionAuth(t *testing.T) {
	s := newServer(t, false)
	h := s.Handler()
	body := `{"type":"provision","x":0,"y":0,"kind":"water","amount":3}`
	before, _ := s.Sim.Map.Cell(world.Position{})

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/api/v1/intervention", body, "").Code, "missing token")
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/api/v1/intervention", body, "wrong").Code, "wrong token")
	after, _ := s.Sim.Map.Cell(world.Position{})
	assert.Equal(t, before, after, "rejected requests change nothing")

	s.AdminKey = ""
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodPost, "/api/v1/intervention", body, "anything").Code, "admin disabled")
}

func TestCORS(t *testing.T) {
	s := newServer(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
	assert.Equal(t, 61, rl.RetryAfter("a"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"))
	assert.Zero(t, rl.RetryAfter("nobody"))
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	h := RateLimitMiddleware(rl, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rec := httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	req.Header.Set("X-Forwarded-For", "192.168.1.9, 10.0.0.1")
	assert.Equal(t, "192.168.1.9", clientIP(req))
}

// Package gardener implements the autonomous world steward.
// It observes world state via the API, decides on interventions from fixed
// rules, and acts via the admin intervention endpoint.
package gardener

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/curious-world/internal/engine"
	"github.com/talgya/curious-world/internal/persistence"
)

// WorldSnapshot holds all data collected during an observation cycle.
type WorldSnapshot struct {
	Status   engine.Status          `json:"status"`
	Entities []engine.EntityView    `json:"entities"`
	Map      engine.MapView         `json:"map"`
	History  []persistence.StatsRow `json:"history"` // Oldest first; empty without a journal
}

// Living counts awake and sleeping entities.
func (s *WorldSnapshot) Living() int {
	return s.Status.Stats.Active + s.Status.Stats.Sleeping
}

// Observer fetches world state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches status, entities, the resource map and, when the world
// keeps a journal, the recent census history.
func (o *Observer) Observe() (*WorldSnapshot, error) {
	snap := &WorldSnapshot{}

	if err := o.fetchJSON("/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON("/api/v1/entities", &snap.Entities); err != nil {
		return nil, fmt.Errorf("fetch entities: %w", err)
	}
	if err := o.fetchJSON("/api/v1/map", &snap.Map); err != nil {
		return nil, fmt.Errorf("fetch map: %w", err)
	}
	err := o.fetchJSON("/api/v1/stats/history?limit=10", &snap.History)
	var se *statusError
	switch {
	case err == nil:
	case errors.As(err, &se) && se.code == http.StatusServiceUnavailable:
		snap.History = nil
	default:
		return nil, fmt.Errorf("fetch stats history: %w", err)
	}

	return snap, nil
}

type statusError struct {
	path string
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s returned %d: %s", e.path, e.code, e.body)
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(path string, target any) error {
	resp, err := o.HTTPClient.Get(o.BaseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &statusError{path: path, code: resp.StatusCode, body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

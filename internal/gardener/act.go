package gardener

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// InterventionResult is the response from POST /api/v1/intervention.
type InterventionResult struct {
	Success bool   `json:"success"`
	Details string `json:"details,omitempty"`
	ID      uint64 `json:"id,omitempty"`
}

// Actor executes interventions via the admin API.
type Actor struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL with admin auth.
func NewActor(baseURL, adminKey string) *Actor {
	return &Actor{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Act sends an intervention to POST /api/v1/intervention.
func (a *Actor) Act(intervention *Intervention) (*InterventionResult, error) {
	body, err := json.Marshal(intervention)
	if err != nil {
		return nil, fmt.Errorf("marshal intervention: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, a.BaseURL+"/api/v1/intervention", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.AdminKey)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST intervention: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("intervention failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var result InterventionResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}

// Cycle runs one observe, decide, act pass and records it in mem.
func Cycle(o *Observer, a *Actor, mem *CycleMemory) (*Decision, error) {
	snap, err := o.Observe()
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}
	health := Triage(snap)
	slog.Info("observation complete",
		"tick", snap.Status.Tick,
		"living", health.Living,
		"food_per_capita", fmt.Sprintf("%.1f", health.FoodPerCapita),
		"water_per_capita", fmt.Sprintf("%.1f", health.WaterPerCapita),
		"crisis", health.CrisisLevel,
	)

	decision := Decide(snap, health, mem)
	mem.Record(CycleRecord{
		Tick:           snap.Status.Tick,
		Action:         decision.Action,
		CrisisLevel:    health.CrisisLevel,
		Living:         health.Living,
		FoodPerCapita:  health.FoodPerCapita,
		WaterPerCapita: health.WaterPerCapita,
		Rationale:      decision.Rationale,
	})
	mem.Save()

	if decision.Intervention == nil {
		slog.Info("gardener cycle complete, no intervention", "rationale", decision.Rationale)
		return decision, nil
	}

	result, err := a.Act(decision.Intervention)
	if err != nil {
		return decision, fmt.Errorf("act: %w", err)
	}
	slog.Info("intervention executed",
		"type", decision.Intervention.Type,
		"x", decision.Intervention.X,
		"y", decision.Intervention.Y,
		"rationale", decision.Rationale,
		"details", result.Details,
	)
	return decision, nil
}

package gardener

import (
	"encoding/json"
	"log/slog"
	"os"
)

const maxRecords = 10

// CycleRecord captures what happened in a single gardener cycle.
type CycleRecord struct {
	Tick           uint64  `json:"tick"`
	Action         string  `json:"action"`
	CrisisLevel    string  `json:"crisis_level"`
	Living         int     `json:"living"`
	FoodPerCapita  float64 `json:"food_per_capita"`
	WaterPerCapita float64 `json:"water_per_capita"`
	Rationale      string  `json:"rationale,omitempty"`
}

// CycleMemory manages a ring of recent gardener cycle records.
type CycleMemory struct {
	Records []CycleRecord `json:"records"`

	path string
}

// LoadMemory reads the memory file at path. Returns empty memory if it is
// missing or unreadable.
func LoadMemory(path string) *CycleMemory {
	mem := &CycleMemory{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return mem
	}
	if err := json.Unmarshal(data, mem); err != nil {
		slog.Warn("gardener memory corrupted, starting fresh", "error", err)
		return &CycleMemory{path: path}
	}
	return mem
}

// Save writes the memory to disk. A memory without a path stays in memory.
func (m *CycleMemory) Save() {
	if m.path == "" {
		return
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		slog.Error("failed to marshal gardener memory", "error", err)
		return
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		slog.Error("failed to write gardener memory", "error", err)
	}
}

// Record adds a cycle record, trimming to maxRecords.
func (m *CycleMemory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// Repeats counts how many of the latest records in a row took action.
func (m *CycleMemory) Repeats(action string) int {
	n := 0
	for i := len(m.Records) - 1; i >= 0 && m.Records[i].Action == action; i-- {
		n++
	}
	return n
}

package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/curious-world/internal/agents"
)

// maxRecentEvents bounds the in-memory event history.
const maxRecentEvents = 1000

// Event categories.
const (
	CategoryPlan    = "plan"
	CategoryApply   = "apply"
	CategoryBlocked = "blocked"
	CategoryBirth   = "birth"
	CategoryDeath   = "death"
	CategoryRemoved = "removed"
	CategoryCombat  = "combat"
	CategorySleep   = "sleep"
)

// Event is a notable occurrence in the world. Events are observational only;
// nothing in the simulation reads them back.
type Event struct {
	Tick        uint64          `json:"tick"`
	Level       slog.Level      `json:"level"`
	Category    string          `json:"category"`
	Entity      agents.EntityID `json:"entity,omitempty"`
	Description string          `json:"description"`
}

// EventSink receives each tick's events once the tick is complete.
type EventSink interface {
	Append(events []Event) error
}

func (s *Simulation) record(level slog.Level, category string, id agents.EntityID, format string, args ...any) {
	s.pending = append(s.pending, Event{
		Tick:        s.Tick,
		Level:       level,
		Category:    category,
		Entity:      id,
		Description: fmt.Sprintf(format, args...),
	})
}

// flush hands the tick's events to the sink and the recent-history buffer.
func (s *Simulation) flush() {
	if len(s.pending) == 0 {
		return
	}
	if s.Sink != nil {
		if err := s.Sink.Append(s.pending); err != nil {
			slog.Warn("event sink failed", "tick", s.Tick, "events", len(s.pending), "error", err)
		}
	}
	s.recent = append(s.recent, s.pending...)
	if over := len(s.recent) - maxRecentEvents; over > 0 {
		s.recent = append(s.recent[:0:0], s.recent[over:]...)
	}
	s.pending = s.pending[:0]
}

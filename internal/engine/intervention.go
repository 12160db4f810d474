package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/curious-world/internal/agents"
	"github.com/talgya/curious-world/internal/world"
)

// CategoryIntervention marks changes made from outside the tick loop.
const CategoryIntervention = "intervention"

// Provision drops a resource on a cell between ticks.
func (s *Simulation) Provision(pos world.Position, kind world.CellKind, amount uint32) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Map.InBounds(pos) {
		return "", fmt.Errorf("provision at %v: out of bounds", pos)
	}
	if amount == 0 {
		return "", fmt.Errorf("provision at %v: amount must be positive", pos)
	}
	switch kind {
	case world.CellFood:
		s.Map.AddFood(pos, amount)
	case world.CellWater:
		s.Map.AddWater(pos, amount)
	default:
		return "", fmt.Errorf("provision at %v: %s is not a resource", pos, kind)
	}

	desc := fmt.Sprintf("%d %s appeared at %v", amount, kind, pos)
	s.emit(CategoryIntervention, 0, desc)
	slog.Info("provision intervention", "pos", pos, "kind", kind, "amount", amount)
	return desc, nil
}

// Introduce spawns a full-grown entity of species sp between ticks.
func (s *Simulation) Introduce(sp agents.Species, pos world.Position, in agents.Instincts) (agents.EntityID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	life := agents.Template(sp)
	life.Age = life.MaturityAge
	id, err := s.spawn(agents.BehaviorFor(sp, in), life, pos)
	if err != nil {
		return 0, fmt.Errorf("introduce %s: %w", sp, err)
	}
	s.emit(CategoryIntervention, id, fmt.Sprintf("a %s wandered in at %v", sp, pos))
	s.updateStats()
	slog.Info("introduce intervention", "species", sp, "pos", pos, "id", id)
	return id, nil
}

// emit records and flushes a single out-of-tick event.
func (s *Simulation) emit(category string, id agents.EntityID, desc string) {
	s.record(slog.LevelInfo, category, id, "%s", desc)
	s.flush()
}

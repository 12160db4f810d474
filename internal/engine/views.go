package engine

import (
	"github.com/talgya/curious-world/internal/agents"
	"github.com/talgya/curious-world/internal/world"
)

// EntityView is a read-only copy of a slot for observers.
type EntityView struct {
	ID       agents.EntityID  `json:"id"`
	Species  string           `json:"species"`
	Pos      world.Position   `json:"pos"`
	Phase    string           `json:"phase"`
	Life     agents.LifeState `json:"life"`
	BornTick uint64           `json:"born_tick"`
}

func viewOf(s *Slot) EntityView {
	return EntityView{
		ID:       s.ID,
		Species:  s.Species().String(),
		Pos:      s.Pos,
		Phase:    s.Phase.String(),
		Life:     s.Life,
		BornTick: s.BornTick,
	}
}

// Status is a summary of the simulation.
type Status struct {
	Tick   uint64       `json:"tick"`
	Bounds world.Bounds `json:"bounds"`
	Stats  SimStats     `json:"stats"`
	Last   TickStats    `json:"last_tick"`
}

// Status returns the current summary.
func (s *Simulation) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.Totals
	pop := make(map[string]int, len(st.Population))
	for k, v := range st.Population {
		pop[k] = v
	}
	st.Population = pop
	return Status{Tick: s.Tick, Bounds: s.Map.Bounds(), Stats: st, Last: s.Last}
}

// Entities returns every slot in roster order.
func (s *Simulation) Entities() []EntityView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]EntityView, 0, s.Roster.Len())
	for _, slot := range s.Roster.Slots() {
		out = append(out, viewOf(slot))
	}
	return out
}

// Entity returns one slot.
func (s *Simulation) Entity(id agents.EntityID) (EntityView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.Roster.Get(id)
	if !ok {
		return EntityView{}, false
	}
	return viewOf(slot), true
}

// Perceive builds the perception entity id would get right now.
func (s *Simulation) Perceive(id agents.EntityID) (agents.Perception, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.Roster.Get(id)
	if !ok {
		return agents.Perception{}, false
	}
	return BuildPerception(s.Map, s.Roster, slot.ID, slot.Pos, slot.Life.VisionRadius), true
}

// RecentEvents returns up to limit of the latest events, newest first.
func (s *Simulation) RecentEvents(limit int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.recent) {
		limit = len(s.recent)
	}
	out := make([]Event, 0, limit)
	for i := len(s.recent) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.recent[i])
	}
	return out
}

// MapView is the resource layer for observers.
type MapView struct {
	Bounds    world.Bounds         `json:"bounds"`
	Chunks    []world.ChunkKey     `json:"chunks"`
	Resources []world.ResourceCell `json:"resources"`
}

// MapView returns the allocated chunks and every resource cell.
func (s *Simulation) MapView() MapView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return MapView{
		Bounds:    s.Map.Bounds(),
		Chunks:    s.Map.ChunkKeys(),
		Resources: s.Map.Resources(),
	}
}

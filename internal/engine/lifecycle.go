package engine

import (
	"log/slog"

	"github.com/talgya/curious-world/internal/agents"
)

// tickVitals runs the internal clock of every entity that is still active.
func (s *Simulation) tickVitals() {
	for _, slot := range s.Roster.Slots() {
		if slot.Phase.IsActive() {
			slot.Life.Tick(s.Metabolism)
		}
	}
}

// tickPhases advances sleep and corpse counters, then turns every active
// entity whose health reached zero into a corpse. A sleeper dies when it wakes. A death leaves food worth
// a quarter of the entity's maximum health, never less than CorpseFoodMin.
func (s *Simulation) tickPhases() {
	for _, slot := range s.Roster.Slots() {
		was := slot.Phase
		slot.Phase = slot.Phase.Tick()

		switch {
		case slot.Phase.IsActive() && !slot.Life.Alive():
			slot.Phase = agents.Corpse(s.Rules.CorpseTicks)
			food := max(slot.Life.MaxHealth/4, s.Rules.CorpseFoodMin)
			s.Map.AddFood(slot.Pos, food)
			s.occ.Vacate(slot.Pos, slot.ID)
			s.stats.Deaths++
			s.record(slog.LevelInfo, CategoryDeath, slot.ID, "%s died at %v aged %d, left %d food",
				slot.Species(), slot.Pos, slot.Life.Age, food)
		case was.IsSleeping() && slot.Phase.IsActive():
			s.record(slog.LevelDebug, CategorySleep, slot.ID, "woke at %v", slot.Pos)
		case was.IsCorpse() && slot.Phase.IsRemoved():
			s.record(slog.LevelInfo, CategoryRemoved, slot.ID, "corpse at %v decayed", slot.Pos)
		}
	}
}

// admitNewborns appends the children born this tick. They act from the next
// tick on.
func (s *Simulation) admitNewborns() {
	for _, child := range s.newborns {
		s.Roster.Add(child)
	}
	s.newborns = s.newborns[:0]
}

package engine

import (
	"log/slog"

	"github.com/talgya/curious-world/internal/agents"
	"github.com/talgya/curious-world/internal/world"
)

// resolveMates handles mating requests in decision order. Both partners must
// be active, touching and eligible, and the target needs a free walkable
// neighbor for the child. A failed request costs nobody anything.
func (s *Simulation) resolveMates(reqs []pairing) {
	for _, r := range reqs {
		a, okA := s.Roster.Get(r.id)
		b, okB := s.Roster.Get(r.target)
		if !okA || !okB || a == b {
			s.record(slog.LevelDebug, CategoryBlocked, r.id, "mate with unknown entity %d", r.target)
			continue
		}
		if !a.Phase.IsActive() || !b.Phase.IsActive() || a.Pos.Chebyshev(b.Pos) > 1 {
			s.record(slog.LevelDebug, CategoryBlocked, r.id, "mate with %d out of reach", r.target)
			continue
		}
		minEnergy := s.Rules.ReproductionMinEnergy
		if !a.Life.CanReproduce(minEnergy) || !b.Life.CanReproduce(minEnergy) {
			s.record(slog.LevelDebug, CategoryBlocked, r.id, "mate with %d not eligible", r.target)
			continue
		}
		cell, ok := s.birthCell(b.Pos)
		if !ok {
			s.record(slog.LevelDebug, CategoryBlocked, r.id, "no room for a child next to %d", r.target)
			continue
		}

		child := b.Behavior.SpawnOffspring(b.Life)
		a.Life.OnReproduce(s.Rules.ReproductionCooldown, s.Rules.ReproductionEnergyCost)
		b.Life.OnReproduce(s.Rules.ReproductionCooldown, s.Rules.ReproductionEnergyCost)

		id := s.Roster.NextID()
		s.newborns = append(s.newborns, &Slot{
			ID:       id,
			Pos:      cell,
			Phase:    agents.Active(),
			Life:     child,
			Behavior: b.Behavior,
			BornTick: s.Tick,
		})
		s.occ.Claim(cell, id)
		s.stats.Births++
		s.record(slog.LevelInfo, CategoryBirth, id, "%s born to %d and %d at %v", b.Species(), a.ID, b.ID, cell)
	}
}

// birthCell returns the first neighbor of p, in Directions order, that is
// walkable and unoccupied.
func (s *Simulation) birthCell(p world.Position) (world.Position, bool) {
	for _, d := range world.Directions {
		c := p.Add(d)
		if !s.Map.Walkable(c) {
			continue
		}
		if _, taken := s.occ.At(c); taken {
			continue
		}
		return c, true
	}
	return world.Position{}, false
}

// resolveAttacks applies attacks in decision order against active targets
// within one cell.
func (s *Simulation) resolveAttacks(reqs []pairing) {
	for _, r := range reqs {
		a, okA := s.Roster.Get(r.id)
		t, okT := s.Roster.Get(r.target)
		if !okA || !okT || a == t {
			s.record(slog.LevelDebug, CategoryBlocked, r.id, "attack on unknown entity %d", r.target)
			continue
		}
		if !a.Phase.IsActive() || !t.Phase.IsActive() || a.Pos.Chebyshev(t.Pos) > 1 {
			s.record(slog.LevelDebug, CategoryBlocked, r.id, "attack on %d out of reach", r.target)
			continue
		}
		a.Life.ConsumeEnergy(s.Rules.AttackEnergyCost)
		t.Life.TakeDamage(s.Rules.AttackDamage)
		s.stats.Attacks++
		s.record(slog.LevelInfo, CategoryCombat, r.id, "%s %d hit %s %d (health %d)",
			a.Species(), a.ID, t.Species(), t.ID, t.Life.Health)
	}
}

// resolveSleeps puts still-active requesters to sleep.
func (s *Simulation) resolveSleeps(reqs []sleepPlan) {
	for _, r := range reqs {
		slot, ok := s.Roster.Get(r.id)
		if !ok || !slot.Phase.IsActive() {
			continue
		}
		slot.Phase = agents.Sleeping(r.duration)
		s.record(slog.LevelDebug, CategorySleep, r.id, "sleeps for %d ticks at %v", r.duration, slot.Pos)
	}
}

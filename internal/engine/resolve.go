package engine

import (
	"log/slog"
	"sort"

	"github.com/talgya/curious-world/internal/agents"
	"github.com/talgya/curious-world/internal/world"
)

// arbitrate keeps one plan per destination, the one with the lowest entity
// id, and returns the winners in increasing id order.
func (s *Simulation) arbitrate(ps []plan) []plan {
	if len(ps) == 0 {
		return nil
	}
	best := make(map[world.Position]plan, len(ps))
	for _, p := range ps {
		if cur, ok := best[p.dest]; !ok || p.id < cur.id {
			best[p.dest] = p
		}
	}
	winners := make([]plan, 0, len(best))
	for _, p := range ps {
		if best[p.dest].id == p.id {
			winners = append(winners, p)
		} else {
			s.record(slog.LevelDebug, CategoryBlocked, p.id, "%s to %v lost to %d", p.kind, p.dest, best[p.dest].id)
			s.stats.Blocked++
		}
	}
	sort.Slice(winners, func(i, j int) bool { return winners[i].id < winners[j].id })
	return winners
}

// applyPlans arbitrates a category and applies its winners. A winner whose
// destination is held by someone else in the live index does nothing.
func (s *Simulation) applyPlans(ps []plan) {
	for _, p := range s.arbitrate(ps) {
		slot, ok := s.Roster.Get(p.id)
		if !ok || !slot.Phase.IsActive() {
			continue
		}
		if !s.occ.Free(p.dest, p.id) {
			holder, _ := s.occ.At(p.dest)
			s.record(slog.LevelDebug, CategoryBlocked, p.id, "%s to %v rejected, occupied by %d", p.kind, p.dest, holder)
			s.stats.Blocked++
			continue
		}
		s.relocate(slot, p.dest, p.cost)
		switch p.kind {
		case agents.IntentEat:
			s.feed(slot, p.corpse)
		case agents.IntentDrink:
			s.drink(slot)
		default:
			s.record(slog.LevelDebug, CategoryApply, p.id, "%s to %v", p.kind, p.dest)
		}
	}
}

func (s *Simulation) relocate(slot *Slot, dest world.Position, cost uint32) {
	if dest == slot.Pos {
		return
	}
	s.occ.Vacate(slot.Pos, slot.ID)
	slot.Pos = dest
	slot.Life.OnMove(cost)
	s.occ.Claim(dest, slot.ID)
	s.stats.Moves++
}

// feed transfers food under the entity into energy. The transfer is capped by
// the resource cap, the cell and the entity's room, and the cell loses
// exactly what the entity gains. A bite that empties a corpse's cell
// consumes the corpse.
func (s *Simulation) feed(slot *Slot, corpseID agents.EntityID) {
	c, _ := s.Map.Cell(slot.Pos)
	if c.Kind != world.CellFood {
		s.record(slog.LevelDebug, CategoryBlocked, slot.ID, "no food at %v", slot.Pos)
		return
	}
	granted := min(s.Rules.ResourceCap, c.Amount, slot.Life.EnergyRoom())
	if granted == 0 {
		return
	}
	s.Map.ReduceAmount(slot.Pos, granted)
	slot.Life.RestoreEnergy(granted)
	s.record(slog.LevelDebug, CategoryApply, slot.ID, "ate %d at %v", granted, slot.Pos)

	if corpseID == 0 {
		return
	}
	if after, _ := s.Map.Cell(slot.Pos); after.Kind == world.CellFood {
		return
	}
	if corpse, ok := s.Roster.Get(corpseID); ok && corpse.Phase.IsCorpse() && corpse.Pos == slot.Pos {
		corpse.Phase = agents.Removed()
		s.record(slog.LevelInfo, CategoryRemoved, corpseID, "corpse at %v picked clean by %d", slot.Pos, slot.ID)
	}
}

// drink transfers water under the entity, with the same caps as feed.
func (s *Simulation) drink(slot *Slot) {
	c, _ := s.Map.Cell(slot.Pos)
	if c.Kind != world.CellWater {
		s.record(slog.LevelDebug, CategoryBlocked, slot.ID, "no water at %v", slot.Pos)
		return
	}
	granted := min(s.Rules.ResourceCap, c.Amount, slot.Life.WaterRoom())
	if granted == 0 {
		return
	}
	s.Map.ReduceAmount(slot.Pos, granted)
	slot.Life.RestoreWater(granted)
	s.record(slog.LevelDebug, CategoryApply, slot.ID, "drank %d at %v", granted, slot.Pos)
}

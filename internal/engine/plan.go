package engine

import (
	"log/slog"

	"github.com/talgya/curious-world/internal/agents"
	"github.com/talgya/curious-world/internal/entropy"
	"github.com/talgya/curious-world/internal/world"
)

// decision is one entity's intent for the tick.
type decision struct {
	id     agents.EntityID
	intent agents.Intent
}

// plan is a movement-bearing intent walked out to its destination.
type plan struct {
	id     agents.EntityID
	kind   agents.IntentKind
	dest   world.Position
	cost   uint32
	corpse agents.EntityID // Eat only
}

// pairing is a Mate or Attack request.
type pairing struct {
	id     agents.EntityID
	target agents.EntityID
}

type sleepPlan struct {
	id       agents.EntityID
	duration uint32
}

// plans holds the tick's intents sorted into resolution categories.
type plans struct {
	moves   []plan
	eats    []plan
	drinks  []plan
	flees   []plan
	mates   []pairing
	attacks []pairing
	sleeps  []sleepPlan
}

// collect asks every active entity for an intent. All perceptions are built
// from the state at the start of the tick, in roster order; each draws one
// random word from the source.
func (s *Simulation) collect() []decision {
	var out []decision
	for _, slot := range s.Roster.Slots() {
		if !slot.Phase.IsActive() {
			continue
		}
		p := BuildPerception(s.Map, s.Roster, slot.ID, slot.Pos, slot.Life.VisionRadius)
		p.Roll = s.src.Uint64()
		out = append(out, decision{id: slot.ID, intent: slot.Behavior.Decide(slot.Life, p)})
	}
	return out
}

// classify turns intents into plans. Randomness for idle wandering is drawn
// here, in decision order.
func (s *Simulation) classify(decisions []decision) plans {
	var ps plans
	for _, d := range decisions {
		slot, ok := s.Roster.Get(d.id)
		if !ok {
			continue
		}
		in := d.intent
		switch in.Kind {
		case agents.IntentMove:
			if len(in.Steps) == 0 {
				continue
			}
			dest, cost := s.walk(slot, in.Steps)
			if cost == 0 {
				s.record(slog.LevelDebug, CategoryBlocked, d.id, "move %s blocked at %v", in.Steps, slot.Pos)
				continue
			}
			ps.moves = append(ps.moves, plan{id: d.id, kind: in.Kind, dest: dest, cost: cost})
		case agents.IntentEat:
			dest, cost := s.walk(slot, in.Steps)
			ps.eats = append(ps.eats, plan{id: d.id, kind: in.Kind, dest: dest, cost: cost, corpse: in.Target})
		case agents.IntentDrink:
			dest, cost := s.walk(slot, in.Steps)
			ps.drinks = append(ps.drinks, plan{id: d.id, kind: in.Kind, dest: dest, cost: cost})
		case agents.IntentMate:
			ps.mates = append(ps.mates, pairing{id: d.id, target: in.Target})
		case agents.IntentAttack:
			ps.attacks = append(ps.attacks, pairing{id: d.id, target: in.Target})
		case agents.IntentFlee:
			if p, ok := s.fleePlan(slot, in.Target); ok {
				ps.flees = append(ps.flees, p)
			}
		case agents.IntentSleep:
			ps.sleeps = append(ps.sleeps, sleepPlan{id: d.id, duration: in.Duration})
		case agents.IntentIdle:
			if p, ok := s.idlePlan(slot); ok {
				ps.moves = append(ps.moves, p)
			} else if s.Tick%5 == 0 {
				s.record(slog.LevelDebug, CategoryPlan, d.id, "idle at %v", slot.Pos)
			}
			continue
		}
		s.record(slog.LevelDebug, CategoryPlan, d.id, "%s from %v", in, slot.Pos)
	}
	return ps
}

// walk follows steps until the next cell is not walkable or the movement
// budget is spent. It returns where the entity ends up and the points used.
func (s *Simulation) walk(slot *Slot, steps world.Steps) (world.Position, uint32) {
	pos := slot.Pos
	var cost uint32
	for _, d := range steps {
		next := pos.Add(d)
		if !s.Map.Walkable(next) || !slot.Life.CanMoveFor(cost+1) {
			break
		}
		pos = next
		cost++
	}
	return pos, cost
}

// fleePlan steps away from the threat as long as movement points last. Each
// step takes the walkable neighbor that increases the Manhattan distance the
// most, ties going to Directions order. When no neighbor gains distance the
// step goes to the first walkable neighbor instead; the walk ends early only
// when no neighbor is walkable.
func (s *Simulation) fleePlan(slot *Slot, threatID agents.EntityID) (plan, bool) {
	threat, ok := s.Roster.Get(threatID)
	if !ok || threat.Phase.IsRemoved() || threat.ID == slot.ID {
		s.record(slog.LevelDebug, CategoryBlocked, slot.ID, "flee from unknown entity %d", threatID)
		return plan{}, false
	}
	from := threat.Pos
	pos := slot.Pos
	var cost uint32
	for slot.Life.CanMoveFor(cost + 1) {
		best, bestDist, found := pos, pos.Manhattan(from), false
		for _, d := range world.Directions {
			c := pos.Add(d)
			if s.Map.Walkable(c) && c.Manhattan(from) > bestDist {
				best, bestDist, found = c, c.Manhattan(from), true
			}
		}
		if found {
			pos = best
			cost++
			continue
		}
		stepped := false
		for _, d := range world.Directions {
			if c := pos.Add(d); s.Map.Walkable(c) {
				pos = c
				cost++
				stepped = true
				break
			}
		}
		if !stepped {
			break
		}
	}
	if cost == 0 {
		return plan{}, false
	}
	return plan{id: slot.ID, kind: agents.IntentFlee, dest: pos, cost: cost}, true
}

// idlePlan rolls the idle wander chance and, on success, tries up to eight
// random directions for a single step.
func (s *Simulation) idlePlan(slot *Slot) (plan, bool) {
	if !entropy.Chance(s.src, s.Rules.IdleMoveChance) || !slot.Life.CanMoveFor(1) {
		return plan{}, false
	}
	for i := 0; i < len(world.Directions); i++ {
		d := world.Directions[entropy.Intn(s.src, len(world.Directions))]
		if c := slot.Pos.Add(d); s.Map.Walkable(c) {
			return plan{id: slot.ID, kind: agents.IntentMove, dest: c, cost: 1}, true
		}
	}
	return plan{}, false
}

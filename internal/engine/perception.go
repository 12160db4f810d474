package engine

import (
	"github.com/talgya/curious-world/internal/agents"
	"github.com/talgya/curious-world/internal/world"
)

// BuildPerception gathers what the entity selfID at selfPos can sense within
// radius: reachable food and water, other active entities it has a path to,
// and how far it can walk in each direction. It only reads.
func BuildPerception(m *world.Map, r *Roster, selfID agents.EntityID, selfPos world.Position, radius int) agents.Perception {
	tree := m.PathsFrom(selfPos, radius)

	var p agents.Perception
	p.Walkable = m.WalkableDistances(selfPos)
	p.Waters = tree.ScanResources(m, world.CellWater)

	foods := tree.ScanResources(m, world.CellFood)
	if len(foods) > 0 {
		corpses := make(map[world.Position]agents.EntityID)
		for _, s := range r.Slots() {
			if !s.Phase.IsCorpse() || selfPos.Manhattan(s.Pos) > radius {
				continue
			}
			if _, seen := corpses[s.Pos]; !seen {
				corpses[s.Pos] = s.ID
			}
		}
		p.Foods = make([]agents.FoodSighting, len(foods))
		for i, f := range foods {
			p.Foods[i] = agents.FoodSighting{ResourceSighting: f, Corpse: corpses[f.Pos]}
		}
	}

	for _, s := range r.Slots() {
		if s.ID == selfID || !s.Phase.IsActive() || selfPos.Manhattan(s.Pos) > radius {
			continue
		}
		steps, ok := tree.Steps(s.Pos)
		if !ok {
			continue
		}
		p.Entities = append(p.Entities, agents.EntitySighting{
			ID:       s.ID,
			Species:  s.Species(),
			Strength: s.Life.Strength(),
			Steps:    steps,
		})
	}
	return p
}

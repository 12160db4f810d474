package gardener

import (
	"fmt"
	"strings"

	"github.com/talgya/curious-world/internal/world"
)

// provisionAmount is the size of one food or water drop.
const provisionAmount = 25

// maxRepeats is how many cycles in a row the gardener may take the same
// action before it steps back for one cycle.
const maxRepeats = 3

// Decision represents the gardener's chosen action.
type Decision struct {
	Action       string        `json:"action"`
	Rationale    string        `json:"rationale"`
	Intervention *Intervention `json:"intervention"`
}

// Intervention is the payload for POST /api/v1/intervention.
type Intervention struct {
	Type    string `json:"type"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Kind    string `json:"kind,omitempty"`
	Amount  uint32 `json:"amount,omitempty"`
	Species string `json:"species,omitempty"`
}

// Decide picks zero or one intervention. Repopulation comes first, then food,
// then water. Anything healthier is left alone.
func Decide(snap *WorldSnapshot, h *WorldHealth, mem *CycleMemory) *Decision {
	d := choose(snap, h)
	if d.Intervention == nil {
		return d
	}
	if mem != nil && mem.Repeats(d.Action) >= maxRepeats {
		return &Decision{
			Action:    "none",
			Rationale: fmt.Sprintf("%s taken %d cycles running; letting the world settle", d.Action, maxRepeats),
		}
	}
	return d
}

func choose(snap *WorldSnapshot, h *WorldHealth) *Decision {
	occupied := make(map[world.Position]bool)
	for _, e := range snap.Entities {
		if living(e.Phase) {
			occupied[e.Pos] = true
		}
	}
	resources := make(map[world.Position]world.CellKind, len(snap.Map.Resources))
	for _, r := range snap.Map.Resources {
		resources[r.Pos] = r.Cell.Kind
	}
	center := centroid(snap)

	introduce := func(species, why string) *Decision {
		pos, ok := nearestCell(snap.Status.Bounds, center, func(p world.Position) bool { return !occupied[p] })
		if !ok {
			return &Decision{Action: "none", Rationale: why + ", but no free cell"}
		}
		return &Decision{
			Action:       "introduce",
			Rationale:    why,
			Intervention: &Intervention{Type: "introduce", X: pos.X, Y: pos.Y, Species: species},
		}
	}
	provision := func(kind string, avoid world.CellKind, why string) *Decision {
		pos, ok := nearestCell(snap.Status.Bounds, center, func(p world.Position) bool { return resources[p] != avoid })
		if !ok {
			return &Decision{Action: "none", Rationale: why + ", but no cell to drop on"}
		}
		return &Decision{
			Action:       "provision",
			Rationale:    why,
			Intervention: &Intervention{Type: "provision", X: pos.X, Y: pos.Y, Kind: kind, Amount: provisionAmount},
		}
	}

	switch {
	case h.Living == 0:
		return introduce("herbivore", "nothing is alive")
	case len(h.Extinct) > 0:
		return introduce(h.Extinct[0], h.Extinct[0]+" died out")
	case h.FoodPerCapita < foodPerCapitaMin:
		return provision("food", world.CellWater, fmt.Sprintf("%.1f food per creature", h.FoodPerCapita))
	case h.WaterPerCapita < waterPerCapitaMin:
		return provision("water", world.CellFood, fmt.Sprintf("%.1f water per creature", h.WaterPerCapita))
	}
	return &Decision{Action: "none", Rationale: "world is " + strings.ToLower(h.CrisisLevel)}
}

func living(phase string) bool {
	return phase == "active" || strings.HasPrefix(phase, "sleeping")
}

// centroid is the mean position of the living, or the middle of the world
// when nothing lives.
func centroid(snap *WorldSnapshot) world.Position {
	var sx, sy, n int
	for _, e := range snap.Entities {
		if living(e.Phase) {
			sx += e.Pos.X
			sy += e.Pos.Y
			n++
		}
	}
	if n == 0 {
		b := snap.Status.Bounds
		return world.Position{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
	}
	return world.Position{X: sx / n, Y: sy / n}
}

// nearestCell searches square rings around from, row-major within a ring,
// for the first in-bounds cell accepted by ok.
func nearestCell(b world.Bounds, from world.Position, ok func(world.Position) bool) (world.Position, bool) {
	reach := max(abs(from.X-b.MinX), abs(from.X-b.MaxX), abs(from.Y-b.MinY), abs(from.Y-b.MaxY))
	for r := 0; r <= reach; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				p := world.Position{X: from.X + dx, Y: from.Y + dy}
				if b.Contains(p) && ok(p) {
					return p, true
				}
			}
		}
	}
	return world.Position{}, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

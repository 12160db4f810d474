package agents

import "github.com/talgya/curious-world/internal/world"

// FoodSighting is a reachable food cell. Corpse is set when the food lies
// under a corpse.
type FoodSighting struct {
	world.ResourceSighting
	Corpse EntityID `json:"corpse,omitempty"`
}

// EntitySighting is another active entity within reach.
type EntitySighting struct {
	ID       EntityID    `json:"id"`
	Species  Species     `json:"species"`
	Strength uint32      `json:"strength"` // Health + energy
	Steps    world.Steps `json:"steps"`
}

// Adjacent reports whether the sighted entity touches the observer.
func (e EntitySighting) Adjacent() bool { return len(e.Steps) <= 1 }

// Perception is what an entity knows when it decides. It is taken before the
// tick changes anything.
type Perception struct {
	Foods    []FoodSighting           `json:"foods"`
	Waters   []world.ResourceSighting `json:"waters"`
	Entities []EntitySighting         `json:"entities"`
	Walkable [8]int                   `json:"walkable"` // Indexed like world.Directions
	Roll     uint64                   `json:"-"`        // Random word for this decision
}

package engine

import (
	"fmt"

	"github.com/kamstrup/intmap"

	"github.com/talgya/curious-world/internal/agents"
	"github.com/talgya/curious-world/internal/world"
)

// Occupancy maps cells to the entity standing on them. Living entities,
// awake or asleep, block their cell; corpses and removed entities do not.
type Occupancy struct {
	cells *intmap.Map[uint64, agents.EntityID]
}

func packPos(p world.Position) uint64 {
	return uint64(uint32(int32(p.X)))<<32 | uint64(uint32(int32(p.Y)))
}

// blocks reports whether a slot in this phase holds its cell.
func blocks(p agents.Phase) bool {
	return p.IsActive() || p.IsSleeping()
}

// SnapshotOccupancy builds the index from the roster. Two living entities on
// one cell is a programming error.
func SnapshotOccupancy(r *Roster) *Occupancy {
	o := &Occupancy{cells: intmap.New[uint64, agents.EntityID](max(r.Len(), 16))}
	for _, s := range r.Slots() {
		if !blocks(s.Phase) {
			continue
		}
		if other, taken := o.At(s.Pos); taken {
			panic(fmt.Sprintf("engine: entities %d and %d share cell %v", other, s.ID, s.Pos))
		}
		o.Claim(s.Pos, s.ID)
	}
	return o
}

// At returns the occupant of p.
func (o *Occupancy) At(p world.Position) (agents.EntityID, bool) {
	return o.cells.Get(packPos(p))
}

// Free reports whether nobody stands on p, or only id does.
func (o *Occupancy) Free(p world.Position, id agents.EntityID) bool {
	holder, ok := o.At(p)
	return !ok || holder == id
}

// Claim records id on p.
func (o *Occupancy) Claim(p world.Position, id agents.EntityID) {
	o.cells.Put(packPos(p), id)
}

// Vacate clears p if id holds it.
func (o *Occupancy) Vacate(p world.Position, id agents.EntityID) {
	if holder, ok := o.At(p); ok && holder == id {
		o.cells.Del(packPos(p))
	}
}

// Len returns the number of occupied cells.
func (o *Occupancy) Len() int {
	return o.cells.Len()
}

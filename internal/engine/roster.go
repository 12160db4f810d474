package engine

import (
	"fmt"

	"github.com/kamstrup/intmap"

	"github.com/talgya/curious-world/internal/agents"
	"github.com/talgya/curious-world/internal/world"
)

// Slot is one entity: where it stands, its lifecycle phase, its vital stats
// and the policy that decides for it.
type Slot struct {
	ID       agents.EntityID
	Pos      world.Position
	Phase    agents.Phase
	Life     agents.LifeState
	Behavior agents.Behavior
	BornTick uint64
}

// Species returns the kind tag of the slot's behavior.
func (s *Slot) Species() agents.Species {
	return s.Behavior.Species()
}

// Roster is the entity arena: slots in insertion order plus an id → index
// table. IDs are handed out monotonically and never reused.
type Roster struct {
	slots  []*Slot
	index  *intmap.Map[agents.EntityID, int]
	nextID agents.EntityID
}

// NewRoster creates an empty roster. The first issued id is 1.
func NewRoster() *Roster {
	return &Roster{
		index:  intmap.New[agents.EntityID, int](256),
		nextID: 1,
	}
}

// NextID reserves a fresh id.
func (r *Roster) NextID() agents.EntityID {
	id := r.nextID
	r.nextID++
	return id
}

// Add appends a slot. A zero or already present id is a programming error.
func (r *Roster) Add(s *Slot) {
	if s.ID == 0 {
		panic("engine: slot with zero id")
	}
	if _, dup := r.index.Get(s.ID); dup {
		panic(fmt.Sprintf("engine: duplicate entity id %d", s.ID))
	}
	if s.Behavior == nil {
		panic(fmt.Sprintf("engine: entity %d has no behavior", s.ID))
	}
	r.index.Put(s.ID, len(r.slots))
	r.slots = append(r.slots, s)
	if s.ID >= r.nextID {
		r.nextID = s.ID + 1
	}
}

// Get resolves an id.
func (r *Roster) Get(id agents.EntityID) (*Slot, bool) {
	i, ok := r.index.Get(id)
	if !ok {
		return nil, false
	}
	return r.slots[i], true
}

// Slots returns the slots in roster order. The slice must not be modified.
func (r *Roster) Slots() []*Slot {
	return r.slots
}

// Len returns the number of slots, removed ones included until purged.
func (r *Roster) Len() int {
	return len(r.slots)
}

// Purge drops every Removed slot and compacts the arena, keeping order.
// It returns the number of slots dropped.
func (r *Roster) Purge() int {
	kept := r.slots[:0]
	dropped := 0
	for _, s := range r.slots {
		if s.Phase.IsRemoved() {
			r.index.Del(s.ID)
			dropped++
			continue
		}
		kept = append(kept, s)
	}
	for i := len(kept); i < len(r.slots); i++ {
		r.slots[i] = nil
	}
	r.slots = kept
	if dropped > 0 {
		for i, s := range r.slots {
			r.index.Put(s.ID, i)
		}
	}
	return dropped
}

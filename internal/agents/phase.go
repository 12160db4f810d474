package agents

import "fmt"

// PhaseKind is the lifecycle stage of an entity.
type PhaseKind uint8

const (
	PhaseActive PhaseKind = iota
	PhaseSleeping
	PhaseCorpse
	PhaseRemoved
)

func (k PhaseKind) String() string {
	switch k {
	case PhaseActive:
		return "active"
	case PhaseSleeping:
		return "sleeping"
	case PhaseCorpse:
		return "corpse"
	case PhaseRemoved:
		return "removed"
	}
	return fmt.Sprintf("PhaseKind(%d)", uint8(k))
}

// Phase is a lifecycle stage plus the ticks left in it for Sleeping and Corpse.
type Phase struct {
	Kind      PhaseKind `json:"kind"`
	Remaining uint32    `json:"remaining,omitempty"`
}

// Active returns the active phase.
func Active() Phase { return Phase{Kind: PhaseActive} }

// Sleeping returns a sleep lasting d ticks.
func Sleeping(d uint32) Phase { return Phase{Kind: PhaseSleeping, Remaining: d} }

// Corpse returns a corpse that is removed after n ticks.
func Corpse(n uint32) Phase { return Phase{Kind: PhaseCorpse, Remaining: n} }

// Removed returns the terminal phase.
func Removed() Phase { return Phase{Kind: PhaseRemoved} }

func (p Phase) IsActive() bool   { return p.Kind == PhaseActive }
func (p Phase) IsSleeping() bool { return p.Kind == PhaseSleeping }
func (p Phase) IsCorpse() bool   { return p.Kind == PhaseCorpse }
func (p Phase) IsRemoved() bool  { return p.Kind == PhaseRemoved }

// Tick advances the phase by one tick. A sleeper at zero wakes on the next
// tick; a corpse counts its remaining ticks down and is removed when they
// run out.
func (p Phase) Tick() Phase {
	switch p.Kind {
	case PhaseSleeping:
		if p.Remaining == 0 {
			return Active()
		}
		return Sleeping(p.Remaining - 1)
	case PhaseCorpse:
		if p.Remaining <= 1 {
			return Removed()
		}
		return Corpse(p.Remaining - 1)
	}
	return p
}

func (p Phase) String() string {
	switch p.Kind {
	case PhaseSleeping, PhaseCorpse:
		return fmt.Sprintf("%s(%d)", p.Kind, p.Remaining)
	}
	return p.Kind.String()
}

// Species behaviors: instinct-driven decision policies.
// Every tick an active entity evaluates its instincts against its perception
// and returns one intent.
package agents

import (
	"fmt"

	"github.com/talgya/curious-world/internal/world"
)

// Behavior is a species decision policy. Implementations are pure: they see
// copies of the entity's state and perception and change nothing.
type Behavior interface {
	Species() Species
	Decide(life LifeState, p Perception) Intent
	SpawnOffspring(parent LifeState) LifeState
}

// BehaviorFor returns the stock behavior of a species.
func BehaviorFor(s Species, in Instincts) Behavior {
	switch s {
	case Herbivore:
		return HerbivoreBehavior{Instincts: in}
	case Carnivore:
		return CarnivoreBehavior{Instincts: in}
	case Omnivore:
		return OmnivoreBehavior{Instincts: in}
	}
	panic(fmt.Sprintf("agents: no behavior for %s", s))
}

// HerbivoreBehavior grazes plant food, flees every predator and sleeps off
// its wounds.
type HerbivoreBehavior struct{ Instincts }

func (HerbivoreBehavior) Species() Species { return Herbivore }

func (b HerbivoreBehavior) Decide(life LifeState, p Perception) Intent {
	d := b.Evaluate(Herbivore, life, p)
	switch d.Instinct {
	case InstinctThreat:
		return Flee(d.Threat.ID)
	case InstinctSurvival:
		return forage(life, p, plantFood)
	case InstinctThirst:
		return drinkOr(p, func() Intent { return wander(life, p) })
	case InstinctHunger:
		return eatOr(p, plantFood, func() Intent { return wander(life, p) })
	case InstinctRest:
		return Sleep(b.RestTicks)
	case InstinctMating:
		return court(life, d.Mate)
	}
	return Idle(1)
}

func (HerbivoreBehavior) SpawnOffspring(parent LifeState) LifeState { return offspring(parent) }

// CarnivoreBehavior scavenges corpses, hunts prey when none are around and
// stands its ground against weaker threats.
type CarnivoreBehavior struct{ Instincts }

func (CarnivoreBehavior) Species() Species { return Carnivore }

func (b CarnivoreBehavior) Decide(life LifeState, p Perception) Intent {
	d := b.Evaluate(Carnivore, life, p)
	switch d.Instinct {
	case InstinctThreat:
		return confront(life, d)
	case InstinctSurvival, InstinctHunger:
		return eatOr(p, carrion, func() Intent { return hunt(life, p, Carnivore) })
	case InstinctThirst:
		return drinkOr(p, func() Intent { return wander(life, p) })
	case InstinctRest:
		return Sleep(b.RestTicks)
	case InstinctMating:
		return court(life, d.Mate)
	}
	return Idle(1)
}

func (CarnivoreBehavior) SpawnOffspring(parent LifeState) LifeState { return offspring(parent) }

// OmnivoreBehavior eats whatever food is nearest and hunts only when there
// is none.
type OmnivoreBehavior struct{ Instincts }

func (OmnivoreBehavior) Species() Species { return Omnivore }

func (b OmnivoreBehavior) Decide(life LifeState, p Perception) Intent {
	d := b.Evaluate(Omnivore, life, p)
	switch d.Instinct {
	case InstinctThreat:
		return confront(life, d)
	case InstinctSurvival:
		return forage(life, p, anyFood)
	case InstinctThirst:
		return drinkOr(p, func() Intent { return wander(life, p) })
	case InstinctHunger:
		return eatOr(p, anyFood, func() Intent { return hunt(life, p, Omnivore) })
	case InstinctRest:
		return Sleep(b.RestTicks)
	case InstinctMating:
		return court(life, d.Mate)
	}
	return Idle(1)
}

func (OmnivoreBehavior) SpawnOffspring(parent LifeState) LifeState { return offspring(parent) }

// offspring starts a child with the parent's genetics at half of each maximum.
func offspring(parent LifeState) LifeState {
	return LifeState{
		MaxAge:       parent.MaxAge,
		MaturityAge:  parent.MaturityAge,
		MaxHealth:    parent.MaxHealth,
		MaxEnergy:    parent.MaxEnergy,
		MaxWater:     parent.MaxWater,
		VisionRadius: parent.VisionRadius,
		Speed:        parent.Speed,
		Health:       parent.MaxHealth / 2,
		Energy:       parent.MaxEnergy / 2,
		Water:        parent.MaxWater / 2,
	}
}

func plantFood(f FoodSighting) bool { return f.Corpse == 0 }
func carrion(f FoodSighting) bool   { return f.Corpse != 0 }
func anyFood(FoodSighting) bool     { return true }

// forage serves whichever of water and energy is lower, then the other.
func forage(life LifeState, p Perception, edible func(FoodSighting) bool) Intent {
	fallback := func() Intent { return wander(life, p) }
	if ratio(life.Water, life.MaxWater) < ratio(life.Energy, life.MaxEnergy) {
		return drinkOr(p, func() Intent { return eatOr(p, edible, fallback) })
	}
	return eatOr(p, edible, func() Intent { return drinkOr(p, fallback) })
}

func eatOr(p Perception, edible func(FoodSighting) bool, otherwise func() Intent) Intent {
	var best *FoodSighting
	for i := range p.Foods {
		f := &p.Foods[i]
		if edible(*f) && (best == nil || len(f.Steps) < len(best.Steps)) {
			best = f
		}
	}
	if best == nil {
		return otherwise()
	}
	return Eat(best.Steps, best.Corpse)
}

func drinkOr(p Perception, otherwise func() Intent) Intent {
	var best *world.ResourceSighting
	for i := range p.Waters {
		w := &p.Waters[i]
		if best == nil || len(w.Steps) < len(best.Steps) {
			best = w
		}
	}
	if best == nil {
		return otherwise()
	}
	return Drink(best.Steps)
}

// confront fights a threat it can beat and flees one it cannot.
func confront(life LifeState, d Drive) Intent {
	if !d.CanWin {
		return Flee(d.Threat.ID)
	}
	if d.Threat.Adjacent() {
		return Attack(d.Threat.ID)
	}
	return approach(life, d.Threat.Steps)
}

// hunt goes after the nearest prey, the weakest on equal distance.
func hunt(life LifeState, p Perception, s Species) Intent {
	var prey *EntitySighting
	for i := range p.Entities {
		e := &p.Entities[i]
		if !s.Preys(e.Species) {
			continue
		}
		if prey == nil || len(e.Steps) < len(prey.Steps) ||
			(len(e.Steps) == len(prey.Steps) && e.Strength < prey.Strength) {
			prey = e
		}
	}
	if prey == nil {
		return wander(life, p)
	}
	if prey.Adjacent() {
		return Attack(prey.ID)
	}
	return approach(life, prey.Steps)
}

func court(life LifeState, mate *EntitySighting) Intent {
	if mate.Adjacent() {
		return Mate(mate.ID)
	}
	return approach(life, mate.Steps)
}

// approach walks toward a target cell but stops next to it, within one tick
// of movement.
func approach(life LifeState, steps world.Steps) Intent {
	n := len(steps) - 1
	if n > int(life.Speed) {
		n = int(life.Speed)
	}
	if n <= 0 {
		return Idle(1)
	}
	return Move(steps[:n])
}

// wander takes a short straight walk in a direction drawn from the roll,
// skipping directions with no room.
func wander(life LifeState, p Perception) Intent {
	start := int(p.Roll % 8)
	for i := 0; i < len(world.Directions); i++ {
		idx := (start + i) % len(world.Directions)
		room := p.Walkable[idx]
		if room == 0 {
			continue
		}
		length := 1
		if life.Speed > 1 {
			length += int((p.Roll >> 3) % uint64(life.Speed))
		}
		if length > room {
			length = room
		}
		steps := make(world.Steps, length)
		for j := range steps {
			steps[j] = world.Directions[idx]
		}
		return Move(steps)
	}
	return Idle(1)
}

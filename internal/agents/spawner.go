// Entity spawning: species templates and the starting population.
package agents

import (
	"fmt"

	"github.com/talgya/curious-world/internal/entropy"
)

// Template returns the newborn-adult stats of a species at full vitals.
func Template(s Species) LifeState {
	var l LifeState
	switch s {
	case Herbivore:
		l = LifeState{MaxAge: 105, MaturityAge: 20, MaxHealth: 120, MaxEnergy: 80, MaxWater: 75, VisionRadius: 6, Speed: 3}
	case Carnivore:
		l = LifeState{MaxAge: 120, MaturityAge: 25, MaxHealth: 140, MaxEnergy: 90, MaxWater: 70, VisionRadius: 7, Speed: 4}
	case Omnivore:
		l = LifeState{MaxAge: 110, MaturityAge: 22, MaxHealth: 130, MaxEnergy: 85, MaxWater: 65, VisionRadius: 6, Speed: 3}
	default:
		panic(fmt.Sprintf("agents: no template for %s", s))
	}
	l.Health, l.Energy, l.Water = l.MaxHealth, l.MaxEnergy, l.MaxWater
	return l
}

// Recruit is a spawned entity waiting for an id and a cell.
type Recruit struct {
	Behavior Behavior
	Life     LifeState
}

// Spawner creates the starting population.
type Spawner struct {
	src       entropy.Source
	instincts Instincts
}

// NewSpawner creates a spawner drawing from src.
func NewSpawner(src entropy.Source, in Instincts) *Spawner {
	return &Spawner{src: src, instincts: in}
}

// Spawn creates one entity of species s. Starting ages are spread between
// zero and twice the maturity age so the first generation does not age out
// in lockstep.
func (s *Spawner) Spawn(sp Species) Recruit {
	l := Template(sp)
	l.Age = entropy.Range(s.src, 0, min(2*l.MaturityAge, l.MaxAge-1))
	return Recruit{Behavior: BehaviorFor(sp, s.instincts), Life: l}
}

// SpawnPopulation creates count entities of species sp.
func (s *Spawner) SpawnPopulation(sp Species, count int) []Recruit {
	out := make([]Recruit, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, s.Spawn(sp))
	}
	return out
}

package agents

import "github.com/talgya/curious-world/internal/config"

// LifeState holds an entity's vital stats. The first block is fixed at birth;
// the second changes every tick and always stays within [0, max].
type LifeState struct {
	MaxAge       uint32 `json:"max_age"`
	MaturityAge  uint32 `json:"maturity_age"`
	MaxHealth    uint32 `json:"max_health"`
	MaxEnergy    uint32 `json:"max_energy"`
	MaxWater     uint32 `json:"max_water"`
	VisionRadius int    `json:"vision_radius"`
	Speed        uint32 `json:"speed"` // Movement points per tick

	Age       uint32 `json:"age"`
	Health    uint32 `json:"health"`
	Energy    uint32 `json:"energy"`
	Water     uint32 `json:"water"`
	Cooldown  uint32 `json:"cooldown"`   // Ticks until mating is possible again
	MovesUsed uint32 `json:"moves_used"` // Movement points spent this tick
}

// Alive reports whether health is above zero.
func (l LifeState) Alive() bool { return l.Health > 0 }

// Mature reports whether the entity is old enough to mate.
func (l LifeState) Mature() bool { return l.Age >= l.MaturityAge }

// CanReproduce reports whether the entity may mate given the minimum energy
// a parent needs.
func (l LifeState) CanReproduce(minEnergy uint32) bool {
	return l.Alive() && l.Mature() && l.Cooldown == 0 && l.Energy >= minEnergy
}

// Strength is the estimate other entities see when sizing up a fight.
func (l LifeState) Strength() uint32 { return l.Health + l.Energy }

// CanMoveFor reports whether cost more movement points fit in this tick.
func (l LifeState) CanMoveFor(cost uint32) bool { return l.MovesUsed+cost <= l.Speed }

// OnMove spends movement points.
func (l *LifeState) OnMove(cost uint32) {
	l.MovesUsed = min(l.MovesUsed+cost, l.Speed)
}

// EnergyRoom returns how much energy can still be restored.
func (l LifeState) EnergyRoom() uint32 { return l.MaxEnergy - min(l.Energy, l.MaxEnergy) }

// WaterRoom returns how much water can still be restored.
func (l LifeState) WaterRoom() uint32 { return l.MaxWater - min(l.Water, l.MaxWater) }

// RestoreEnergy adds energy up to the maximum.
func (l *LifeState) RestoreEnergy(n uint32) { l.Energy = min(l.Energy+n, l.MaxEnergy) }

// RestoreWater adds water up to the maximum.
func (l *LifeState) RestoreWater(n uint32) { l.Water = min(l.Water+n, l.MaxWater) }

// ConsumeEnergy removes energy, stopping at zero.
func (l *LifeState) ConsumeEnergy(n uint32) { l.Energy = subSat(l.Energy, n) }

// TakeDamage removes health, stopping at zero.
func (l *LifeState) TakeDamage(n uint32) { l.Health = subSat(l.Health, n) }

// OnReproduce charges a parent for a successful mating.
func (l *LifeState) OnReproduce(cooldown, energyCost uint32) {
	l.Cooldown = cooldown
	l.ConsumeEnergy(energyCost)
}

// Tick advances the internal clock by one tick: ageing, decay, starvation
// and regeneration. Old age sets health to zero; the phase tick turns that
// into a corpse.
func (l *LifeState) Tick(m config.Metabolism) {
	l.Age++
	l.Energy = subSat(l.Energy, m.EnergyDecay)
	l.Water = subSat(l.Water, m.WaterDecay)
	l.Cooldown = subSat(l.Cooldown, 1)

	switch {
	case l.Energy == 0 || l.Water == 0:
		l.TakeDamage(m.StarvationDamage)
	case l.Energy > l.MaxEnergy/2 && l.Water > l.MaxWater/2 && l.Alive():
		l.Health = min(l.Health+m.HealthRegen, l.MaxHealth)
	}

	if l.Age >= l.MaxAge {
		l.Health = 0
	}
	l.MovesUsed = 0
}

// Valid reports whether every dynamic stat is within its bounds.
func (l LifeState) Valid() bool {
	return l.Health <= l.MaxHealth &&
		l.Energy <= l.MaxEnergy &&
		l.Water <= l.MaxWater &&
		l.MovesUsed <= l.Speed
}

func subSat(a, b uint32) uint32 {
	if b >= a {
		return 0
	}
	return a - b
}

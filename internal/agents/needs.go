package agents

// Instinct is the drive that wins an entity's attention this tick. Instincts
// are evaluated in declaration order: a hunted grazer does not stop to eat.
type Instinct uint8

const (
	InstinctThreat Instinct = iota
	InstinctSurvival
	InstinctThirst
	InstinctHunger
	InstinctRest
	InstinctMating
	InstinctIdle
)

var instinctNames = [...]string{"threat", "survival", "thirst", "hunger", "rest", "mating", "idle"}

func (i Instinct) String() string {
	if int(i) < len(instinctNames) {
		return instinctNames[i]
	}
	return "unknown"
}

// Instincts holds the thresholds behind instinct evaluation. Ratios are
// fractions of the matching maximum.
type Instincts struct {
	SurvivalAt float64 // Health ratio at or below which eating or drinking is urgent
	ThirstAt   float64 // Water ratio below which the entity looks for water
	HungerAt   float64 // Energy ratio below which the entity looks for food
	RestAt     float64 // Health ratio below which a safe entity sleeps
	RestTicks  uint32  // Length of a sleep
	MateEnergy uint32  // Energy a parent needs; matches the engine's rule
}

// DefaultInstincts returns the stock thresholds.
func DefaultInstincts() Instincts {
	return Instincts{
		SurvivalAt: 0.25,
		ThirstAt:   0.5,
		HungerAt:   0.5,
		RestAt:     0.5,
		RestTicks:  4,
		MateEnergy: 20,
	}
}

// Drive is an evaluated instinct plus the sighting that triggered it.
type Drive struct {
	Instinct Instinct
	Threat   *EntitySighting // Set for InstinctThreat
	CanWin   bool            // Own strength at least the threat's
	Mate     *EntitySighting // Set for InstinctMating
}

// Evaluate picks the most urgent instinct for an entity of species s.
func (in Instincts) Evaluate(s Species, life LifeState, p Perception) Drive {
	if t := nearest(p.Entities, func(e EntitySighting) bool { return e.Species.Preys(s) }); t != nil {
		return Drive{Instinct: InstinctThreat, Threat: t, CanWin: life.Strength() >= t.Strength}
	}

	healthRatio := ratio(life.Health, life.MaxHealth)
	waterRatio := ratio(life.Water, life.MaxWater)
	energyRatio := ratio(life.Energy, life.MaxEnergy)

	if healthRatio <= in.SurvivalAt || life.Energy == 0 || life.Water == 0 {
		return Drive{Instinct: InstinctSurvival}
	}
	thirsty := waterRatio < in.ThirstAt
	hungry := energyRatio < in.HungerAt
	switch {
	case thirsty && (!hungry || waterRatio <= energyRatio):
		return Drive{Instinct: InstinctThirst}
	case hungry:
		return Drive{Instinct: InstinctHunger}
	}

	if healthRatio < in.RestAt {
		return Drive{Instinct: InstinctRest}
	}

	if life.CanReproduce(in.MateEnergy) {
		if m := nearest(p.Entities, func(e EntitySighting) bool { return e.Species == s }); m != nil {
			return Drive{Instinct: InstinctMating, Mate: m}
		}
	}
	return Drive{Instinct: InstinctIdle}
}

// nearest returns the matching sighting with the shortest path; ties keep
// perception order.
func nearest(list []EntitySighting, match func(EntitySighting) bool) *EntitySighting {
	var best *EntitySighting
	for i := range list {
		e := &list[i]
		if !match(*e) {
			continue
		}
		if best == nil || len(e.Steps) < len(best.Steps) {
			best = e
		}
	}
	return best
}

func ratio(v, max uint32) float64 {
	if max == 0 {
		return 0
	}
	return float64(v) / float64(max)
}

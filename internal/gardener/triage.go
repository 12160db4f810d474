package gardener

import (
	"math"

	"github.com/talgya/curious-world/internal/agents"
)

// Crisis levels, most severe first.
const (
	Critical = "CRITICAL"
	Warning  = "WARNING"
	Watch    = "WATCH"
	Healthy  = "HEALTHY"
)

// Scarcity thresholds, in resource units per living entity.
const (
	foodPerCapitaMin  = 15.0
	waterPerCapitaMin = 15.0
)

// WorldHealth holds derived diagnostic signals computed from a WorldSnapshot.
type WorldHealth struct {
	Living          int
	FoodPerCapita   float64
	WaterPerCapita  float64
	DeathBirthRatio float64  // From the last two usable history rows
	Extinct         []string // Species seen in history, now gone
	CrisisLevel     string
}

// Triage computes a WorldHealth from the snapshot's data.
func Triage(snap *WorldSnapshot) *WorldHealth {
	st := snap.Status.Stats
	h := &WorldHealth{Living: snap.Living(), DeathBirthRatio: 1}

	if h.Living > 0 {
		h.FoodPerCapita = float64(st.Food) / float64(h.Living)
		h.WaterPerCapita = float64(st.Water) / float64(h.Living)
	}

	// Death:Birth ratio from consecutive history rows. Rows carry running
	// totals, so only deltas mean anything; a restart shows up as totals
	// going backwards and that pair is skipped.
	for i := len(snap.History) - 1; i > 0; i-- {
		newer, older := snap.History[i], snap.History[i-1]
		if newer.Births < older.Births || newer.Deaths < older.Deaths {
			continue
		}
		births := newer.Births - older.Births
		deaths := newer.Deaths - older.Deaths
		switch {
		case births > 0:
			h.DeathBirthRatio = float64(deaths) / float64(births)
		case deaths > 0:
			h.DeathBirthRatio = math.Inf(1)
		}
		break
	}

	for _, sp := range agents.AllSpecies {
		name := sp.String()
		if st.Population[name] > 0 {
			continue
		}
		for _, row := range snap.History {
			if speciesCount(row.Herbivores, row.Carnivores, row.Omnivores, sp) > 0 {
				h.Extinct = append(h.Extinct, name)
				break
			}
		}
	}

	switch {
	case h.Living == 0 || len(h.Extinct) > 0:
		h.CrisisLevel = Critical
	case h.FoodPerCapita < foodPerCapitaMin || h.WaterPerCapita < waterPerCapitaMin:
		h.CrisisLevel = Warning
	case h.DeathBirthRatio > 1:
		h.CrisisLevel = Watch
	default:
		h.CrisisLevel = Healthy
	}
	return h
}

func speciesCount(herb, carn, omni int, sp agents.Species) int {
	switch sp {
	case agents.Herbivore:
		return herb
	case agents.Carnivore:
		return carn
	case agents.Omnivore:
		return omni
	}
	return 0
}

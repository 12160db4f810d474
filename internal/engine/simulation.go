// Simulation owns the world state and resolves one tick at a time.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/talgya/curious-world/internal/agents"
	"github.com/talgya/curious-world/internal/config"
	"github.com/talgya/curious-world/internal/entropy"
	"github.com/talgya/curious-world/internal/world"
)

// Simulation holds the complete world state. Step is the only mutator once
// the population is placed; readers from other goroutines use the accessor
// methods, which lock around whole ticks.
type Simulation struct {
	mu sync.RWMutex

	Map        *world.Map
	Roster     *Roster
	Rules      config.Rules
	Metabolism config.Metabolism
	Sink       EventSink // Optional
	Tick       uint64    // Most recent tick processed

	src      entropy.Source
	occ      *Occupancy
	newborns []*Slot
	pending  []Event
	recent   []Event

	stats  TickStats // Counters of the tick in progress
	Last   TickStats // Counters of the most recent tick
	Totals SimStats
}

// TickStats counts what happened during one tick.
type TickStats struct {
	Tick    uint64 `json:"tick"`
	Moves   int    `json:"moves"`
	Blocked int    `json:"blocked"`
	Attacks int    `json:"attacks"`
	Births  int    `json:"births"`
	Deaths  int    `json:"deaths"`
	Purged  int    `json:"purged"`
}

// SimStats is the world census after the most recent tick plus running totals.
type SimStats struct {
	Population map[string]int `json:"population"` // Living entities per species
	Active     int            `json:"active"`
	Sleeping   int            `json:"sleeping"`
	Corpses    int            `json:"corpses"`
	Births     int            `json:"births"`
	Deaths     int            `json:"deaths"`
	Chunks     int            `json:"chunks"`
	Food       uint64         `json:"food"`
	Water      uint64         `json:"water"`
}

// NewSimulation creates a simulation over m. src is the single random stream
// every tick draws from.
func NewSimulation(m *world.Map, rules config.Rules, metab config.Metabolism, src entropy.Source) *Simulation {
	m.SetRayCap(rules.MaxWalkableDistance)
	s := &Simulation{
		Map:        m,
		Roster:     NewRoster(),
		Rules:      rules,
		Metabolism: metab,
		src:        src,
	}
	s.updateStats()
	return s
}

// Spawn places an entity. It fails if pos is not walkable or already held.
func (s *Simulation) Spawn(b agents.Behavior, life agents.LifeState, pos world.Position) (agents.EntityID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawn(b, life, pos)
}

func (s *Simulation) spawn(b agents.Behavior, life agents.LifeState, pos world.Position) (agents.EntityID, error) {
	if !s.Map.Walkable(pos) {
		return 0, fmt.Errorf("spawn at %v: cell not walkable", pos)
	}
	for _, slot := range s.Roster.Slots() {
		if blocks(slot.Phase) && slot.Pos == pos {
			return 0, fmt.Errorf("spawn at %v: occupied by %d", pos, slot.ID)
		}
	}
	id := s.Roster.NextID()
	s.Roster.Add(&Slot{ID: id, Pos: pos, Phase: agents.Active(), Life: life, Behavior: b, BornTick: s.Tick})
	return id, nil
}

// Populate spawns the starting population on spread-out cells near resources.
func (s *Simulation) Populate(sp *agents.Spawner, pop config.Population) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recruits []agents.Recruit
	recruits = append(recruits, sp.SpawnPopulation(agents.Herbivore, pop.Herbivores)...)
	recruits = append(recruits, sp.SpawnPopulation(agents.Carnivore, pop.Carnivores)...)
	recruits = append(recruits, sp.SpawnPopulation(agents.Omnivore, pop.Omnivores)...)

	held := SnapshotOccupancy(s.Roster)
	taken := func(p world.Position) bool { _, ok := held.At(p); return ok }
	sites := world.SpawnSites(s.Map, len(recruits), 2, taken, s.src)
	if len(sites) < len(recruits) {
		return fmt.Errorf("populate: only %d free cells for %d entities", len(sites), len(recruits))
	}
	for i, r := range recruits {
		if _, err := s.spawn(r.Behavior, r.Life, sites[i]); err != nil {
			return fmt.Errorf("populate: %w", err)
		}
	}
	s.updateStats()
	slog.Info("population placed", "herbivores", pop.Herbivores, "carnivores", pop.Carnivores, "omnivores", pop.Omnivores)
	return nil
}

// Step advances the world by one tick.
func (s *Simulation) Step() {
	s.Advance(s.Tick + 1)
}

// Advance runs tick number tick. Phases run in a fixed order: purge, index,
// decide, then movement, eating, drinking, mating, attacks, fleeing, sleep,
// vitals and lifecycle.
func (s *Simulation) Advance(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Tick = tick
	s.stats = TickStats{Tick: tick}

	s.stats.Purged = s.Roster.Purge()
	s.occ = SnapshotOccupancy(s.Roster)

	ps := s.classify(s.collect())

	s.applyPlans(ps.moves)
	s.applyPlans(ps.eats)
	s.applyPlans(ps.drinks)
	s.resolveMates(ps.mates)
	s.resolveAttacks(ps.attacks)
	s.applyPlans(ps.flees)
	s.resolveSleeps(ps.sleeps)

	s.tickVitals()
	s.tickPhases()
	s.admitNewborns()

	s.Last = s.stats
	s.updateStats()
	s.flush()
}

func (s *Simulation) updateStats() {
	st := SimStats{
		Population: make(map[string]int, len(agents.AllSpecies)),
		Births:     s.Totals.Births + s.stats.Births,
		Deaths:     s.Totals.Deaths + s.stats.Deaths,
		Chunks:     s.Map.ChunkCount(),
	}
	for _, sp := range agents.AllSpecies {
		st.Population[sp.String()] = 0
	}
	for _, slot := range s.Roster.Slots() {
		switch slot.Phase.Kind {
		case agents.PhaseActive:
			st.Active++
		case agents.PhaseSleeping:
			st.Sleeping++
		case agents.PhaseCorpse:
			st.Corpses++
			continue
		default:
			continue
		}
		st.Population[slot.Species().String()]++
	}
	st.Food, st.Water = s.Map.ResourceTotals()
	s.Totals = st
	s.stats = TickStats{}
}

// Report logs a one-line census, for periodic use by the engine loop.
func (s *Simulation) Report(tick uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.Totals
	slog.Info("tick report",
		"tick", humanize.Comma(int64(tick)),
		"living", st.Active+st.Sleeping,
		"herbivores", st.Population[agents.Herbivore.String()],
		"carnivores", st.Population[agents.Carnivore.String()],
		"omnivores", st.Population[agents.Omnivore.String()],
		"corpses", st.Corpses,
		"births", humanize.Comma(int64(st.Births)),
		"deaths", humanize.Comma(int64(st.Deaths)),
		"food", humanize.Comma(int64(st.Food)),
		"water", humanize.Comma(int64(st.Water)),
		"chunks", st.Chunks,
	)
}

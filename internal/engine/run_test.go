package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/curious-world/internal/agents"
	"github.com/talgya/curious-world/internal/config"
	"github.com/talgya/curious-world/internal/entropy"
	"github.com/talgya/curious-world/internal/world"
)

// seededWorld builds the stock world and population from a single seed.
func seededWorld(t *testing.T, seed int64) *Simulation {
	t.Helper()
	cfg := config.Default()
	cfg.World.Density = 0.15
	cfg.Population = config.Population{Herbivores: 12, Carnivores: 4, Omnivores: 4}

	src := entropy.NewStream(seed)
	b := world.Bounds{MinX: cfg.World.MinX, MaxX: cfg.World.MaxX, MinY: cfg.World.MinY, MaxY: cfg.World.MaxY}
	gen := world.GenConfig{
		Density:    cfg.World.Density,
		AmountMin:  cfg.World.AmountMin,
		AmountMax:  cfg.World.AmountMax,
		WaterLevel: cfg.World.WaterLevel,
		Seed:       entropy.Derive(seed, 1),
	}
	m := world.Generate(b, gen, src)

	s := NewSimulation(m, cfg.Rules, cfg.Metabolism, src)
	require.NoError(t, s.Populate(agents.NewSpawner(src, agents.DefaultInstincts()), cfg.Population))
	return s
}

func TestLongRunKeepsInvariants(t *testing.T) {
	s := seededWorld(t, 7)
	lastID := agents.EntityID(0)

	for i := 0; i < 400; i++ {
		s.Step()

		held := make(map[world.Position]agents.EntityID)
		for _, slot := range s.Roster.Slots() {
			assert.True(t, s.Map.InBounds(slot.Pos), "entity %d left the world at %v", slot.ID, slot.Pos)
			assert.True(t, slot.Life.Valid(), "entity %d stats out of range: %+v", slot.ID, slot.Life)
			if slot.ID > lastID {
				lastID = slot.ID
			}
			if !blocks(slot.Phase) {
				continue
			}
			if other, dup := held[slot.Pos]; dup {
				t.Fatalf("tick %d: entities %d and %d share %v", s.Tick, other, slot.ID, slot.Pos)
			}
			held[slot.Pos] = slot.ID
		}
		require.NotPanics(t, s.Map.Verify)
	}

	assert.Equal(t, uint64(400), s.Tick)
	assert.Greater(t, s.Totals.Births+s.Totals.Deaths, 0, "a long run sees some births or deaths")
	assert.Greater(t, s.Roster.NextID(), lastID, "ids keep growing")
}

func TestSameSeedSameWorld(t *testing.T) {
	a := seededWorld(t, 99)
	b := seededWorld(t, 99)
	for i := 0; i < 150; i++ {
		a.Step()
		b.Step()
	}
	assert.Equal(t, a.Entities(), b.Entities())
	assert.Equal(t, a.MapView(), b.MapView())
	assert.Equal(t, a.Status(), b.Status())
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := seededWorld(t, 1)
	b := seededWorld(t, 2)
	assert.NotEqual(t, a.MapView(), b.MapView())
}

func TestPopulatePlacesEveryone(t *testing.T) {
	s := seededWorld(t, 3)
	assert.Equal(t, 20, s.Roster.Len())
	st := s.Status().Stats
	assert.Equal(t, 12, st.Population["herbivore"])
	assert.Equal(t, 4, st.Population["carnivore"])
	assert.Equal(t, 4, st.Population["omnivore"])
	assert.Equal(t, 20, SnapshotOccupancy(s.Roster).Len())
}

func TestPerceptionReadsOnly(t *testing.T) {
	s := newTestSim(wide())
	s.Map.SetCell(at(2, 0), world.Food(9))
	s.Map.SetCell(at(0, 3), world.Water(4))
	self := place(t, s, idle, at(0, 0))
	other := place(t, s, fixed{species: agents.Carnivore, intent: agents.Idle(1)}, at(1, 1))
	place(t, s, idle, at(9, 9)) // out of sight
	sleeper := place(t, s, does(agents.Sleep(9)), at(-1, 0))
	dead := grown()
	dead.Health = 0
	corpse := placeLife(t, s, idle, dead, at(2, 0))
	s.Step()
	require.True(t, slotOf(t, s, corpse).Phase.IsCorpse())
	require.True(t, slotOf(t, s, sleeper).Phase.IsSleeping())

	before := s.MapView()
	entities := s.Entities()
	p, ok := s.Perceive(self)
	require.True(t, ok)
	assert.Equal(t, before, s.MapView())
	assert.Equal(t, entities, s.Entities())

	require.Len(t, p.Entities, 1)
	assert.Equal(t, other, p.Entities[0].ID)
	assert.Equal(t, agents.Carnivore, p.Entities[0].Species)
	assert.True(t, p.Entities[0].Adjacent())

	require.Len(t, p.Foods, 1)
	assert.Equal(t, corpse, p.Foods[0].Corpse)
	assert.Equal(t, uint32(9+30), p.Foods[0].Amount, "death food stacks on existing food")
	require.Len(t, p.Waters, 1)
	assert.Len(t, p.Waters[0].Steps, 3)

	assert.Equal(t, 10, p.Walkable[world.Right])
	assert.Equal(t, 10, p.Walkable[world.UpLeft])

	_, ok = s.Perceive(999)
	assert.False(t, ok)
}

func TestRoster(t *testing.T) {
	r := NewRoster()
	a := r.NextID()
	b := r.NextID()
	assert.Equal(t, agents.EntityID(1), a)
	assert.Equal(t, agents.EntityID(2), b)

	r.Add(&Slot{ID: a, Behavior: idle})
	r.Add(&Slot{ID: b, Behavior: idle, Phase: agents.Removed()})
	r.Add(&Slot{ID: 7, Behavior: idle})
	assert.Equal(t, agents.EntityID(8), r.NextID(), "explicit ids move the counter")

	assert.PanicsWithValue(t, "engine: duplicate entity id 1", func() { r.Add(&Slot{ID: a, Behavior: idle}) })
	assert.Panics(t, func() { r.Add(&Slot{ID: 0, Behavior: idle}) })
	assert.Panics(t, func() { r.Add(&Slot{ID: 20}) })

	assert.Equal(t, 1, r.Purge())
	assert.Equal(t, 2, r.Len())
	_, ok := r.Get(b)
	assert.False(t, ok)
	s7, ok := r.Get(7)
	require.True(t, ok)
	assert.Equal(t, agents.EntityID(7), s7.ID)
	assert.Equal(t, []agents.EntityID{1, 7}, []agents.EntityID{r.Slots()[0].ID, r.Slots()[1].ID})
	assert.Zero(t, r.Purge())
}

func TestOccupancy(t *testing.T) {
	r := NewRoster()
	r.Add(&Slot{ID: 1, Pos: at(0, 0), Behavior: idle})
	r.Add(&Slot{ID: 2, Pos: at(-3, 5), Behavior: idle, Phase: agents.Sleeping(2)})
	r.Add(&Slot{ID: 3, Pos: at(0, 0), Behavior: idle, Phase: agents.Corpse(3)})

	o := SnapshotOccupancy(r)
	assert.Equal(t, 2, o.Len())
	id, ok := o.At(at(-3, 5))
	assert.True(t, ok)
	assert.Equal(t, agents.EntityID(2), id)
	assert.True(t, o.Free(at(0, 0), 1))
	assert.False(t, o.Free(at(0, 0), 2))

	o.Vacate(at(0, 0), 2)
	assert.False(t, o.Free(at(0, 0), 2), "only the holder can vacate")
	o.Vacate(at(0, 0), 1)
	assert.True(t, o.Free(at(0, 0), 2))

	r.Add(&Slot{ID: 4, Pos: at(-3, 5), Behavior: idle})
	assert.Panics(t, func() { SnapshotOccupancy(r) })
}

func TestEngineRunTicks(t *testing.T) {
	e := NewEngine()
	e.ReportEvery = 10
	var ticks, reports []uint64
	e.OnTick = func(tick uint64) { ticks = append(ticks, tick) }
	e.OnReport = func(tick uint64) { reports = append(reports, tick) }

	e.RunTicks(25)
	assert.Equal(t, uint64(25), e.Tick)
	assert.Len(t, ticks, 25)
	assert.Equal(t, uint64(1), ticks[0])
	assert.Equal(t, []uint64{10, 20}, reports)
}

func TestEngineRunStopsAtMaxTicks(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Millisecond
	e.SetSpeed(100)
	e.MaxTicks = 5
	var n atomic.Int64
	e.OnTick = func(uint64) { n.Add(1) }

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		e.Stop()
		t.Fatal("engine did not stop at MaxTicks")
	}
	assert.Equal(t, int64(5), n.Load())
	assert.False(t, e.Running())
}

func TestEngineSpeed(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, 1.0, e.Speed())
	e.SetSpeed(-3)
	assert.Zero(t, e.Speed())
	e.SetSpeed(4)
	assert.Equal(t, 4.0, e.Speed())
}

func TestEngineDrivesSimulation(t *testing.T) {
	s := seededWorld(t, 11)
	e := NewEngine()
	e.OnTick = s.Advance
	e.ReportEvery = 50
	e.OnReport = s.Report
	e.RunTicks(100)
	assert.Equal(t, uint64(100), s.Status().Tick)
}

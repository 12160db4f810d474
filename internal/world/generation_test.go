package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/curious-world/internal/entropy"
)

func TestPopulateIsReproducible(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Density = 0.2

	a := Generate(testBounds(), cfg, entropy.NewStream(5))
	b := Generate(testBounds(), cfg, entropy.NewStream(5))
	assert.Equal(t, a.Resources(), b.Resources())
	assert.NotEmpty(t, a.Resources())
	a.Verify()
}

func TestPopulateRespectsBoundsAndAmounts(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Density = 0.5
	cfg.AmountMin, cfg.AmountMax = 3, 8
	b := Bounds{MinX: -7, MaxX: 9, MinY: -3, MaxY: 20}

	m := NewMap(b)
	seeded := m.Populate(cfg, entropy.NewStream(9))
	res := m.Resources()
	require.Len(t, res, seeded)
	for _, rc := range res {
		assert.True(t, b.Contains(rc.Pos), rc.Pos.String())
		assert.GreaterOrEqual(t, rc.Cell.Amount, uint32(3))
		assert.LessOrEqual(t, rc.Cell.Amount, uint32(8))
	}
}

func TestPopulateZeroDensity(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Density = 0
	m := Generate(testBounds(), cfg, entropy.NewStream(1))
	assert.Zero(t, m.ChunkCount())
}

func TestPopulateWaterLevelSplitsKinds(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Density = 0.5

	cfg.WaterLevel = 2 // moisture never exceeds 1
	m := Generate(testBounds(), cfg, entropy.NewStream(3))
	_, water := m.ResourceTotals()
	assert.Zero(t, water)

	cfg.WaterLevel = -1
	m = Generate(testBounds(), cfg, entropy.NewStream(3))
	food, _ := m.ResourceTotals()
	assert.Zero(t, food)
}

func TestSpawnSites(t *testing.T) {
	m := NewMap(Bounds{MinX: 0, MaxX: 9, MinY: 0, MaxY: 9})
	m.SetCell(Position{X: 2, Y: 2}, Food(20))
	blocked := Position{X: 2, Y: 3}
	taken := func(p Position) bool { return p == blocked }

	sites := SpawnSites(m, 6, 2, taken, entropy.NewStream(4))
	require.Len(t, sites, 6)
	seen := make(map[Position]bool)
	for i, p := range sites {
		assert.True(t, m.Walkable(p))
		assert.NotEqual(t, blocked, p)
		assert.False(t, seen[p], "duplicate site %v", p)
		seen[p] = true
		for _, q := range sites[:i] {
			assert.GreaterOrEqual(t, p.Chebyshev(q), 2)
		}
	}

	again := SpawnSites(m, 6, 2, taken, entropy.NewStream(4))
	assert.Equal(t, sites, again)
}

func TestSpawnSitesRelaxesSpacing(t *testing.T) {
	m := NewMap(Bounds{MinX: 0, MaxX: 1, MinY: 0, MaxY: 1})
	sites := SpawnSites(m, 4, 3, nil, entropy.NewStream(1))
	assert.Len(t, sites, 4)
	assert.Empty(t, SpawnSites(m, 0, 3, nil, entropy.NewStream(1)))
}

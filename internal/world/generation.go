// Setup-time resource fill. Two simplex noise layers shape the map: fertility
// scales the chance that a cell is seeded at all, moisture decides whether a
// seeded cell holds water or food, so water gathers into ponds and food into
// meadows rather than salt-and-pepper noise.
package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/curious-world/internal/entropy"
)

// GenConfig holds resource fill parameters.
type GenConfig struct {
	Density    float64 // Mean fraction of cells seeded
	AmountMin  uint32  // Smallest seeded amount
	AmountMax  uint32  // Largest seeded amount
	WaterLevel float64 // Moisture above this seeds water (0.0–1.0)
	Seed       int64   // Noise seed; the cell rolls come from the Source
}

// DefaultGenConfig returns a sparse fill suitable for small worlds.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Density:    0.05,
		AmountMin:  10,
		AmountMax:  30,
		WaterLevel: 0.62,
		Seed:       42,
	}
}

// Generate creates a map covering b and populates it.
func Generate(b Bounds, cfg GenConfig, src entropy.Source) *Map {
	m := NewMap(b)
	m.Populate(cfg, src)
	return m
}

// Populate seeds resources over every chunk overlapping the bounds. Cells are
// visited chunk by chunk in key order and row-major inside a chunk; each
// visit consumes one roll from src, and a seeded cell one more for its amount.
// It returns the number of cells seeded.
func (m *Map) Populate(cfg GenConfig, src entropy.Source) int {
	if cfg.Density <= 0 {
		return 0
	}
	fertNoise := opensimplex.NewNormalized(cfg.Seed)
	moistNoise := opensimplex.NewNormalized(cfg.Seed + 1)

	b := m.bounds
	lo := chunkKeyOf(Position{X: b.MinX, Y: b.MinY})
	hi := chunkKeyOf(Position{X: b.MaxX, Y: b.MaxY})

	seeded := 0
	for cy := lo.CY; cy <= hi.CY; cy++ {
		for cx := lo.CX; cx <= hi.CX; cx++ {
			for i := 0; i < ChunkSize*ChunkSize; i++ {
				p := Position{X: cx*ChunkSize + i%ChunkSize, Y: cy*ChunkSize + i/ChunkSize}
				if !m.InBounds(p) {
					continue
				}
				x, y := float64(p.X), float64(p.Y)
				fert := octaveNoise(fertNoise, x, y, 3, 0.08, 0.5)
				chance := cfg.Density * 2 * fert
				if chance > 1 {
					chance = 1
				}
				if !entropy.Chance(src, chance) {
					continue
				}
				amount := entropy.Range(src, cfg.AmountMin, cfg.AmountMax)
				if octaveNoise(moistNoise, x, y, 2, 0.1, 0.5) > cfg.WaterLevel {
					m.SetCell(p, Water(amount))
				} else {
					m.SetCell(p, Food(amount))
				}
				seeded++
			}
		}
	}
	return seeded
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

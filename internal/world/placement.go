// Spawn placement: finds starting cells for the initial population.
package world

import (
	"math"
	"sort"

	"github.com/talgya/curious-world/internal/entropy"
)

// placementRadius is how far around a candidate resources add to its score.
const placementRadius = 3

// SpawnSites picks n distinct walkable cells for new entities. Cells near
// food and water score higher; a random jitter keeps equal cells from always
// resolving the same way, and picks keep a Chebyshev spacing of minSpacing
// while enough candidates remain. taken may be nil.
func SpawnSites(m *Map, n, minSpacing int, taken func(Position) bool, src entropy.Source) []Position {
	if n <= 0 {
		return nil
	}

	type scored struct {
		pos   Position
		score float64
	}
	var candidates []scored

	b := m.bounds
	for y := b.MinY; y <= b.MaxY; y++ {
		for x := b.MinX; x <= b.MaxX; x++ {
			p := Position{X: x, Y: y}
			if !m.Walkable(p) || (taken != nil && taken(p)) {
				continue
			}
			candidates = append(candidates, scored{p, siteScore(m, p) + entropy.Float64(src)})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	picked := make([]Position, 0, n)
	used := make(map[Position]bool, n)
	for spacing := minSpacing; spacing >= 0 && len(picked) < n; spacing-- {
		for _, c := range candidates {
			if len(picked) >= n {
				break
			}
			if used[c.pos] || tooClose(c.pos, picked, spacing) {
				continue
			}
			used[c.pos] = true
			picked = append(picked, c.pos)
		}
	}
	return picked
}

// siteScore rewards nearby resources, weighted down with distance.
func siteScore(m *Map, p Position) float64 {
	total := 0.0
	for dy := -placementRadius; dy <= placementRadius; dy++ {
		for dx := -placementRadius; dx <= placementRadius; dx++ {
			q := Position{X: p.X + dx, Y: p.Y + dy}
			c, ok := m.Cell(q)
			if !ok || c.IsEmpty() {
				continue
			}
			total += float64(c.Amount) / float64(1+p.Chebyshev(q))
		}
	}
	return math.Log1p(total)
}

func tooClose(p Position, existing []Position, minDist int) bool {
	for _, e := range existing {
		if p.Chebyshev(e) < minDist {
			return true
		}
	}
	return false
}

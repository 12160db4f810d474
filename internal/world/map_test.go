package world

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/curious-world/internal/entropy"
)

func testBounds() Bounds {
	return Bounds{MinX: -20, MaxX: 19, MinY: -20, MaxY: 19}
}

func TestChunkKeyFloorsNegativeCoordinates(t *testing.T) {
	tests := []struct {
		pos  Position
		want ChunkKey
		idx  int
	}{
		{Position{0, 0}, ChunkKey{0, 0}, 0},
		{Position{15, 15}, ChunkKey{0, 0}, 255},
		{Position{16, 0}, ChunkKey{1, 0}, 0},
		{Position{-1, -1}, ChunkKey{-1, -1}, 255},
		{Position{-16, 3}, ChunkKey{-1, 0}, 48},
		{Position{-17, -17}, ChunkKey{-2, -2}, 255},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, chunkKeyOf(tt.pos), tt.pos.String())
		assert.Equal(t, tt.idx, cellIndex(tt.pos), tt.pos.String())
	}
}

func TestCellOutOfBounds(t *testing.T) {
	m := NewMap(testBounds())
	_, ok := m.Cell(Position{X: 20, Y: 0})
	assert.False(t, ok)

	m.SetCell(Position{X: 20, Y: 0}, Food(5))
	assert.Zero(t, m.ChunkCount())

	c, ok := m.Cell(Position{X: 3, Y: 3})
	assert.True(t, ok)
	assert.True(t, c.IsEmpty())
}

func TestSetEmptyNeverAllocates(t *testing.T) {
	m := NewMap(testBounds())
	for x := -20; x < 20; x++ {
		m.SetCell(Position{X: x, Y: x}, Empty)
	}
	assert.Zero(t, m.ChunkCount())

	m.SetCell(Position{X: 1, Y: 1}, Food(0))
	assert.Zero(t, m.ChunkCount(), "zero-amount resource is stored as empty")
}

func TestReduceAmountEvictsEmptyChunk(t *testing.T) {
	m := NewMap(testBounds())
	p := Position{X: -3, Y: 4}
	m.SetCell(p, Food(7))
	require.Equal(t, 1, m.ChunkCount())

	assert.True(t, m.ReduceAmount(p, 5))
	c, _ := m.Cell(p)
	assert.Equal(t, Food(2), c)
	assert.Equal(t, 1, m.ChunkCount())

	assert.True(t, m.ReduceAmount(p, 5))
	c, _ = m.Cell(p)
	assert.True(t, c.IsEmpty())
	assert.Zero(t, m.ChunkCount())

	assert.False(t, m.ReduceAmount(p, 1), "empty cell is not a resource")
	assert.False(t, m.ReduceAmount(Position{X: 99, Y: 99}, 1))
}

func TestSetCellEmptyEvictsLastResource(t *testing.T) {
	m := NewMap(testBounds())
	a, b := Position{X: 0, Y: 0}, Position{X: 15, Y: 15}
	m.SetCell(a, Water(3))
	m.SetCell(b, Food(3))
	require.Equal(t, 1, m.ChunkCount())

	m.SetCell(a, Empty)
	assert.Equal(t, 1, m.ChunkCount())
	m.SetCell(b, Empty)
	assert.Zero(t, m.ChunkCount())
}

func TestAddFood(t *testing.T) {
	m := NewMap(testBounds())
	p := Position{X: 5, Y: -5}

	m.AddFood(p, 4)
	m.AddFood(p, 6)
	c, _ := m.Cell(p)
	assert.Equal(t, Food(10), c)

	w := Position{X: 6, Y: -5}
	m.SetCell(w, Water(9))
	m.AddFood(w, 2)
	c, _ = m.Cell(w)
	assert.Equal(t, Food(2), c, "water is replaced")

	m.AddFood(Position{X: 50, Y: 50}, 3)
	m.AddFood(Position{X: 7, Y: 7}, 0)
	food, water := m.ResourceTotals()
	assert.Equal(t, uint64(12), food)
	assert.Zero(t, water)
}

// After any sequence of writes, retained chunks are exactly those holding at
// least one resource.
func TestChunkMemoryBound(t *testing.T) {
	m := NewMap(testBounds())
	src := entropy.NewStream(11)
	b := m.Bounds()

	for i := 0; i < 5000; i++ {
		p := Position{
			X: b.MinX + entropy.Intn(src, b.MaxX-b.MinX+1),
			Y: b.MinY + entropy.Intn(src, b.MaxY-b.MinY+1),
		}
		switch entropy.Intn(src, 4) {
		case 0:
			m.SetCell(p, Food(uint32(entropy.Intn(src, 4))))
		case 1:
			m.SetCell(p, Empty)
		case 2:
			m.ReduceAmount(p, uint32(entropy.Intn(src, 6)))
		case 3:
			m.AddFood(p, uint32(entropy.Intn(src, 3)))
		}
		m.Verify()
	}

	want := make(map[ChunkKey]bool)
	for _, rc := range m.Resources() {
		want[chunkKeyOf(rc.Pos)] = true
	}
	assert.Equal(t, len(want), m.ChunkCount())
	for _, k := range m.ChunkKeys() {
		assert.True(t, want[k], "chunk %v has no resources", k)
	}

	for _, rc := range m.Resources() {
		m.SetCell(rc.Pos, Empty)
	}
	assert.Zero(t, m.ChunkCount())
}

func TestChunkKeyPackRoundTrip(t *testing.T) {
	m := NewMap(Bounds{MinX: -40, MaxX: 40, MinY: -40, MaxY: 40})
	corners := []Position{{X: -40, Y: -40}, {X: 40, Y: -40}, {X: -40, Y: 40}, {X: 40, Y: 40}, {X: -1, Y: 0}}
	for i, p := range corners {
		m.SetCell(p, Food(uint32(i+1)))
	}
	for i, p := range corners {
		c, _ := m.Cell(p)
		assert.Equal(t, Food(uint32(i+1)), c, p.String())
	}
	assert.Equal(t, []ChunkKey{{-3, -3}, {2, -3}, {-1, 0}, {-3, 2}, {2, 2}}, m.ChunkKeys())
	for _, k := range m.ChunkKeys() {
		assert.Equal(t, k, unpackChunkKey(k.pack()))
	}
}

func TestDepositsSaturate(t *testing.T) {
	m := NewMap(testBounds())
	p := Position{X: 3, Y: 3}

	m.AddFood(p, math.MaxUint32-5)
	m.AddFood(p, 10)
	c, _ := m.Cell(p)
	assert.Equal(t, Food(math.MaxUint32), c)

	m.AddWater(p, 7)
	c, _ = m.Cell(p)
	assert.Equal(t, Water(7), c, "another kind replaces the cell")
	m.AddWater(p, math.MaxUint32)
	c, _ = m.Cell(p)
	assert.Equal(t, Water(math.MaxUint32), c)

	m.AddWater(Position{X: 100, Y: 0}, 1)
	m.AddFood(Position{X: 4, Y: 4}, 0)
	assert.Equal(t, 1, m.ChunkCount(), "out of bounds and zero deposits allocate nothing")
}

func TestVerifyPanicsOnCorruptChunk(t *testing.T) {
	m := NewMap(testBounds())
	m.SetCell(Position{X: 1, Y: 1}, Food(3))
	ch, ok := m.chunks.Get(ChunkKey{0, 0}.pack())
	require.True(t, ok)
	ch.cells[cellIndex(Position{X: 1, Y: 1})] = Cell{Kind: CellFood}
	assert.Panics(t, m.Verify)
}

func TestResourcesSortedRowMajor(t *testing.T) {
	m := NewMap(testBounds())
	m.SetCell(Position{X: 18, Y: -19}, Food(1))
	m.SetCell(Position{X: -19, Y: 2}, Water(2))
	m.SetCell(Position{X: -19, Y: -19}, Food(3))

	got := m.Resources()
	require.Len(t, got, 3)
	assert.Equal(t, Position{X: -19, Y: -19}, got[0].Pos)
	assert.Equal(t, Position{X: 18, Y: -19}, got[1].Pos)
	assert.Equal(t, Position{X: -19, Y: 2}, got[2].Pos)
}

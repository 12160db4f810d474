package world

import (
	"fmt"
	"math"
	"sort"

	"github.com/kamstrup/intmap"
)

// Bounds is an inclusive rectangle of cells.
type Bounds struct {
	MinX int `json:"min_x"`
	MaxX int `json:"max_x"`
	MinY int `json:"min_y"`
	MaxY int `json:"max_y"`
}

// Contains reports whether p lies inside b.
func (b Bounds) Contains(p Position) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Area returns the number of cells in b.
func (b Bounds) Area() int {
	if b.MinX > b.MaxX || b.MinY > b.MaxY {
		return 0
	}
	return (b.MaxX - b.MinX + 1) * (b.MaxY - b.MinY + 1)
}

// Map is the sparse resource grid. Only chunks holding at least one resource
// are allocated; a chunk is dropped by the write that empties it. Chunks are
// indexed by their packed ChunkKey.
type Map struct {
	bounds Bounds
	chunks *intmap.Map[uint64, *chunk]
	rayCap int
}

// NewMap creates an empty map covering b.
func NewMap(b Bounds) *Map {
	return &Map{
		bounds: b,
		chunks: intmap.New[uint64, *chunk](64),
		rayCap: MaxWalkableDistance,
	}
}

// Bounds returns the playable rectangle.
func (m *Map) Bounds() Bounds {
	return m.bounds
}

// InBounds returns true if p is inside the playable rectangle.
func (m *Map) InBounds(p Position) bool {
	return m.bounds.Contains(p)
}

// Walkable reports whether an entity may stand on p. Every in-bounds cell is
// walkable; resources do not block.
func (m *Map) Walkable(p Position) bool {
	return m.InBounds(p)
}

// Cell returns the cell at p. The second result is false when p is out of bounds.
func (m *Map) Cell(p Position) (Cell, bool) {
	if !m.InBounds(p) {
		return Empty, false
	}
	ch, ok := m.chunks.Get(chunkKeyOf(p).pack())
	if !ok {
		return Empty, true
	}
	return ch.cells[cellIndex(p)], true
}

// SetCell writes c at p. Out-of-bounds writes are ignored, and writing Empty
// never allocates a chunk.
func (m *Map) SetCell(p Position, c Cell) {
	if !m.InBounds(p) {
		return
	}
	m.write(p, normalize(c))
}

// ReduceAmount takes up to n units from the resource at p. A cell that runs
// out becomes Empty. It returns false if p holds no resource.
func (m *Map) ReduceAmount(p Position, n uint32) bool {
	c, ok := m.Cell(p)
	if !ok || !c.IsResource() {
		return false
	}
	if n >= c.Amount {
		c = Empty
	} else {
		c.Amount -= n
	}
	m.write(p, c)
	return true
}

// AddFood deposits food at p, growing an existing food cell. Any water on the
// cell is replaced.
func (m *Map) AddFood(p Position, amount uint32) {
	m.deposit(p, CellFood, amount)
}

// AddWater deposits water at p, growing an existing water cell. Any food on
// the cell is replaced.
func (m *Map) AddWater(p Position, amount uint32) {
	m.deposit(p, CellWater, amount)
}

// deposit grows a cell of the same kind, saturating at math.MaxUint32, or
// overwrites a cell of another kind.
func (m *Map) deposit(p Position, kind CellKind, amount uint32) {
	if amount == 0 {
		return
	}
	c, ok := m.Cell(p)
	if !ok {
		return
	}
	if c.Kind == kind {
		c.Amount = addSat(c.Amount, amount)
	} else {
		c = Cell{Kind: kind, Amount: amount}
	}
	m.write(p, c)
}

func addSat(a, b uint32) uint32 {
	if a > math.MaxUint32-b {
		return math.MaxUint32
	}
	return a + b
}

func (m *Map) write(p Position, c Cell) {
	key := chunkKeyOf(p).pack()
	ch, ok := m.chunks.Get(key)
	if !ok {
		if c.IsEmpty() {
			return
		}
		ch = &chunk{}
		m.chunks.Put(key, ch)
	}
	ch.put(cellIndex(p), c)
	if ch.filled == 0 {
		m.chunks.Del(key)
	}
}

// ChunkCount returns the number of allocated chunks.
func (m *Map) ChunkCount() int {
	return m.chunks.Len()
}

// ChunkKeys returns the allocated chunk keys sorted by (CY, CX).
func (m *Map) ChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, m.chunks.Len())
	for k := range m.chunks.Keys() {
		keys = append(keys, unpackChunkKey(k))
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CY != keys[j].CY {
			return keys[i].CY < keys[j].CY
		}
		return keys[i].CX < keys[j].CX
	})
	return keys
}

// ResourceCell is a non-empty cell with its position.
type ResourceCell struct {
	Pos  Position `json:"pos"`
	Cell Cell     `json:"cell"`
}

// Resources lists every non-empty cell in row-major order.
func (m *Map) Resources() []ResourceCell {
	var out []ResourceCell
	for _, key := range m.ChunkKeys() {
		ch, _ := m.chunks.Get(key.pack())
		for i, c := range ch.cells {
			if c.IsEmpty() {
				continue
			}
			out = append(out, ResourceCell{
				Pos: Position{
					X: key.CX*ChunkSize + i%ChunkSize,
					Y: key.CY*ChunkSize + i/ChunkSize,
				},
				Cell: c,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pos.Y != out[j].Pos.Y {
			return out[i].Pos.Y < out[j].Pos.Y
		}
		return out[i].Pos.X < out[j].Pos.X
	})
	return out
}

// ResourceTotals sums the stored amount per kind.
func (m *Map) ResourceTotals() (food, water uint64) {
	for ch := range m.chunks.Values() {
		for _, c := range ch.cells {
			switch c.Kind {
			case CellFood:
				food += uint64(c.Amount)
			case CellWater:
				water += uint64(c.Amount)
			}
		}
	}
	return food, water
}

// Verify panics if chunk bookkeeping is inconsistent: a retained chunk with
// no resources, a resource with amount zero, or a fill count that disagrees
// with the cells.
func (m *Map) Verify() {
	for packed, ch := range m.chunks.All() {
		key := unpackChunkKey(packed)
		n := 0
		for _, c := range ch.cells {
			if c.IsEmpty() {
				if c.Amount != 0 {
					panic(fmt.Sprintf("world: empty cell with amount %d in chunk %v", c.Amount, key))
				}
				continue
			}
			if c.Amount == 0 {
				panic(fmt.Sprintf("world: %s cell with zero amount in chunk %v", c.Kind, key))
			}
			n++
		}
		if n == 0 {
			panic(fmt.Sprintf("world: chunk %v retained with no resources", key))
		}
		if n != ch.filled {
			panic(fmt.Sprintf("world: chunk %v fill count %d, counted %d", key, ch.filled, n))
		}
	}
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(x=[%d,%d], y=[%d,%d], chunks=%d)",
		m.bounds.MinX, m.bounds.MaxX, m.bounds.MinY, m.bounds.MaxY, m.ChunkCount())
}

package world

import "fmt"

// ChunkSize is the edge length of a chunk in cells.
const ChunkSize = 16

// ChunkKey addresses a chunk. Chunk (0,0) covers cells x, y in [0, 16).
type ChunkKey struct {
	CX int `json:"cx"`
	CY int `json:"cy"`
}

// chunk stores one 16×16 block. filled counts its non-empty cells; a chunk
// only exists while filled > 0.
type chunk struct {
	cells  [ChunkSize * ChunkSize]Cell
	filled int
}

// pack folds the key into one word for the chunk index.
func (k ChunkKey) pack() uint64 {
	return uint64(uint32(int32(k.CX)))<<32 | uint64(uint32(int32(k.CY)))
}

func unpackChunkKey(v uint64) ChunkKey {
	return ChunkKey{CX: int(int32(uint32(v >> 32))), CY: int(int32(uint32(v)))}
}

func chunkKeyOf(p Position) ChunkKey {
	return ChunkKey{CX: floorDiv(p.X, ChunkSize), CY: floorDiv(p.Y, ChunkSize)}
}

func cellIndex(p Position) int {
	return mod(p.Y, ChunkSize)*ChunkSize + mod(p.X, ChunkSize)
}

// put stores c and keeps filled in step. It returns the previous cell.
func (ch *chunk) put(idx int, c Cell) Cell {
	prev := ch.cells[idx]
	switch {
	case prev.IsEmpty() && !c.IsEmpty():
		ch.filled++
	case !prev.IsEmpty() && c.IsEmpty():
		ch.filled--
	}
	ch.cells[idx] = c
	if ch.filled < 0 || ch.filled > len(ch.cells) {
		panic(fmt.Sprintf("world: chunk fill count out of range: %d", ch.filled))
	}
	return prev
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

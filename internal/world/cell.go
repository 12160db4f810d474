package world

import "fmt"

// CellKind tells what a cell holds.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellFood
	CellWater
)

func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellFood:
		return "food"
	case CellWater:
		return "water"
	}
	return fmt.Sprintf("CellKind(%d)", uint8(k))
}

// Cell is either empty or a resource with a positive amount.
type Cell struct {
	Kind   CellKind `json:"kind"`
	Amount uint32   `json:"amount"`
}

// Empty is the zero cell.
var Empty = Cell{}

// Food returns a food cell.
func Food(amount uint32) Cell { return normalize(Cell{Kind: CellFood, Amount: amount}) }

// Water returns a water cell.
func Water(amount uint32) Cell { return normalize(Cell{Kind: CellWater, Amount: amount}) }

// IsEmpty reports whether c holds nothing.
func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// IsResource reports whether c holds food or water.
func (c Cell) IsResource() bool { return c.Kind != CellEmpty }

func (c Cell) String() string {
	if c.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%s(%d)", c.Kind, c.Amount)
}

// normalize folds a zero-amount resource into Empty.
func normalize(c Cell) Cell {
	if c.Kind == CellEmpty || c.Amount == 0 {
		return Empty
	}
	return c
}

// Package world provides the sparse chunked grid the entities live on:
// positions and directions, resource cells, bounded path search and the
// setup-time resource fill.
package world

import (
	"fmt"
	"strings"
)

// Position is a cell coordinate. Y grows downward.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the neighbor of p in direction d.
func (p Position) Add(d Direction) Position {
	o := d.Offset()
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

// Manhattan returns |dx| + |dy|.
func (p Position) Manhattan(o Position) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

// Chebyshev returns max(|dx|, |dy|); 1 means the cells touch, diagonals included.
func (p Position) Chebyshev(o Position) int {
	dx, dy := abs(p.X-o.X), abs(p.Y-o.Y)
	if dx > dy {
		return dx
	}
	return dy
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is one of the eight compass steps.
type Direction uint8

// The constant order is the fixed enumeration order used by every search
// and neighbor scan, which keeps tie-breaking reproducible.
const (
	Down Direction = iota
	Up
	Left
	Right
	UpLeft
	UpRight
	DownLeft
	DownRight
)

// Directions lists all eight directions in enumeration order.
var Directions = [8]Direction{Down, Up, Left, Right, UpLeft, UpRight, DownLeft, DownRight}

var directionOffsets = [8]Position{
	Down:      {X: 0, Y: 1},
	Up:        {X: 0, Y: -1},
	Left:      {X: -1, Y: 0},
	Right:     {X: 1, Y: 0},
	UpLeft:    {X: -1, Y: -1},
	UpRight:   {X: 1, Y: -1},
	DownLeft:  {X: -1, Y: 1},
	DownRight: {X: 1, Y: 1},
}

var directionNames = [8]string{"down", "up", "left", "right", "up-left", "up-right", "down-left", "down-right"}

// Offset returns the unit displacement of d.
func (d Direction) Offset() Position {
	return directionOffsets[d&7]
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// Steps is a movement plan, executed left to right.
type Steps []Direction

// Destination returns where the plan ends if every step is taken.
func (s Steps) Destination(from Position) Position {
	for _, d := range s {
		from = from.Add(d)
	}
	return from
}

func (s Steps) String() string {
	names := make([]string, len(s))
	for i, d := range s {
		names[i] = d.String()
	}
	return "[" + strings.Join(names, " ") + "]"
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

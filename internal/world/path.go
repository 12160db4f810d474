package world

// MaxWalkableDistance is the default cap of WalkableDistance.
const MaxWalkableDistance = 255

type trail struct {
	from Position
	dir  Direction
}

// PathTree is a breadth-first search tree rooted at one cell, confined to a
// Manhattan radius around it. Neighbors are expanded in Directions order, so
// the path recorded for each reached cell is the same one a search aimed
// only at that cell would return.
type PathTree struct {
	origin Position
	radius int
	trails map[Position]trail
}

// PathsFrom grows the full search tree from start.
func (m *Map) PathsFrom(start Position, radius int) *PathTree {
	return m.grow(start, radius, nil)
}

// BFSPath returns a shortest 8-connected path from start to goal that never
// leaves the Manhattan radius around start. It fails when goal is not
// walkable, lies outside the radius, or cannot be reached.
func (m *Map) BFSPath(start, goal Position, radius int) (Steps, bool) {
	if !m.Walkable(goal) || start.Manhattan(goal) > radius {
		return nil, false
	}
	if start == goal {
		return Steps{}, true
	}
	return m.grow(start, radius, &goal).Steps(goal)
}

func (m *Map) grow(start Position, radius int, goal *Position) *PathTree {
	t := &PathTree{origin: start, radius: radius, trails: make(map[Position]trail)}
	if radius < 0 {
		return t
	}
	t.trails[start] = trail{from: start}
	queue := []Position{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range Directions {
			next := cur.Add(d)
			if _, seen := t.trails[next]; seen {
				continue
			}
			if start.Manhattan(next) > radius || !m.Walkable(next) {
				continue
			}
			t.trails[next] = trail{from: cur, dir: d}
			if goal != nil && next == *goal {
				return t
			}
			queue = append(queue, next)
		}
	}
	return t
}

// Origin returns the root of the tree.
func (t *PathTree) Origin() Position {
	return t.origin
}

// Reached reports whether the search reached p.
func (t *PathTree) Reached(p Position) bool {
	_, ok := t.trails[p]
	return ok
}

// Steps rebuilds the path from the origin to goal.
func (t *PathTree) Steps(goal Position) (Steps, bool) {
	if _, ok := t.trails[goal]; !ok {
		return nil, false
	}
	var rev Steps
	for p := goal; p != t.origin; {
		tr := t.trails[p]
		rev = append(rev, tr.dir)
		p = tr.from
	}
	steps := make(Steps, len(rev))
	for i, d := range rev {
		steps[len(rev)-1-i] = d
	}
	return steps, true
}

// SetRayCap changes the cap used by WalkableDistance.
func (m *Map) SetRayCap(n int) {
	if n > 0 {
		m.rayCap = n
	}
}

// WalkableDistance counts the walkable cells in a straight line from p in
// direction d, stopping at the first non-walkable cell or at the ray cap.
func (m *Map) WalkableDistance(p Position, d Direction) int {
	limit := m.rayCap
	if limit <= 0 {
		limit = MaxWalkableDistance
	}
	n := 0
	for cur := p.Add(d); n < limit && m.Walkable(cur); cur = cur.Add(d) {
		n++
	}
	return n
}

// WalkableDistances casts a ray in every direction. Index i holds the
// distance along Directions[i].
func (m *Map) WalkableDistances(p Position) [8]int {
	var out [8]int
	for i, d := range Directions {
		out[i] = m.WalkableDistance(p, d)
	}
	return out
}

package world

// ResourceSighting is a reachable resource cell seen from a scan origin.
type ResourceSighting struct {
	Pos    Position `json:"pos"`
	Steps  Steps    `json:"steps"`
	Amount uint32   `json:"amount"`
}

// ScanResources lists every cell of the given kind within the Manhattan
// radius around center that a path search can reach, in row-major order.
func (m *Map) ScanResources(center Position, radius int, kind CellKind) []ResourceSighting {
	return m.PathsFrom(center, radius).ScanResources(m, kind)
}

// ScanResources is ScanResources on an already grown tree, so one search can
// serve several scans from the same origin.
func (t *PathTree) ScanResources(m *Map, kind CellKind) []ResourceSighting {
	var out []ResourceSighting
	c, r := t.origin, t.radius
	for y := c.Y - r; y <= c.Y+r; y++ {
		span := r - abs(y-c.Y)
		for x := c.X - span; x <= c.X+span; x++ {
			p := Position{X: x, Y: y}
			cell, ok := m.Cell(p)
			if !ok || cell.Kind != kind {
				continue
			}
			steps, ok := t.Steps(p)
			if !ok {
				continue
			}
			out = append(out, ResourceSighting{Pos: p, Steps: steps, Amount: cell.Amount})
		}
	}
	return out
}

package pbd

// Solver advances one group by one rendered frame using substepped PBD.
type Solver struct {
	Gravity  Vec2
	Dt       float32
	Substeps int
	// Iterations of the overlap pass and wire re-projection per substep.
	Iterations int
}

func DefaultSolver() Solver {
	return Solver{
		Gravity:    Vec2{0, -10},
		Dt:         1.0 / 60.0,
		Substeps:   100,
		Iterations: 8,
	}
}

// Frame runs every substep of one frame on a single group in place. The
// result depends only on the group and the wire.
func (s Solver) Frame(group []Bead, wire Wire) {
	if s.Substeps <= 0 || len(group) == 0 {
		return
	}
	sdt := s.Dt / float32(s.Substeps)
	invSdt := 1 / sdt
	accel := s.Gravity.Scale(0.5 * sdt * sdt)

	iters := s.Iterations
	if iters < 1 {
		iters = 1
	}

	for step := 0; step < s.Substeps; step++ {
		for i := range group {
			b := &group[i]
			b.PrevPos = b.Pos
			b.Pos = b.Pos.Add(b.Vel.Scale(sdt)).Add(accel)
			b.Pos = project(b.Pos, wire)
		}

		for it := 0; it < iters; it++ {
			separate(group, wire)
			for i := range group {
				group[i].Pos = project(group[i].Pos, wire)
			}
		}

		for i := range group {
			b := &group[i]
			b.Vel = b.Pos.Sub(b.PrevPos).Scale(invSdt)
		}
	}
}

// project snaps p radially onto the wire circle.
func project(p Vec2, wire Wire) Vec2 {
	off := p.Sub(wire.Center)
	d := off.Len()
	if d == 0 {
		return Vec2{wire.Center.X + wire.Radius, wire.Center.Y}
	}
	if d == wire.Radius {
		return p
	}
	return wire.Center.Add(off.Scale(wire.Radius / d))
}

// separate pushes apart every overlapping pair, the lighter bead moving more.
func separate(group []Bead, wire Wire) {
	for i := 0; i < len(group); i++ {
		bi := &group[i]
		wi := 1 / bi.Mass
		for j := i + 1; j < len(group); j++ {
			bj := &group[j]
			minDist := bi.Radius + bj.Radius

			delta := bj.Pos.Sub(bi.Pos)
			d := delta.Len()
			if d >= minDist {
				continue
			}

			var n Vec2
			if d > 0 {
				n = delta.Scale(1 / d)
			} else {
				n = tieAxis(bi, bj, wire)
			}

			wj := 1 / bj.Mass
			corr := (minDist - d) / (wi + wj)
			bi.Pos = bi.Pos.Sub(n.Scale(corr * wi))
			bj.Pos = bj.Pos.Add(n.Scale(corr * wj))
		}
	}
}

// tieAxis orders exactly coincident beads by where they were at the start of
// the substep, falling back to the wire tangent at the first bead.
func tieAxis(bi, bj *Bead, wire Wire) Vec2 {
	prev := bj.PrevPos.Sub(bi.PrevPos)
	if l := prev.Len(); l > 0 {
		return prev.Scale(1 / l)
	}
	off := bi.Pos.Sub(wire.Center)
	t := Vec2{-off.Y, off.X}
	if l := t.Len(); l > 0 {
		return t.Scale(1 / l)
	}
	return Vec2{1, 0}
}

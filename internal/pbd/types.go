package pbd

import "math"

// MaxGroups bounds the host buffer a single run may allocate.
const MaxGroups = 65536

type Vec2 struct {
	X float32
	Y float32
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(f float32) Vec2 { return Vec2{v.X * f, v.Y * f} }

func (v Vec2) Dot(o Vec2) float32 { return v.X*o.X + v.Y*o.Y }

func (v Vec2) Len() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

func (v Vec2) IsValid() bool {
	return !math.IsNaN(float64(v.X)) && !math.IsNaN(float64(v.Y)) &&
		!math.IsInf(float64(v.X), 0) && !math.IsInf(float64(v.Y), 0)
}

type Bead struct {
	Radius  float32
	Mass    float32
	Pos     Vec2
	PrevPos Vec2
	Vel     Vec2
}

// NewBead places a bead at rest. Mass is the disk area.
func NewBead(radius float32, pos Vec2) Bead {
	return Bead{
		Radius:  radius,
		Mass:    float32(math.Pi) * radius * radius,
		Pos:     pos,
		PrevPos: pos,
	}
}

type Wire struct {
	Center Vec2    `yaml:"center"`
	Radius float32 `yaml:"radius"`
}

// Residual is how far p lies off the wire circle.
func (w Wire) Residual(p Vec2) float32 {
	d := p.Sub(w.Center).Len() - w.Radius
	if d < 0 {
		return -d
	}
	return d
}

// State holds every group of a run in one flat, group-major buffer.
type State struct {
	Groups        int
	BeadsPerGroup int
	Beads         []Bead
}

func NewState(groups, beadsPerGroup int) *State {
	return &State{
		Groups:        groups,
		BeadsPerGroup: beadsPerGroup,
		Beads:         make([]Bead, groups*beadsPerGroup),
	}
}

func (s *State) Group(i int) []Bead {
	start := i * s.BeadsPerGroup
	return s.Beads[start : start+s.BeadsPerGroup : start+s.BeadsPerGroup]
}

func (s *State) Len() int { return len(s.Beads) }

func (s *State) Clone() *State {
	c := &State{
		Groups:        s.Groups,
		BeadsPerGroup: s.BeadsPerGroup,
		Beads:         make([]Bead, len(s.Beads)),
	}
	copy(c.Beads, s.Beads)
	return c
}

func (s *State) IsValid() bool {
	for i := range s.Beads {
		b := &s.Beads[i]
		if !b.Pos.IsValid() || !b.Vel.IsValid() {
			return false
		}
	}
	return true
}

// Equal reports whether both states hold bit-identical beads.
func (s *State) Equal(o *State) bool {
	if s.Groups != o.Groups || s.BeadsPerGroup != o.BeadsPerGroup || len(s.Beads) != len(o.Beads) {
		return false
	}
	for i := range s.Beads {
		if s.Beads[i] != o.Beads[i] {
			return false
		}
	}
	return true
}

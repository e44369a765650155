package metrics

import "github.com/san-kum/beadsim/internal/pbd"

// Energy averages the mechanical energy per group over every observation.
// Potential energy is measured from the lowest point of the wire.
type Energy struct {
	gravity     pbd.Vec2
	bottom      float64
	samples     int
	totalEnergy float64
}

func NewEnergy(wire pbd.Wire, gravity pbd.Vec2) *Energy {
	return &Energy{
		gravity: gravity,
		bottom:  float64(wire.Center.Y - wire.Radius),
	}
}

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(st *pbd.State, frame int) {
	if st.Groups == 0 {
		return
	}
	g := -float64(e.gravity.Y)
	sum := 0.0
	for i := range st.Beads {
		b := &st.Beads[i]
		v2 := float64(b.Vel.Dot(b.Vel))
		ke := 0.5 * float64(b.Mass) * v2
		pe := float64(b.Mass) * g * (float64(b.Pos.Y) - e.bottom)
		sum += ke + pe
	}
	e.totalEnergy += sum / float64(st.Groups)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// Height is the mean bead height at the latest observation.
type Height struct {
	last float64
}

func NewHeight() *Height { return &Height{} }

func (h *Height) Name() string { return "mean_height" }

func (h *Height) Observe(st *pbd.State, frame int) {
	if len(st.Beads) == 0 {
		return
	}
	sum := 0.0
	for i := range st.Beads {
		sum += float64(st.Beads[i].Pos.Y)
	}
	h.last = sum / float64(len(st.Beads))
}

func (h *Height) Value() float64 { return h.last }
func (h *Height) Reset()         { h.last = 0 }

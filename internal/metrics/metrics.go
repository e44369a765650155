package metrics

import "github.com/san-kum/beadsim/internal/pbd"

// Metric observes the host state between frames. It never mutates it.
type Metric interface {
	Name() string
	Observe(st *pbd.State, frame int)
	Value() float64
	Reset()
}

// Defaults returns the metrics every run records.
func Defaults(wire pbd.Wire, gravity pbd.Vec2) []Metric {
	return []Metric{
		NewWireResidual(wire),
		NewOverlap(),
		NewEnergy(wire, gravity),
		NewHeight(),
	}
}

// WireResidual is the largest distance of any bead from the wire circle.
type WireResidual struct {
	wire pbd.Wire
	max  float64
}

func NewWireResidual(wire pbd.Wire) *WireResidual {
	return &WireResidual{wire: wire}
}

func (w *WireResidual) Name() string { return "wire_residual" }

func (w *WireResidual) Observe(st *pbd.State, frame int) {
	for i := range st.Beads {
		if r := float64(w.wire.Residual(st.Beads[i].Pos)); r > w.max {
			w.max = r
		}
	}
}

func (w *WireResidual) Value() float64 { return w.max }
func (w *WireResidual) Reset()         { w.max = 0 }

// Overlap is the deepest penetration between two beads of the same group.
type Overlap struct {
	max float64
}

func NewOverlap() *Overlap { return &Overlap{} }

func (o *Overlap) Name() string { return "max_overlap" }

func (o *Overlap) Observe(st *pbd.State, frame int) {
	for g := 0; g < st.Groups; g++ {
		group := st.Group(g)
		for i := range group {
			for j := i + 1; j < len(group); j++ {
				d := group[j].Pos.Sub(group[i].Pos).Len()
				if pen := float64(group[i].Radius + group[j].Radius - d); pen > o.max {
					o.max = pen
				}
			}
		}
	}
}

func (o *Overlap) Value() float64 { return o.max }
func (o *Overlap) Reset()         { o.max = 0 }

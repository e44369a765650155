package pbd

import (
	"math"
	"math/rand"
)

// RadiusRange is the half-open interval bead radii are drawn from.
type RadiusRange struct {
	Min float32 `yaml:"min"`
	Max float32 `yaml:"max"`
}

var DefaultRadii = RadiusRange{Min: 0.05, Max: 0.15}

func (r RadiusRange) draw(rng *rand.Rand) float32 {
	return r.Min + float32(rng.Float64())*(r.Max-r.Min)
}

// Initialize builds every group with beads spaced pi/n apart, starting at
// angle zero on the wire. Radii come from one shared stream, consumed group by
// group, so a group's beads depend only on the seed and its index.
func Initialize(groups, beadsPerGroup int, wire Wire, radii RadiusRange, rng *rand.Rand) (*State, error) {
	if groups <= 0 || groups > MaxGroups {
		return nil, &ConfigError{Field: "groups", Value: groups, Reason: "must be in [1, 65536]"}
	}
	if beadsPerGroup <= 0 {
		return nil, &ConfigError{Field: "beads", Value: beadsPerGroup, Reason: "must be positive"}
	}
	if radii.Min <= 0 || radii.Max < radii.Min {
		return nil, &ConfigError{Field: "radii", Value: radii, Reason: "need 0 < min <= max"}
	}

	st := NewState(groups, beadsPerGroup)
	step := math.Pi / float64(beadsPerGroup)

	for g := 0; g < groups; g++ {
		group := st.Group(g)
		rot := 0.0
		for j := range group {
			pos := Vec2{
				X: wire.Center.X + wire.Radius*float32(math.Cos(rot)),
				Y: wire.Center.Y + wire.Radius*float32(math.Sin(rot)),
			}
			group[j] = NewBead(radii.draw(rng), pos)
			rot += step
		}
	}

	return st, nil
}

package analysis

import (
	"math"

	"github.com/san-kum/beadsim/internal/storage"
)

// SplitFrames groups consecutive rows by frame index, keeping file order.
func SplitFrames(records []storage.Record) [][]storage.Record {
	var frames [][]storage.Record
	start := 0
	for i := 1; i <= len(records); i++ {
		if i == len(records) || records[i].Frame != records[start].Frame {
			frames = append(frames, records[start:i])
			start = i
		}
	}
	return frames
}

// Angle of (x, y) around the wire, zero at the bottom, in (-pi, pi].
func Angle(x, y float64, wire storage.Record) float64 {
	return math.Atan2(x-float64(wire.X), -(y - float64(wire.Y)))
}

func wireOf(frame []storage.Record) (storage.Record, bool) {
	for _, r := range frame {
		if r.Kind == storage.KindWire {
			return r, true
		}
	}
	return storage.Record{}, false
}

// FinalAngles returns the angle of every bead in the last captured frame.
func FinalAngles(records []storage.Record) []float64 {
	frames := SplitFrames(records)
	if len(frames) == 0 {
		return nil
	}
	last := frames[len(frames)-1]
	wire, ok := wireOf(last)
	if !ok {
		return nil
	}

	angles := make([]float64, 0, len(last)-1)
	for _, r := range last {
		if r.Kind == storage.KindBead {
			angles = append(angles, Angle(float64(r.X), float64(r.Y), wire))
		}
	}
	return angles
}

// HeightSeries is one bead's y coordinate across every captured frame.
func HeightSeries(records []storage.Record, bead int) []float64 {
	frames := SplitFrames(records)
	series := make([]float64, 0, len(frames))
	for _, frame := range frames {
		n := 0
		for _, r := range frame {
			if r.Kind != storage.KindBead {
				continue
			}
			if n == bead {
				series = append(series, float64(r.Y))
				break
			}
			n++
		}
	}
	return series
}

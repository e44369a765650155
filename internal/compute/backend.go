package compute

import (
	"fmt"
	"time"

	"github.com/san-kum/beadsim/internal/pbd"
)

// Kernel advances one group in place.
type Kernel func(group []pbd.Bead, wire pbd.Wire)

// Shape is the buffer layout the host declares before uploading.
type Shape struct {
	Groups        int
	BeadsPerGroup int
}

func (s Shape) Len() int { return s.Groups * s.BeadsPerGroup }

// DispatchTiming reports how long a dispatch took overall and per lane.
type DispatchTiming struct {
	Wall  time.Duration
	Lanes []time.Duration
}

type Backend interface {
	Name() string
	Available() bool
	Allocate(shape Shape) error
	Upload(beads []pbd.Bead, wire pbd.Wire) error
	Dispatch(k Kernel) (DispatchTiming, error)
	Readback(dst []pbd.Bead) error
	Cleanup()
}

var registry = map[string]func(workers int) Backend{
	"cpu":    func(workers int) Backend { return NewCPUBackend(workers) },
	"serial": func(int) Backend { return NewSerialBackend() },
}

// New returns the backend registered under name. workers <= 0 means one
// worker per CPU.
func New(name string, workers int) (Backend, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", pbd.ErrUnknownBackend, name)
	}
	return fn(workers), nil
}

func Names() []string {
	return []string{"cpu", "serial"}
}

// buffer is the device-side storage shared by every backend.
type buffer struct {
	shape     Shape
	beads     []pbd.Bead
	wire      pbd.Wire
	allocated bool
	uploaded  bool
}

func (b *buffer) allocate(shape Shape) error {
	if shape.Groups <= 0 || shape.BeadsPerGroup <= 0 {
		return fmt.Errorf("%w: %dx%d", pbd.ErrShapeMismatch, shape.Groups, shape.BeadsPerGroup)
	}
	b.shape = shape
	b.beads = make([]pbd.Bead, shape.Len())
	b.allocated = true
	b.uploaded = false
	return nil
}

func (b *buffer) upload(src []pbd.Bead, wire pbd.Wire) error {
	if !b.allocated {
		return pbd.ErrNotInitialized
	}
	if len(src) != b.shape.Len() {
		return fmt.Errorf("%w: got %d beads, declared %d", pbd.ErrShapeMismatch, len(src), b.shape.Len())
	}
	copy(b.beads, src)
	b.wire = wire
	b.uploaded = true
	return nil
}

func (b *buffer) readback(dst []pbd.Bead) error {
	if !b.uploaded {
		return pbd.ErrNotInitialized
	}
	if len(dst) != len(b.beads) {
		return fmt.Errorf("%w: got %d beads, declared %d", pbd.ErrShapeMismatch, len(dst), len(b.beads))
	}
	copy(dst, b.beads)
	return nil
}

func (b *buffer) lane(i int) []pbd.Bead {
	n := b.shape.BeadsPerGroup
	return b.beads[i*n : (i+1)*n : (i+1)*n]
}

func (b *buffer) release() {
	b.beads = nil
	b.allocated = false
	b.uploaded = false
}

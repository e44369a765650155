package compute

import (
	"time"

	"github.com/san-kum/beadsim/internal/pbd"
)

// SerialBackend runs lanes in group order on the calling goroutine. It is the
// reference the parallel backend is checked against.
type SerialBackend struct {
	buf buffer
}

func NewSerialBackend() *SerialBackend {
	return &SerialBackend{}
}

func (s *SerialBackend) Name() string    { return "serial" }
func (s *SerialBackend) Available() bool { return true }
func (s *SerialBackend) Cleanup()        { s.buf.release() }

func (s *SerialBackend) Allocate(shape Shape) error { return s.buf.allocate(shape) }

func (s *SerialBackend) Upload(beads []pbd.Bead, wire pbd.Wire) error {
	return s.buf.upload(beads, wire)
}

func (s *SerialBackend) Readback(dst []pbd.Bead) error { return s.buf.readback(dst) }

func (s *SerialBackend) Dispatch(k Kernel) (DispatchTiming, error) {
	if !s.buf.uploaded {
		return DispatchTiming{}, pbd.ErrNotInitialized
	}

	groups := s.buf.shape.Groups
	timing := DispatchTiming{Lanes: make([]time.Duration, groups)}

	start := time.Now()
	for i := 0; i < groups; i++ {
		t0 := time.Now()
		k(s.buf.lane(i), s.buf.wire)
		timing.Lanes[i] = time.Since(t0)
	}
	timing.Wall = time.Since(start)

	return timing, nil
}

package compute

import (
	"runtime"
	"time"

	"github.com/san-kum/beadsim/internal/pbd"
	"golang.org/x/sync/errgroup"
)

type CPUBackend struct {
	workers int
	buf     buffer
}

func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUBackend{workers: workers}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Workers() int    { return c.workers }
func (c *CPUBackend) Cleanup()        { c.buf.release() }

func (c *CPUBackend) Allocate(shape Shape) error { return c.buf.allocate(shape) }

func (c *CPUBackend) Upload(beads []pbd.Bead, wire pbd.Wire) error {
	return c.buf.upload(beads, wire)
}

func (c *CPUBackend) Readback(dst []pbd.Bead) error { return c.buf.readback(dst) }

// Dispatch runs k once per group and returns after every lane has joined.
func (c *CPUBackend) Dispatch(k Kernel) (DispatchTiming, error) {
	if !c.buf.uploaded {
		return DispatchTiming{}, pbd.ErrNotInitialized
	}

	groups := c.buf.shape.Groups
	timing := DispatchTiming{Lanes: make([]time.Duration, groups)}
	wire := c.buf.wire

	var g errgroup.Group
	g.SetLimit(c.workers)

	start := time.Now()
	for i := 0; i < groups; i++ {
		lane := c.buf.lane(i)
		g.Go(func() error {
			t0 := time.Now()
			k(lane, wire)
			timing.Lanes[i] = time.Since(t0)
			return nil
		})
	}
	err := g.Wait()
	timing.Wall = time.Since(start)

	return timing, err
}

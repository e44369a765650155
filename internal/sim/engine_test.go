package sim

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/beadsim/internal/compute"
	"github.com/san-kum/beadsim/internal/pbd"
)

var (
	testWire   = pbd.Wire{Radius: 0.8}
	quietLog   = slog.New(slog.NewTextHandler(io.Discard, nil))
	errBadLane = errors.New("lane fault")
)

type failingBackend struct {
	compute.Backend
	failDispatch bool
	failUpload   bool
	poison       bool
}

func (f *failingBackend) Upload(beads []pbd.Bead, wire pbd.Wire) error {
	if f.failUpload {
		return errBadLane
	}
	return f.Backend.Upload(beads, wire)
}

func (f *failingBackend) Dispatch(k compute.Kernel) (compute.DispatchTiming, error) {
	if f.failDispatch {
		return compute.DispatchTiming{}, errBadLane
	}
	if f.poison {
		return f.Backend.Dispatch(func(group []pbd.Bead, wire pbd.Wire) {
			k(group, wire)
			group[0].Pos.X = float32(math.NaN())
		})
	}
	return f.Backend.Dispatch(k)
}

func newState(groups int, seed int64) *pbd.State {
	st, err := pbd.Initialize(groups, 8, testWire, pbd.DefaultRadii, rand.New(rand.NewSource(seed)))
	Expect(err).NotTo(HaveOccurred())
	return st
}

func advance(e *Engine, frames int) {
	for i := 0; i < frames; i++ {
		Expect(e.AdvanceFrame()).To(Succeed())
	}
}

var _ = Describe("Engine", func() {
	var solver pbd.Solver

	BeforeEach(func() {
		solver = pbd.DefaultSolver()
	})

	Describe("Initialize", func() {
		It("rejects a second upload", func() {
			e := New(compute.NewSerialBackend(), solver, quietLog)
			st := newState(2, 1)
			Expect(e.Initialize(st, testWire)).To(Succeed())

			err := e.Initialize(st, testWire)
			Expect(err).To(MatchError(pbd.ErrAlreadyInitialized))

			var engErr *pbd.EngineError
			Expect(errors.As(err, &engErr)).To(BeTrue())
			Expect(engErr.Op).To(Equal("initialize"))
		})

		It("reports upload failures as engine errors", func() {
			e := New(&failingBackend{Backend: compute.NewSerialBackend(), failUpload: true}, solver, quietLog)
			err := e.Initialize(newState(1, 1), testWire)

			var engErr *pbd.EngineError
			Expect(errors.As(err, &engErr)).To(BeTrue())
			Expect(engErr.Error()).To(Equal("upload(-5)"))
			Expect(err).To(MatchError(errBadLane))
		})
	})

	Describe("AdvanceFrame", func() {
		It("fails before Initialize", func() {
			e := New(compute.NewSerialBackend(), solver, quietLog)
			Expect(e.AdvanceFrame()).To(MatchError(pbd.ErrNotInitialized))
		})

		It("surfaces dispatch failures without touching the state", func() {
			st := newState(2, 1)
			before := st.Clone()
			e := New(&failingBackend{Backend: compute.NewCPUBackend(2), failDispatch: true}, solver, quietLog)
			Expect(e.Initialize(st, testWire)).To(Succeed())

			err := e.AdvanceFrame()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("dispatch(-6)"))
			Expect(st.Equal(before)).To(BeTrue())
		})

		It("rejects NaN positions after readback", func() {
			e := New(&failingBackend{Backend: compute.NewSerialBackend(), poison: true}, solver, quietLog)
			Expect(e.Initialize(newState(1, 1), testWire)).To(Succeed())

			err := e.AdvanceFrame()
			Expect(err).To(MatchError(pbd.ErrInvalidState))
			Expect(err.Error()).To(Equal("validate(-8)"))
		})

		It("skips the NaN check when validation is off", func() {
			e := New(&failingBackend{Backend: compute.NewSerialBackend(), poison: true}, solver, quietLog)
			e.SetValidate(false)
			Expect(e.Initialize(newState(1, 1), testWire)).To(Succeed())
			Expect(e.AdvanceFrame()).To(Succeed())
		})

		It("overwrites the host state after every frame", func() {
			st := newState(3, 2)
			before := st.Clone()
			e := New(compute.NewCPUBackend(0), solver, quietLog)
			Expect(e.Initialize(st, testWire)).To(Succeed())

			advance(e, 1)
			Expect(e.State()).To(BeIdenticalTo(st))
			Expect(st.Equal(before)).To(BeFalse())
		})

		It("keeps every bead on the wire", func() {
			st := newState(4, 3)
			e := New(compute.NewCPUBackend(0), solver, quietLog)
			Expect(e.Initialize(st, testWire)).To(Succeed())

			for f := 0; f < 30; f++ {
				advance(e, 1)
				for _, b := range st.Beads {
					Expect(testWire.Residual(b.Pos)).To(BeNumerically("<=", 1e-4))
				}
			}
		})

		It("is deterministic from an identical state", func() {
			a := newState(4, 9)
			b := a.Clone()

			ea := New(compute.NewCPUBackend(4), solver, quietLog)
			eb := New(compute.NewCPUBackend(1), solver, quietLog)
			Expect(ea.Initialize(a, testWire)).To(Succeed())
			Expect(eb.Initialize(b, testWire)).To(Succeed())

			advance(ea, 10)
			advance(eb, 10)
			Expect(a.Equal(b)).To(BeTrue())
		})

		It("evolves a group independently of its siblings", func() {
			one := newState(1, 21)
			two := newState(2, 21)

			e1 := New(compute.NewSerialBackend(), solver, quietLog)
			e2 := New(compute.NewCPUBackend(2), solver, quietLog)
			Expect(e1.Initialize(one, testWire)).To(Succeed())
			Expect(e2.Initialize(two, testWire)).To(Succeed())

			advance(e1, 15)
			advance(e2, 15)
			Expect(two.Group(0)).To(Equal(one.Group(0)))
		})
	})

	Describe("Timing", func() {
		It("accumulates per frame and per group", func() {
			e := New(compute.NewSerialBackend(), solver, quietLog)
			Expect(e.Initialize(newState(3, 1), testWire)).To(Succeed())
			advance(e, 5)

			tm := e.Timing()
			Expect(tm.Frames).To(Equal(5))
			Expect(tm.Lanes).To(HaveLen(3))
			Expect(tm.Total).To(BeNumerically(">", 0))
			Expect(tm.Mean()).To(BeNumerically("<=", tm.Total))
		})

		It("averages lane time across groups", func() {
			tm := Timing{Lanes: []time.Duration{100, 200, 300}}
			Expect(tm.Mean()).To(Equal(time.Duration(200)))
			Expect(Timing{}.Mean()).To(BeZero())
		})
	})
})

package sim

import (
	"log/slog"
	"time"

	"github.com/san-kum/beadsim/internal/compute"
	"github.com/san-kum/beadsim/internal/pbd"
	"gonum.org/v1/gonum/stat"
)

// Timing accumulates device execution time over a run.
type Timing struct {
	Frames int
	Total  time.Duration
	Lanes  []time.Duration
}

// Mean is the accumulated lane time averaged across groups.
func (t Timing) Mean() time.Duration {
	if len(t.Lanes) == 0 {
		return 0
	}
	ns := make([]float64, len(t.Lanes))
	for i, d := range t.Lanes {
		ns[i] = float64(d.Nanoseconds())
	}
	return time.Duration(stat.Mean(ns, nil))
}

// Engine owns the device copy of a run's beads. The host state is only
// written by readback after a dispatch has fully joined.
type Engine struct {
	backend     compute.Backend
	solver      pbd.Solver
	state       *pbd.State
	timing      Timing
	validate    bool
	initialized bool
	logger      *slog.Logger
}

func New(backend compute.Backend, solver pbd.Solver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		backend:  backend,
		solver:   solver,
		validate: true,
		logger:   logger,
	}
}

// SetValidate toggles the NaN/Inf check after every readback.
func (e *Engine) SetValidate(v bool) { e.validate = v }

// Initialize declares the buffer shape and uploads a copy of the beads and
// the wire. It must be called exactly once, before any AdvanceFrame.
func (e *Engine) Initialize(state *pbd.State, wire pbd.Wire) error {
	if e.initialized {
		return &pbd.EngineError{Op: "initialize", Code: pbd.CodeUpload, Wrapped: pbd.ErrAlreadyInitialized}
	}

	shape := compute.Shape{Groups: state.Groups, BeadsPerGroup: state.BeadsPerGroup}
	if err := e.backend.Allocate(shape); err != nil {
		return &pbd.EngineError{Op: "allocate", Code: pbd.CodeAllocate, Wrapped: err}
	}
	if err := e.backend.Upload(state.Beads, wire); err != nil {
		return &pbd.EngineError{Op: "upload", Code: pbd.CodeUpload, Wrapped: err}
	}

	e.state = state
	e.timing = Timing{Lanes: make([]time.Duration, state.Groups)}
	e.initialized = true

	e.logger.Debug("engine initialized",
		"backend", e.backend.Name(),
		"groups", state.Groups,
		"beads_per_group", state.BeadsPerGroup,
		"substeps", e.solver.Substeps,
	)
	return nil
}

// AdvanceFrame runs one frame on every group, waits for all lanes and reads
// the result back into the host state.
func (e *Engine) AdvanceFrame() error {
	if !e.initialized {
		return &pbd.EngineError{Op: "dispatch", Code: pbd.CodeDispatch, Wrapped: pbd.ErrNotInitialized}
	}

	dt, err := e.backend.Dispatch(e.solver.Frame)
	if err != nil {
		return &pbd.EngineError{Op: "dispatch", Code: pbd.CodeDispatch, Wrapped: err}
	}
	if err := e.backend.Readback(e.state.Beads); err != nil {
		return &pbd.EngineError{Op: "readback", Code: pbd.CodeReadback, Wrapped: err}
	}

	e.timing.Frames++
	e.timing.Total += dt.Wall
	for i, d := range dt.Lanes {
		e.timing.Lanes[i] += d
	}

	if e.validate && !e.state.IsValid() {
		return &pbd.EngineError{Op: "validate", Code: pbd.CodeState, Wrapped: pbd.ErrInvalidState}
	}
	return nil
}

// State is the host copy; read it only between AdvanceFrame calls.
func (e *Engine) State() *pbd.State { return e.state }

func (e *Engine) Timing() Timing {
	t := e.timing
	t.Lanes = append([]time.Duration(nil), e.timing.Lanes...)
	return t
}

func (e *Engine) Backend() compute.Backend { return e.backend }

func (e *Engine) Close() {
	e.backend.Cleanup()
	e.initialized = false
}

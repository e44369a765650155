package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/san-kum/beadsim/internal/compute"
	"github.com/san-kum/beadsim/internal/config"
	"github.com/san-kum/beadsim/internal/metrics"
	"github.com/san-kum/beadsim/internal/pbd"
	"github.com/san-kum/beadsim/internal/sim"
)

// Sink receives read-only snapshots of the host state.
type Sink interface {
	Capture(frame int, st *pbd.State) error
	Close() error
}

// Observer is notified after every frame, on the driver goroutine.
type Observer interface {
	OnFrame(frame, total int, st *pbd.State)
}

type Result struct {
	Frames   int
	Captured int
	Timing   sim.Timing
	Metrics  map[string]float64
	Final    *pbd.State
}

type Experiment struct {
	cfg        *config.Config
	engine     *sim.Engine
	sink       Sink
	metrics    []metrics.Metric
	observers  []Observer
	randSource *rand.Rand
	logger     *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) *Experiment {
	if logger == nil {
		logger = slog.Default()
	}
	return &Experiment{
		cfg:        cfg,
		randSource: rand.New(rand.NewSource(cfg.Seed)),
		logger:     logger,
	}
}

// Setup wires the backend and the output sink. sink may be nil.
func (e *Experiment) Setup(backend compute.Backend, sink Sink, ms []metrics.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	e.engine = sim.New(backend, e.cfg.NewSolver(), e.logger)
	e.engine.SetValidate(!e.cfg.SkipValidate)
	e.sink = sink
	e.metrics = ms
	return nil
}

func (e *Experiment) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// Run initializes every group, uploads once and advances frame by frame. In
// ends-only mode only frame 0 and a final frame 1 reach the sink. The sink is
// closed before Run returns.
func (e *Experiment) Run(ctx context.Context) (res *Result, err error) {
	if e.engine == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	if e.sink != nil {
		defer func() {
			if cerr := e.sink.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing output: %w", cerr)
			}
		}()
	}

	st, err := pbd.Initialize(e.cfg.Groups, e.cfg.Beads, e.cfg.Wire, e.cfg.Radii, e.randSource)
	if err != nil {
		return nil, err
	}
	if err := e.engine.Initialize(st, e.cfg.Wire); err != nil {
		return nil, err
	}
	defer e.engine.Close()

	frames := e.cfg.Frames()
	res = &Result{Frames: frames, Metrics: make(map[string]float64)}

	e.logger.Info("simulation started",
		"groups", e.cfg.Groups,
		"frames", frames,
		"ends_only", e.cfg.EndsOnly,
		"backend", e.engine.Backend().Name(),
		"seed", e.cfg.Seed,
	)

	for _, m := range e.metrics {
		m.Reset()
		m.Observe(st, 0)
	}

	for f := 0; f < frames; f++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		if !e.cfg.EndsOnly || f == 0 {
			if err := e.capture(res, f, st); err != nil {
				return res, err
			}
		}

		if err := e.engine.AdvanceFrame(); err != nil {
			return res, err
		}

		for _, m := range e.metrics {
			m.Observe(st, f+1)
		}
		for _, o := range e.observers {
			o.OnFrame(f+1, frames, st)
		}
	}

	last := frames
	if e.cfg.EndsOnly {
		last = 1
	}
	if err := e.capture(res, last, st); err != nil {
		return res, err
	}

	res.Timing = e.engine.Timing()
	res.Final = st.Clone()
	for _, m := range e.metrics {
		res.Metrics[m.Name()] = m.Value()
	}

	e.logger.Info("simulation finished",
		"frames", res.Timing.Frames,
		"captured", res.Captured,
		"device_total", res.Timing.Total,
	)
	return res, nil
}

func (e *Experiment) capture(res *Result, frame int, st *pbd.State) error {
	if e.sink == nil {
		return nil
	}
	if err := e.sink.Capture(frame, st); err != nil {
		return fmt.Errorf("capturing frame %d: %w", frame, err)
	}
	res.Captured++
	return nil
}

// IsConfigError reports whether err rejects the run's configuration.
func IsConfigError(err error) bool {
	var cfgErr *pbd.ConfigError
	return errors.As(err, &cfgErr)
}

package experiment

import (
	"context"
	"log/slog"
	"time"

	"github.com/san-kum/beadsim/internal/compute"
	"github.com/san-kum/beadsim/internal/config"
	"github.com/san-kum/beadsim/internal/metrics"
	"github.com/san-kum/beadsim/internal/storage"
)

// Execute runs cfg into a new run directory of st and records its metadata.
// The configuration is validated before anything touches the disk.
func Execute(ctx context.Context, st *storage.Store, name string, cfg *config.Config, logger *slog.Logger, observers ...Observer) (*storage.RunMetadata, *Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	backend, err := compute.New(cfg.Backend, cfg.Workers)
	if err != nil {
		return nil, nil, err
	}

	if err := st.Init(); err != nil {
		return nil, nil, err
	}
	runID, runDir, err := st.Create(name, cfg)
	if err != nil {
		return nil, nil, err
	}

	rec, err := storage.NewRecorder(runDir, cfg.Groups, cfg.Wire)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("recording timelines", "dir", rec.Dir(), "groups", cfg.Groups)

	exp := New(cfg, logger)
	if err := exp.Setup(backend, rec, metrics.Defaults(cfg.Wire, cfg.Solver.Gravity)); err != nil {
		rec.Close()
		return nil, nil, err
	}
	for _, o := range observers {
		exp.AddObserver(o)
	}

	res, err := exp.Run(ctx)
	if err != nil {
		return nil, res, err
	}

	meta := storage.RunMetadata{
		ID:            runID,
		Timestamp:     time.Now(),
		Seed:          cfg.Seed,
		Groups:        cfg.Groups,
		BeadsPerGroup: cfg.Beads,
		EndsOnly:      cfg.EndsOnly,
		Frames:        res.Frames,
		Captured:      res.Captured,
		Backend:       backend.Name(),
		Workers:       workersOf(backend),
		TotalNs:       res.Timing.Total.Nanoseconds(),
		MeanNs:        res.Timing.Mean().Nanoseconds(),
		Metrics:       res.Metrics,
	}
	if err := st.SaveMetadata(meta); err != nil {
		return nil, res, err
	}
	return &meta, res, nil
}

// workersOf reports the lane limit of backends that have one, else 1.
func workersOf(b compute.Backend) int {
	if w, ok := b.(interface{ Workers() int }); ok {
		return w.Workers()
	}
	return 1
}

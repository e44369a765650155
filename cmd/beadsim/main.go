package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/beadsim/internal/compute"
	"github.com/san-kum/beadsim/internal/config"
	"github.com/san-kum/beadsim/internal/experiment"
	"github.com/san-kum/beadsim/internal/pbd"
	"github.com/san-kum/beadsim/internal/storage"
	"github.com/san-kum/beadsim/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	groups     int
	endsOnly   bool
	seed       int64
	backend    string
	workers    int
	configFile string
	preset     string
	name       string
	useTUI     bool
	noValidate bool
	verbose    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		var engErr *pbd.EngineError
		if errors.As(err, &engErr) {
			fmt.Fprintln(os.Stderr, engErr.Error())
		} else {
			fmt.Fprintln(os.Stderr, tui.Fail(err.Error()))
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "beadsim",
		Short:         "beads on a circular wire, many groups at once",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE:          runSimulation,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "out", config.DefaultOutputDir, "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.Flags().IntVarP(&groups, "groups", "g", config.DefaultGroups, "number of independent groups")
	rootCmd.Flags().BoolVarP(&endsOnly, "ends-only", "e", false, "record only the first and last frame")
	rootCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	rootCmd.Flags().StringVar(&backend, "backend", config.DefaultBackend, fmt.Sprintf("compute backend %v", compute.Names()))
	rootCmd.Flags().IntVar(&workers, "workers", 0, "parallel lanes for the cpu backend (0 = all cores)")
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.Flags().StringVar(&name, "name", "run", "run name prefix")
	rootCmd.Flags().BoolVar(&useTUI, "tui", false, "show live progress")
	rootCmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip the NaN/Inf check after every frame")

	rootCmd.AddCommand(
		newListCmd(),
		newStatsCmd(),
		newPlotCmd(),
		newPresetsCmd(),
		newScenarioCmd(),
		newBenchCmd(),
	)
	return rootCmd
}

func newLogger(quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	var w io.Writer = os.Stderr
	if quiet && !verbose {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// resolveConfig layers defaults, preset, config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("groups") {
		cfg.Groups = groups
	}
	if flags.Changed("ends-only") {
		cfg.EndsOnly = endsOnly
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("out") {
		cfg.OutputDir = dataDir
	}
	if flags.Changed("no-validate") {
		cfg.SkipValidate = noValidate
	}

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	for _, w := range configWarnings(cfg) {
		fmt.Fprintln(os.Stderr, tui.Warn(w))
	}

	ctx, stop := signalContext()
	defer stop()

	st := storage.New(cfg.OutputDir)

	var (
		meta *storage.RunMetadata
		res  *experiment.Result
	)
	if useTUI {
		meta, res, err = runWithProgress(ctx, st, cfg)
	} else {
		meta, res, err = experiment.Execute(ctx, st, name, cfg, newLogger(false))
	}
	if err != nil {
		return err
	}

	fmt.Print(tui.RenderReport(tui.Report{
		RunID:    meta.ID,
		Dir:      st.RunDir(meta.ID),
		Backend:  meta.Backend,
		Workers:  meta.Workers,
		Groups:   meta.Groups,
		Frames:   res.Frames,
		Captured: res.Captured,
		EndsOnly: meta.EndsOnly,
		Total:    res.Timing.Total,
		Mean:     res.Timing.Mean(),
		Metrics:  res.Metrics,
	}))
	return nil
}

// configWarnings flags settings that are accepted but have no effect.
func configWarnings(cfg *config.Config) []string {
	var warnings []string
	if cfg.Workers > 0 && cfg.Backend != "cpu" {
		warnings = append(warnings, fmt.Sprintf("--workers %d is ignored by the %s backend", cfg.Workers, cfg.Backend))
	}
	if cfg.SkipValidate {
		warnings = append(warnings, "NaN/Inf validation is off")
	}
	return warnings
}

type runOutcome struct {
	meta *storage.RunMetadata
	res  *experiment.Result
	err  error
}

func runWithProgress(ctx context.Context, st *storage.Store, cfg *config.Config) (*storage.RunMetadata, *experiment.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.NewProgress(cfg.Wire, cfg.Frames(), cancel))
	done := make(chan runOutcome, 1)

	go func() {
		meta, res, err := experiment.Execute(ctx, st, name, cfg, newLogger(true), tui.NewFeed(p))
		p.Send(tui.DoneMsg{Err: err})
		done <- runOutcome{meta, res, err}
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, nil, err
	}

	out := <-done
	return out.meta, out.res, out.err
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/beadsim/internal/analysis"
	"github.com/san-kum/beadsim/internal/automation"
	"github.com/san-kum/beadsim/internal/compute"
	"github.com/san-kum/beadsim/internal/config"
	"github.com/san-kum/beadsim/internal/experiment"
	"github.com/san-kum/beadsim/internal/storage"
	"github.com/san-kum/beadsim/internal/tui"
	"github.com/spf13/cobra"
)

var (
	plotGroup int
	plotBead  int
	histBins  int
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [run]",
		Short: "final bead angle statistics per group",
		Args:  cobra.ExactArgs(1),
		RunE:  statsRun,
	}
	cmd.Flags().IntVar(&histBins, "bins", 24, "histogram bins")
	return cmd
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run]",
		Short: "plot one bead's height over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	cmd.Flags().IntVar(&plotGroup, "group", 0, "group index")
	cmd.Flags().IntVar(&plotBead, "bead", 0, "bead index within the group")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tGROUPS\tBEADS\tFRAMES\tENDS\tGRAVITY")
			for _, p := range config.ListPresets() {
				cfg := config.GetPreset(p)
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%v\t%.2f\n",
					p, cfg.Groups, cfg.Beads, cfg.Frames(), cfg.EndsOnly, cfg.Solver.Gravity.Y)
			}
			return w.Flush()
		},
	}
}

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run every entry of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
}

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "compare backends across group counts",
		Args:  cobra.NoArgs,
		RunE:  benchBackends,
	}
}

// runDir accepts either a run id in the data directory or a directory path.
func runDir(arg string) string {
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return arg
	}
	return storage.New(dataDir).RunDir(arg)
}

func groupCount(dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "group_*.csv"))
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, fmt.Errorf("no group timelines in %s", dir)
	}
	return len(matches), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tGROUPS\tFRAMES\tCAPTURED\tBACKEND\tMEAN")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Groups,
			run.Frames,
			run.Captured,
			run.Backend,
			tui.Nanos(time.Duration(run.MeanNs)),
		)
	}

	return w.Flush()
}

func statsRun(cmd *cobra.Command, args []string) error {
	dir := runDir(args[0])
	n, err := groupCount(dir)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tBEADS\tMEAN\tSTDDEV\tMIN\tP50\tMAX")

	var all []float64
	for g := 0; g < n; g++ {
		records, err := storage.LoadTimeline(filepath.Join(dir, storage.GroupFile(g)))
		if err != nil {
			return err
		}
		angles := analysis.FinalAngles(records)
		all = append(all, angles...)

		s := analysis.Summarize(angles)
		fmt.Fprintf(w, "%d\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			g, s.N, s.Mean, s.StdDev, s.Min, s.P50, s.Max)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(all) == 0 {
		return nil
	}

	s := analysis.Summarize(all)
	fmt.Printf("\nall beads: n=%d mean=%.4f stddev=%.4f p10=%.4f p90=%.4f\n\n",
		s.N, s.Mean, s.StdDev, s.P10, s.P90)

	counts, _ := analysis.Histogram(all, histBins)
	graph := asciigraph.Plot(counts,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("final angle distribution (rad, bottom = 0)"),
	)
	fmt.Println(graph)
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	dir := runDir(args[0])
	path := filepath.Join(dir, storage.GroupFile(plotGroup))

	records, err := storage.LoadTimeline(path)
	if err != nil {
		return err
	}

	series := analysis.HeightSeries(records, plotBead)
	if len(series) < 2 {
		return fmt.Errorf("not enough frames to plot in %s", path)
	}

	fps := float64(config.DefaultFPS)
	if cfg, err := config.Load(filepath.Join(dir, "config.yaml")); err == nil {
		fps = float64(cfg.FPS)
	}

	fmt.Printf("group: %d\n", plotGroup)
	fmt.Printf("bead: %d\n", plotBead)
	fmt.Printf("samples: %d\n\n", len(series))

	graph := asciigraph.Plot(series,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("height vs frame"),
	)
	fmt.Println(graph)

	if f := analysis.DominantFrequency(series, fps); f > 0 {
		fmt.Printf("\ndominant frequency: %.3f Hz (period %.3fs)\n", f, 1/f)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	ctx, stop := signalContext()
	defer stop()

	results, err := automation.RunScenario(ctx, scenario, storage.New(dataDir), newLogger(false))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSEED\tGROUPS\tFRAMES\tTOTAL\tMEAN")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\n",
			r.ID, r.Seed, r.Groups, r.Frames,
			tui.Nanos(time.Duration(r.TotalNs)),
			tui.Nanos(time.Duration(r.MeanNs)),
		)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func benchBackends(cmd *cobra.Command, args []string) error {
	counts := []int{1, 64, 1024}
	logger := newLogger(true)

	fmt.Println("benchmarking backends, 1s per run, ends only")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tGROUPS\tFRAMES\tTOTAL\tMEAN\tGROUPS/SEC")

	for _, bn := range compute.Names() {
		for _, n := range counts {
			cfg := config.DefaultConfig()
			cfg.Groups = n
			cfg.Duration = 1
			cfg.EndsOnly = true
			cfg.Backend = bn

			b, err := compute.New(bn, 0)
			if err != nil {
				return err
			}

			exp := experiment.New(cfg, logger)
			if err := exp.Setup(b, nil, nil); err != nil {
				return err
			}
			res, err := exp.Run(context.Background())
			if err != nil {
				return err
			}

			perSec := float64(n*res.Frames) / res.Timing.Total.Seconds()
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%.0f\n",
				bn, n, res.Frames,
				tui.Nanos(res.Timing.Total),
				tui.Nanos(res.Timing.Mean()),
				perSec,
			)
		}
	}

	return w.Flush()
}

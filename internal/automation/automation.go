package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/beadsim/internal/config"
	"github.com/san-kum/beadsim/internal/experiment"
	"github.com/san-kum/beadsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted batch of runs.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun overrides a preset. Repeat > 1 sweeps the seed upward from Seed.
type ScenarioRun struct {
	Name     string  `yaml:"name"`
	Preset   string  `yaml:"preset"`
	Groups   int     `yaml:"groups"`
	EndsOnly *bool   `yaml:"ends_only"`
	Duration float64 `yaml:"duration"`
	Seed     int64   `yaml:"seed"`
	Backend  string  `yaml:"backend"`
	Repeat   int     `yaml:"repeat"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %q has no runs", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the run against its preset.
func (r ScenarioRun) Config() (*config.Config, error) {
	preset := r.Preset
	if preset == "" {
		preset = "default"
	}
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	if r.Groups != 0 {
		cfg.Groups = r.Groups
	}
	if r.EndsOnly != nil {
		cfg.EndsOnly = *r.EndsOnly
	}
	if r.Duration != 0 {
		cfg.Duration = r.Duration
	}
	if r.Backend != "" {
		cfg.Backend = r.Backend
	}
	cfg.Seed = r.Seed
	return cfg, cfg.Validate()
}

// RunScenario executes every run in order, stopping at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, logger *slog.Logger) ([]storage.RunMetadata, error) {
	results := make([]storage.RunMetadata, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		cfg, err := run.Config()
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}

		repeat := run.Repeat
		if repeat < 1 {
			repeat = 1
		}
		name := run.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", scenario.Name, i+1)
		}

		for k := 0; k < repeat; k++ {
			c := *cfg
			c.Seed = cfg.Seed + int64(k)

			logger.Info("scenario run", "scenario", scenario.Name, "run", name, "seed", c.Seed, "step", i+1, "of", len(scenario.Runs))

			meta, _, err := experiment.Execute(ctx, st, name, &c, logger)
			if err != nil {
				return results, fmt.Errorf("run %d (%s, seed %d): %w", i+1, name, c.Seed, err)
			}
			results = append(results, *meta)
		}
	}

	return results, nil
}

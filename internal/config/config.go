package config

import (
	"math"
	"os"

	"github.com/san-kum/beadsim/internal/pbd"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGroups     = 8
	DefaultBeads      = 8
	DefaultFPS        = 60
	DefaultDuration   = 10.0
	DefaultSubsteps   = 100
	DefaultIterations = 8
	DefaultWireRadius = 0.8
	DefaultGravityY   = -10.0
	DefaultBackend    = "cpu"
	DefaultOutputDir  = ".beadsim"
)

type Config struct {
	Groups    int     `yaml:"groups"`
	Beads     int     `yaml:"beads"`
	EndsOnly  bool    `yaml:"ends_only"`
	FPS       int     `yaml:"fps"`
	Duration  float64 `yaml:"duration"`
	Seed      int64   `yaml:"seed"`
	OutputDir string  `yaml:"output_dir"`
	Backend   string  `yaml:"backend"`
	Workers   int     `yaml:"workers"`
	// SkipValidate turns off the NaN/Inf check after every frame.
	SkipValidate bool            `yaml:"skip_validate"`
	Wire         pbd.Wire        `yaml:"wire"`
	Radii        pbd.RadiusRange `yaml:"radii"`
	Solver       SolverConfig    `yaml:"solver"`
}

type SolverConfig struct {
	Substeps   int      `yaml:"substeps"`
	Iterations int      `yaml:"iterations"`
	Gravity    pbd.Vec2 `yaml:"gravity"`
}

func DefaultConfig() *Config {
	return &Config{
		Groups:    DefaultGroups,
		Beads:     DefaultBeads,
		FPS:       DefaultFPS,
		Duration:  DefaultDuration,
		OutputDir: DefaultOutputDir,
		Backend:   DefaultBackend,
		Wire:      pbd.Wire{Radius: DefaultWireRadius},
		Radii:     pbd.DefaultRadii,
		Solver: SolverConfig{
			Substeps:   DefaultSubsteps,
			Iterations: DefaultIterations,
			Gravity:    pbd.Vec2{Y: DefaultGravityY},
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the file onto cfg. Keys absent from the file keep their
// current values.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects a configuration before any simulation work starts.
func (c *Config) Validate() error {
	switch {
	case c.Groups <= 0 || c.Groups > pbd.MaxGroups:
		return &pbd.ConfigError{Field: "groups", Value: c.Groups, Reason: "must be in [1, 65536]"}
	case c.Beads <= 0:
		return &pbd.ConfigError{Field: "beads", Value: c.Beads, Reason: "must be positive"}
	case c.FPS <= 0:
		return &pbd.ConfigError{Field: "fps", Value: c.FPS, Reason: "must be positive"}
	case c.Duration <= 0:
		return &pbd.ConfigError{Field: "duration", Value: c.Duration, Reason: "must be positive"}
	case c.Solver.Substeps <= 0:
		return &pbd.ConfigError{Field: "solver.substeps", Value: c.Solver.Substeps, Reason: "must be positive"}
	case c.Wire.Radius <= 0:
		return &pbd.ConfigError{Field: "wire.radius", Value: c.Wire.Radius, Reason: "must be positive"}
	case c.Radii.Min <= 0 || c.Radii.Max < c.Radii.Min:
		return &pbd.ConfigError{Field: "radii", Value: c.Radii, Reason: "need 0 < min <= max"}
	case c.Workers < 0:
		return &pbd.ConfigError{Field: "workers", Value: c.Workers, Reason: "must not be negative"}
	}
	return nil
}

// Frames is the number of dispatches in a run.
func (c *Config) Frames() int {
	return int(math.Round(float64(c.FPS) * c.Duration))
}

func (c *Config) NewSolver() pbd.Solver {
	return pbd.Solver{
		Gravity:    c.Solver.Gravity,
		Dt:         1 / float32(c.FPS),
		Substeps:   c.Solver.Substeps,
		Iterations: c.Solver.Iterations,
	}
}

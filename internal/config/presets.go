package config

import (
	"sort"

	"github.com/san-kum/beadsim/internal/pbd"
)

// Presets override the defaults; zero fields keep the default value.
var Presets = map[string]func(*Config){
	"default": func(c *Config) {},
	"sample": func(c *Config) {
		c.Groups = 4096
		c.EndsOnly = true
	},
	"quick": func(c *Config) {
		c.Groups = 1
		c.Duration = 1.0
	},
	"crowded": func(c *Config) {
		c.Beads = 12
		c.Radii = pbd.RadiusRange{Min: 0.08, Max: 0.12}
	},
	"lunar": func(c *Config) {
		c.Solver.Gravity = pbd.Vec2{Y: -1.62}
		c.Duration = 30.0
	},
	"coarse": func(c *Config) {
		c.Solver.Substeps = 10
		c.Solver.Iterations = 1
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

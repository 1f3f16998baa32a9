package config

import "sort"

var Presets = map[string]*Config{
	"small": {
		TimeStep: 1.0, Rows: 5, Cols: 5, RowSpacing: 1.0, ColSpacing: 1.0, Seed: 1,
		Run: RunConfig{Steps: 20, SnapshotEvery: 1},
	},
	"default": {
		TimeStep: 1.0, Rows: 20, Cols: 10, RowSpacing: 1.0, ColSpacing: 1.0, Seed: 1,
		Run: RunConfig{Steps: 10, SnapshotEvery: 1},
	},
	"wide": {
		TimeStep: 1.0, Rows: 24, Cols: 64, RowSpacing: 1.0, ColSpacing: 1.0, Seed: 1,
		Run: RunConfig{Steps: 200, SnapshotEvery: 10},
	},
	"fine": {
		TimeStep: 0.25, Rows: 40, Cols: 21, RowSpacing: 0.5, ColSpacing: 0.5, Seed: 1,
		Run: RunConfig{Steps: 400, SnapshotEvery: 20},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

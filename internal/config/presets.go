package config

import "sort"

var Presets = map[string]*Config{
	"reference": {
		InitState: InitStateConfig{Prey: 40, Predator: 9},
	},
	"equilibrium": {
		InitState: InitStateConfig{Prey: 10, Predator: 5},
	},
	"small": {
		InitState: InitStateConfig{Prey: 5, Predator: 2},
	},
	"predator_heavy": {
		InitState: InitStateConfig{Prey: 20, Predator: 20},
	},
	"long": {
		Steps:     1000,
		InitState: InitStateConfig{Prey: 40, Predator: 9},
	},
}

// GetPreset returns a full config for the named preset, with unset fields
// taken from the defaults, or nil if the preset does not exist.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.InitState = p.InitState
	if p.Dt != 0 {
		cfg.Dt = p.Dt
	}
	if p.Steps != 0 {
		cfg.Steps = p.Steps
	}
	return cfg
}

func ListPresets() []string {
	return sortedNames(Presets)
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

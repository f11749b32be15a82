package config

import (
	"fmt"

	"github.com/san-kum/lotkasim/internal/dynamo"
)

// Overrides are optional changes on top of a base config, as sent to the
// API or listed in a scenario file. Nil fields keep the base value.
type Overrides struct {
	Preset    string             `json:"preset,omitempty" yaml:"preset,omitempty"`
	Model     string             `json:"model,omitempty" yaml:"model,omitempty"`
	Params    map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
	T0        *float64           `json:"t0,omitempty" yaml:"t0,omitempty"`
	Dt        *float64           `json:"dt,omitempty" yaml:"dt,omitempty"`
	Steps     *int               `json:"steps,omitempty" yaml:"steps,omitempty"`
	InitState []float64          `json:"init_state,omitempty" yaml:"init_state,omitempty"`
}

// Resolve starts from the named preset, or base when no preset is set,
// applies the overrides and validates the result. base is not modified.
func (o *Overrides) Resolve(base *Config) (*Config, error) {
	cfg := base.Clone()
	if o.Preset != "" {
		cfg = GetPreset(o.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", dynamo.ErrInvalidArgument, o.Preset)
		}
	}

	if o.Model != "" {
		cfg.Model = o.Model
	}
	for _, name := range sortedNames(o.Params) {
		if err := cfg.SetParam(name, o.Params[name]); err != nil {
			return nil, err
		}
	}
	if o.T0 != nil {
		cfg.T0 = *o.T0
	}
	if o.Dt != nil {
		cfg.Dt = *o.Dt
	}
	if o.Steps != nil {
		cfg.Steps = *o.Steps
	}
	if o.InitState != nil {
		if len(o.InitState) != 2 {
			return nil, fmt.Errorf("%w: init_state needs 2 values, got %d", dynamo.ErrDimensionMismatch, len(o.InitState))
		}
		cfg.InitState.Prey = o.InitState[0]
		cfg.InitState.Predator = o.InitState[1]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/lotkasim/internal/dynamo"
	"github.com/san-kum/lotkasim/internal/physics"
	"github.com/san-kum/lotkasim/internal/sim"
)

const (
	DefaultModel    = physics.LotkaVolterraName
	DefaultT0       = 0.0
	DefaultDt       = 0.1
	DefaultSteps    = 100
	DefaultPrey     = 40.0
	DefaultPredator = 9.0
	DefaultLogLevel = "info"
)

type Config struct {
	Model     string          `yaml:"model"`
	Params    ParamsConfig    `yaml:"params"`
	T0        float64         `yaml:"t0"`
	Dt        float64         `yaml:"dt"`
	Steps     int             `yaml:"steps"`
	InitState InitStateConfig `yaml:"init_state"`
	LogLevel  string          `yaml:"log_level"`
}

type ParamsConfig struct {
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
	Delta float64 `yaml:"delta"`
	Gamma float64 `yaml:"gamma"`
}

type InitStateConfig struct {
	Prey     float64 `yaml:"prey"`
	Predator float64 `yaml:"predator"`
}

func DefaultConfig() *Config {
	return &Config{
		Model: DefaultModel,
		Params: ParamsConfig{
			Alpha: physics.DefaultAlpha,
			Beta:  physics.DefaultBeta,
			Delta: physics.DefaultDelta,
			Gamma: physics.DefaultGamma,
		},
		T0:    DefaultT0,
		Dt:    DefaultDt,
		Steps: DefaultSteps,
		InitState: InitStateConfig{
			Prey:     DefaultPrey,
			Predator: DefaultPredator,
		},
		LogLevel: DefaultLogLevel,
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file over a copy of base, typically a preset.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Model != DefaultModel {
		return fmt.Errorf("%w: unknown model %q", dynamo.ErrInvalidArgument, c.Model)
	}
	if c.Dt == 0 || math.IsNaN(c.Dt) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be finite and nonzero, got %g", dynamo.ErrInvalidArgument, c.Dt)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", dynamo.ErrInvalidArgument, c.Steps)
	}
	if math.IsNaN(c.T0) || math.IsInf(c.T0, 0) {
		return fmt.Errorf("%w: t0 must be finite, got %g", dynamo.ErrInvalidArgument, c.T0)
	}
	if !c.GetInitState().IsValid() {
		return fmt.Errorf("%w: init_state must be finite, got %v", dynamo.ErrInvalidArgument, c.GetInitState())
	}
	_, err := c.System()
	return err
}

// System builds the model described by the config.
func (c *Config) System() (*physics.LotkaVolterra, error) {
	return physics.NewLotkaVolterraWith(c.Params.Alpha, c.Params.Beta, c.Params.Delta, c.Params.Gamma)
}

func (c *Config) GetInitState() dynamo.State {
	return dynamo.State{c.InitState.Prey, c.InitState.Predator}
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{T0: c.T0, Dt: c.Dt, Steps: c.Steps}
}

func (c *Config) GetParams() map[string]float64 {
	return map[string]float64{
		"alpha": c.Params.Alpha,
		"beta":  c.Params.Beta,
		"delta": c.Params.Delta,
		"gamma": c.Params.Gamma,
	}
}

// SetParam updates a model coefficient by name.
func (c *Config) SetParam(name string, v float64) error {
	switch name {
	case "alpha":
		c.Params.Alpha = v
	case "beta":
		c.Params.Beta = v
	case "delta":
		c.Params.Delta = v
	case "gamma":
		c.Params.Gamma = v
	default:
		return fmt.Errorf("%w: %q", dynamo.ErrUnknownParam, name)
	}
	return nil
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

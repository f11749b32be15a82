// Package automation runs scripted sequences of solves described in YAML.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/lotkasim/internal/config"
	"github.com/san-kum/lotkasim/internal/experiment"
	"github.com/san-kum/lotkasim/internal/sim"
	"github.com/san-kum/lotkasim/internal/storage"
)

// Scenario is a named list of runs. Every step starts from Base, which
// itself starts from the defaults.
type Scenario struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Base        config.Overrides `yaml:"base"`
	Steps       []ScenarioStep   `yaml:"steps"`
}

type ScenarioStep struct {
	Name             string `yaml:"name"`
	config.Overrides `yaml:",inline"`
	Save             bool   `yaml:"save"`
}

type StepResult struct {
	Name   string
	RunID  string
	Config *config.Config
	Result *sim.Result
}

// LoadScenario reads a scenario file and checks that every step resolves
// to a valid config before anything runs.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: scenario has no steps", path)
	}
	if _, err := scenario.Configs(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &scenario, nil
}

// Configs resolves the config of every step.
func (s *Scenario) Configs() ([]*config.Config, error) {
	base, err := s.Base.Resolve(config.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}

	cfgs := make([]*config.Config, len(s.Steps))
	for i, step := range s.Steps {
		cfg, err := step.Resolve(base)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}
		cfgs[i] = cfg
	}
	return cfgs, nil
}

// RunScenario executes the steps in order. Steps marked save are written to
// store, which may be nil to disable saving altogether. Results of the steps
// completed before an error are returned with it.
func RunScenario(ctx context.Context, scenario *Scenario, reg *experiment.Registry, store *storage.Store, log *slog.Logger) ([]StepResult, error) {
	cfgs, err := scenario.Configs()
	if err != nil {
		return nil, err
	}

	results := make([]StepResult, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		log.Info("running step", "scenario", scenario.Name, "step", name, "n", i+1, "of", len(scenario.Steps))

		exp, err := experiment.New(reg, cfgs[i])
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Config: cfgs[i], Result: result}
		if step.Save && store != nil {
			sr.RunID, err = store.Save(exp.Metadata(cfgs[i].GetInitState(), result), result.Trajectory)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

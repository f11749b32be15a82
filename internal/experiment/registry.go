package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/lotkasim/internal/analysis"
	"github.com/san-kum/lotkasim/internal/dynamo"
	"github.com/san-kum/lotkasim/internal/metrics"
	"github.com/san-kum/lotkasim/internal/physics"
)

// ModelFactory builds a fresh system with the given coefficients applied.
type ModelFactory func(params map[string]float64) (analysis.Tunable, error)

type Registry struct {
	models map[string]ModelFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]ModelFactory),
	}

	r.models[physics.LotkaVolterraName] = func(params map[string]float64) (analysis.Tunable, error) {
		lv := physics.NewLotkaVolterra()
		for _, name := range sortedKeys(params) {
			if err := lv.SetParam(name, params[name]); err != nil {
				return nil, err
			}
		}
		return lv, nil
	}

	return r
}

func (r *Registry) GetModel(name string, params map[string]float64) (analysis.Tunable, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown model %q", dynamo.ErrInvalidArgument, name)
	}
	return fn(params)
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) DefaultMetrics(sys dynamo.System) []dynamo.Metric {
	return metrics.Defaults(sys)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/lotkasim/internal/dynamo"
)

// LotkaVolterraName identifies the model in configs and stored runs.
const LotkaVolterraName = "lotka_volterra"

const (
	DefaultAlpha = 0.1  // prey growth rate
	DefaultBeta  = 0.02 // predation rate
	DefaultDelta = 0.01 // predator growth per prey eaten
	DefaultGamma = 0.1  // predator death rate
)

// LotkaVolterra is the classic predator-prey model with state [prey, predator].
type LotkaVolterra struct{ alpha, beta, delta, gamma float64 }

func NewLotkaVolterra() *LotkaVolterra {
	return &LotkaVolterra{DefaultAlpha, DefaultBeta, DefaultDelta, DefaultGamma}
}

func NewLotkaVolterraWith(alpha, beta, delta, gamma float64) (*LotkaVolterra, error) {
	lv := &LotkaVolterra{}
	for name, v := range map[string]float64{"alpha": alpha, "beta": beta, "delta": delta, "gamma": gamma} {
		if err := lv.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	return lv, nil
}

func (l *LotkaVolterra) StateDim() int { return 2 }

// Derive calculates the population derivatives.
func (l *LotkaVolterra) Derive(_ float64, s dynamo.State) dynamo.State {
	return lotkaVolterra(l.alpha, l.beta, l.delta, l.gamma, s)
}

// Field returns the vector field with the current coefficients captured, so
// later SetParam calls do not affect a solve already in progress.
func (l *LotkaVolterra) Field() dynamo.Field {
	a, b, d, g := l.alpha, l.beta, l.delta, l.gamma
	return func(_ float64, s dynamo.State) dynamo.State {
		return lotkaVolterra(a, b, d, g, s)
	}
}

func lotkaVolterra(a, b, d, g float64, s dynamo.State) dynamo.State {
	prey, predator := s[0], s[1]
	return dynamo.State{
		a*prey - b*prey*predator,
		d*prey*predator - g*predator,
	}
}

func (l *LotkaVolterra) DefaultState() dynamo.State { return dynamo.State{40.0, 9.0} }

// Equilibrium is the non-trivial fixed point (gamma/delta, alpha/beta).
func (l *LotkaVolterra) Equilibrium() dynamo.State {
	return dynamo.State{l.gamma / l.delta, l.alpha / l.beta}
}

// Invariant is the first integral delta*x - gamma*ln(x) + beta*y - alpha*ln(y).
// It is NaN outside the open positive quadrant.
func (l *LotkaVolterra) Invariant(s dynamo.State) float64 {
	prey, predator := s[0], s[1]
	if prey <= 0 || predator <= 0 {
		return math.NaN()
	}
	return l.delta*prey - l.gamma*math.Log(prey) + l.beta*predator - l.alpha*math.Log(predator)
}

func (l *LotkaVolterra) StateLabels() []string { return []string{"prey", "predator"} }

func (l *LotkaVolterra) GetParams() map[string]float64 {
	return map[string]float64{"alpha": l.alpha, "beta": l.beta, "delta": l.delta, "gamma": l.gamma}
}

func (l *LotkaVolterra) SetParam(n string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be positive and finite, got %g", dynamo.ErrInvalidArgument, n, v)
	}
	switch n {
	case "alpha":
		l.alpha = v
	case "beta":
		l.beta = v
	case "delta":
		l.delta = v
	case "gamma":
		l.gamma = v
	default:
		return fmt.Errorf("%w: %q", dynamo.ErrUnknownParam, n)
	}
	return nil
}

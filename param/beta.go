package param

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/provar/element"
)

// betaDimension is the fixed sufficient-statistics dimension of the
// two-outcome conjugate family: one slot for true, one for false.
const betaDimension = 2

// Beta is a learnable two-outcome conjugate parameter. The prior (a, b) is
// immutable; the learned pair starts equal to the prior and is replaced by
// Maximize as learned = prior + accumulated counts.
//
// As an element, Beta samples its randomness from the current learned
// distribution; as a parameter, it drives CompoundFlip elements through
// ExpectedValue.
type Beta struct {
	element.Base

	priorA, priorB     float64
	learnedA, learnedB float64
}

// NewBeta creates a Beta parameter with prior hyperparameters a, b > 0.
func NewBeta(u *element.Universe, name string, a, b float64) (*Beta, error) {
	if a <= 0 || b <= 0 {
		return nil, fmt.Errorf("%w: (%g, %g)", ErrBadHyperparameters, a, b)
	}
	p := &Beta{priorA: a, priorB: b, learnedA: a, learnedB: b}
	if err := element.Init(u, name, "beta", p); err != nil {
		return nil, err
	}

	return p, nil
}

// Hyperparameters returns the current learned pair (a', b').
func (p *Beta) Hyperparameters() (float64, float64) { return p.learnedA, p.learnedB }

func (p *Beta) dist() distuv.Beta {
	return distuv.Beta{Alpha: p.learnedA, Beta: p.learnedB, Src: p.Universe().RandSource()}
}

// GenerateRandomness samples a success probability from the current
// learned distribution.
func (p *Beta) GenerateRandomness() element.Randomness { return p.dist().Rand() }

// GenerateValue passes the float64 randomness through unchanged.
func (p *Beta) GenerateValue(r element.Randomness) element.Value { return r.(float64) }

// Density returns the Beta density under the learned hyperparameters, 0
// for non-float values.
func (p *Beta) Density(v element.Value) float64 {
	x, ok := v.(float64)
	if !ok {
		return 0.0
	}

	return p.dist().Prob(x)
}

// ZeroSufficientStatistics returns the zero vector of dimension 2.
func (p *Beta) ZeroSufficientStatistics() []float64 { return make([]float64, betaDimension) }

// SufficientStatistics returns the one-hot vector for a boolean outcome:
// slot 0 counts true, slot 1 counts false.
func (p *Beta) SufficientStatistics(v element.Value) ([]float64, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("%w: %v (want bool)", ErrUnknownOutcome, v)
	}
	stats := make([]float64, betaDimension)
	if b {
		stats[0] = 1.0
	} else {
		stats[1] = 1.0
	}

	return stats, nil
}

// DistributionToStatistics folds a posterior boolean distribution into the
// statistics vector: each outcome's probability sums into its slot, and
// outcomes absent from dist contribute zero.
func (p *Beta) DistributionToStatistics(dist []element.Weighted) []float64 {
	stats := make([]float64, betaDimension)
	for _, w := range dist {
		b, ok := w.Value.(bool)
		if !ok {
			continue
		}
		if b {
			stats[0] += w.Prob
		} else {
			stats[1] += w.Prob
		}
	}

	return stats
}

// ExpectedValue returns a'/(a'+b') under the learned hyperparameters.
func (p *Beta) ExpectedValue() element.Value {
	return p.learnedA / (p.learnedA + p.learnedB)
}

// MAPValue returns the posterior mode (a'-1)/(a'+b'-2) when it exists and
// falls back to the expectation for flat or degenerate hyperparameters.
func (p *Beta) MAPValue() element.Value {
	denom := p.learnedA + p.learnedB - 2
	if p.learnedA <= 1 || p.learnedB <= 1 || denom <= 0 {
		return p.ExpectedValue()
	}

	return (p.learnedA - 1) / denom
}

// Maximize replaces the learned pair with prior + accumulated counts.
// A stats vector of the wrong length is a fatal precondition failure.
func (p *Beta) Maximize(stats []float64) error {
	if len(stats) != betaDimension {
		return fmt.Errorf("%w: got %d, want %d", ErrStatsDimension, len(stats), betaDimension)
	}
	p.learnedA = p.priorA + stats[0]
	p.learnedB = p.priorB + stats[1]

	return nil
}

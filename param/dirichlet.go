package param

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/katalvlaran/provar/element"
)

// Dirichlet is a learnable k-outcome conjugate parameter. Each outcome owns
// one slot of the sufficient-statistics vector, in construction order: a
// posterior outcome distribution folds into statistics by summing each
// outcome's probability into its slot, the k-ary generalization of the
// two-outcome case.
//
// The prior vector is immutable; Maximize replaces the learned vector with
// prior + accumulated counts.
type Dirichlet struct {
	element.Base

	prior    []float64
	learned  []float64
	outcomes []element.Value
	index    map[element.Value]int
}

// NewDirichlet creates a Dirichlet parameter over the given distinct
// outcomes with prior concentrations alphas (all > 0, one per outcome).
func NewDirichlet(u *element.Universe, name string, alphas []float64, outcomes []element.Value) (*Dirichlet, error) {
	// 1) Validate shape.
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("%w: no outcomes", ErrBadHyperparameters)
	}
	if len(alphas) != len(outcomes) {
		return nil, fmt.Errorf("%w: %d alphas for %d outcomes", ErrStatsDimension, len(alphas), len(outcomes))
	}

	// 2) Validate concentrations and outcome distinctness.
	index := make(map[element.Value]int, len(outcomes))
	for i, a := range alphas {
		if a <= 0 || math.IsNaN(a) {
			return nil, fmt.Errorf("%w: alpha[%d]=%g", ErrBadHyperparameters, i, a)
		}
		if _, dup := index[outcomes[i]]; dup {
			return nil, fmt.Errorf("%w: duplicate outcome %v", ErrBadHyperparameters, outcomes[i])
		}
		index[outcomes[i]] = i
	}

	d := &Dirichlet{
		prior:    append([]float64(nil), alphas...),
		learned:  append([]float64(nil), alphas...),
		outcomes: append([]element.Value(nil), outcomes...),
		index:    index,
	}
	if err := element.Init(u, name, "dirichlet", d); err != nil {
		return nil, err
	}

	return d, nil
}

// Outcomes returns the outcome list in statistics-slot order.
func (d *Dirichlet) Outcomes() []element.Value {
	return append([]element.Value(nil), d.outcomes...)
}

// Hyperparameters returns a copy of the current learned concentrations.
func (d *Dirichlet) Hyperparameters() []float64 {
	return append([]float64(nil), d.learned...)
}

func (d *Dirichlet) dist() *distmv.Dirichlet {
	return distmv.NewDirichlet(d.learned, d.Universe().RandSource())
}

// GenerateRandomness samples a probability vector from the current learned
// distribution.
func (d *Dirichlet) GenerateRandomness() element.Randomness {
	return d.dist().Rand(nil)
}

// GenerateValue passes the []float64 randomness through unchanged.
func (d *Dirichlet) GenerateValue(r element.Randomness) element.Value { return r.([]float64) }

// Density returns the Dirichlet density of a probability vector under the
// learned concentrations, 0 for anything of the wrong shape.
func (d *Dirichlet) Density(v element.Value) float64 {
	x, ok := v.([]float64)
	if !ok || len(x) != len(d.learned) {
		return 0.0
	}

	return math.Exp(d.dist().LogProb(x))
}

// ZeroSufficientStatistics returns the zero vector of dimension k.
func (d *Dirichlet) ZeroSufficientStatistics() []float64 {
	return make([]float64, len(d.outcomes))
}

// SufficientStatistics returns the one-hot vector for a single outcome.
func (d *Dirichlet) SufficientStatistics(v element.Value) ([]float64, error) {
	i, ok := d.index[v]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownOutcome, v)
	}
	stats := make([]float64, len(d.outcomes))
	stats[i] = 1.0

	return stats, nil
}

// DistributionToStatistics folds a posterior outcome distribution into the
// statistics vector; outcomes without a slot contribute zero.
func (d *Dirichlet) DistributionToStatistics(dist []element.Weighted) []float64 {
	stats := make([]float64, len(d.outcomes))
	for _, w := range dist {
		if i, ok := d.index[w.Value]; ok {
			stats[i] += w.Prob
		}
	}

	return stats
}

// ExpectedValue returns the normalized learned concentrations, one
// probability per outcome in slot order.
func (d *Dirichlet) ExpectedValue() element.Value {
	total := floats.Sum(d.learned)
	out := make([]float64, len(d.learned))
	for i, a := range d.learned {
		out[i] = a / total
	}

	return out
}

// MAPValue returns the posterior mode (alpha_i - 1)/(sum - k) when every
// concentration exceeds 1, falling back to the expectation otherwise.
func (d *Dirichlet) MAPValue() element.Value {
	k := float64(len(d.learned))
	denom := floats.Sum(d.learned) - k
	if denom <= 0 {
		return d.ExpectedValue()
	}
	for _, a := range d.learned {
		if a <= 1 {
			return d.ExpectedValue()
		}
	}
	out := make([]float64, len(d.learned))
	for i, a := range d.learned {
		out[i] = (a - 1) / denom
	}

	return out
}

// Maximize replaces the learned vector with prior + accumulated counts.
// A stats vector of the wrong length is a fatal precondition failure.
func (d *Dirichlet) Maximize(stats []float64) error {
	if len(stats) != len(d.prior) {
		return fmt.Errorf("%w: got %d, want %d", ErrStatsDimension, len(stats), len(d.prior))
	}
	next := make([]float64, len(d.prior))
	floats.AddTo(next, d.prior, stats)
	d.learned = next

	return nil
}

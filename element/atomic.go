package element

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Constant is a deterministic element that always produces a single value.
type Constant struct {
	Base
	v Value
}

// NewConstant creates a Constant producing v.
func NewConstant(u *Universe, name string, v Value) (*Constant, error) {
	c := &Constant{v: v}
	if err := Init(u, name, "constant", c); err != nil {
		return nil, err
	}

	return c, nil
}

// GenerateRandomness returns Unit; a Constant consumes no entropy.
func (c *Constant) GenerateRandomness() Randomness { return Unit{} }

// GenerateValue returns the constant value regardless of randomness.
func (c *Constant) GenerateValue(_ Randomness) Value { return c.v }

// Density is 1 for the constant value, 0 elsewhere.
func (c *Constant) Density(v Value) float64 {
	if v == c.v {
		return 1.0
	}

	return 0.0
}

// MakeValues enumerates the single-value support.
func (c *Constant) MakeValues() ([]Value, error) { return []Value{c.v}, nil }

// Flip is a Bernoulli element over bool with success probability p.
// Its randomness is the boolean outcome itself.
type Flip struct {
	Base
	p float64
}

// NewFlip creates a Flip with success probability p in [0,1].
func NewFlip(u *Universe, name string, p float64) (*Flip, error) {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return nil, fmt.Errorf("%w: p=%g", ErrBadProbability, p)
	}
	f := &Flip{p: p}
	if err := Init(u, name, "flip", f); err != nil {
		return nil, err
	}

	return f, nil
}

// Prob returns the success probability.
func (f *Flip) Prob() float64 { return f.p }

// GenerateRandomness draws the boolean outcome from the shared source.
func (f *Flip) GenerateRandomness() Randomness {
	return f.Universe().Rand().Float64() < f.p
}

// GenerateValue passes the boolean randomness through unchanged.
func (f *Flip) GenerateValue(r Randomness) Value { return r.(bool) }

// Density returns p for true, 1-p for false, 0 for anything else.
func (f *Flip) Density(v Value) float64 {
	b, ok := v.(bool)
	if !ok {
		return 0.0
	}
	if b {
		return f.p
	}

	return 1.0 - f.p
}

// MakeValues enumerates {true, false}.
func (f *Flip) MakeValues() ([]Value, error) { return []Value{true, false}, nil }

// Select is a discrete element over an explicit list of distinct outcomes
// with given weights. Weights need not be normalized; they are normalized
// once at construction. Its randomness is the chosen outcome index.
type Select struct {
	Base
	values []Value
	probs  []float64
}

// NewSelect creates a Select over values with the given weights. Weights
// must be non-negative with a positive sum and match values in length;
// values must be distinct.
func NewSelect(u *Universe, name string, values []Value, weights []float64) (*Select, error) {
	// 1) Validate shape.
	if len(values) == 0 {
		return nil, ErrNoValues
	}
	if len(weights) != len(values) {
		return nil, fmt.Errorf("%w: %d weights for %d values", ErrBadWeights, len(weights), len(values))
	}

	// 2) Validate weights and distinctness.
	seen := make(map[Value]struct{}, len(values))
	for i, v := range values {
		if _, dup := seen[v]; dup {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateValue, v)
		}
		seen[v] = struct{}{}
		if weights[i] < 0 || math.IsNaN(weights[i]) {
			return nil, fmt.Errorf("%w: weight[%d]=%g", ErrBadWeights, i, weights[i])
		}
	}
	total := floats.Sum(weights)
	if total <= 0 {
		return nil, fmt.Errorf("%w: weights sum to %g", ErrBadWeights, total)
	}

	// 3) Store normalized probabilities; the input slices are copied.
	s := &Select{
		values: append([]Value(nil), values...),
		probs:  make([]float64, len(weights)),
	}
	for i, w := range weights {
		s.probs[i] = w / total
	}
	if err := Init(u, name, "select", s); err != nil {
		return nil, err
	}

	return s, nil
}

// GenerateRandomness draws an outcome index by inverse CDF.
func (s *Select) GenerateRandomness() Randomness {
	target := s.Universe().Rand().Float64()
	cum := 0.0
	for i, p := range s.probs {
		cum += p
		if target < cum {
			return i
		}
	}

	return len(s.probs) - 1 // guard against rounding at the top of the CDF
}

// GenerateValue maps the index randomness to its outcome.
func (s *Select) GenerateValue(r Randomness) Value { return s.values[r.(int)] }

// Density returns the normalized probability of v, 0 for unknown outcomes.
func (s *Select) Density(v Value) float64 {
	for i, val := range s.values {
		if val == v {
			return s.probs[i]
		}
	}

	return 0.0
}

// MakeValues enumerates the outcomes in construction order.
func (s *Select) MakeValues() ([]Value, error) {
	return append([]Value(nil), s.values...), nil
}

// Uniform is a continuous element over [min, max). It has no finite support
// and therefore no Enumerable capability.
type Uniform struct {
	Base
	dist distuv.Uniform
}

// NewUniform creates a continuous uniform element over [min, max).
func NewUniform(u *Universe, name string, min, max float64) (*Uniform, error) {
	if u == nil {
		return nil, ErrNilUniverse
	}
	if !(min < max) {
		return nil, fmt.Errorf("%w: interval [%g, %g)", ErrBadParameter, min, max)
	}
	un := &Uniform{dist: distuv.Uniform{Min: min, Max: max, Src: u.RandSource()}}
	if err := Init(u, name, "uniform", un); err != nil {
		return nil, err
	}

	return un, nil
}

// GenerateRandomness draws a float64 from the interval.
func (un *Uniform) GenerateRandomness() Randomness { return un.dist.Rand() }

// GenerateValue passes the float64 randomness through unchanged.
func (un *Uniform) GenerateValue(r Randomness) Value { return r.(float64) }

// Density returns the uniform density, 0 outside the interval or for
// non-float values.
func (un *Uniform) Density(v Value) float64 {
	x, ok := v.(float64)
	if !ok {
		return 0.0
	}

	return un.dist.Prob(x)
}

// Normal is a continuous Gaussian element.
type Normal struct {
	Base
	dist distuv.Normal
}

// NewNormal creates a Gaussian element with mean mu and stddev sigma > 0.
func NewNormal(u *Universe, name string, mu, sigma float64) (*Normal, error) {
	if u == nil {
		return nil, ErrNilUniverse
	}
	if sigma <= 0 || math.IsNaN(sigma) {
		return nil, fmt.Errorf("%w: sigma=%g", ErrBadParameter, sigma)
	}
	n := &Normal{dist: distuv.Normal{Mu: mu, Sigma: sigma, Src: u.RandSource()}}
	if err := Init(u, name, "normal", n); err != nil {
		return nil, err
	}

	return n, nil
}

// GenerateRandomness draws a float64 sample.
func (n *Normal) GenerateRandomness() Randomness { return n.dist.Rand() }

// GenerateValue passes the float64 randomness through unchanged.
func (n *Normal) GenerateValue(r Randomness) Value { return r.(float64) }

// Density returns the Gaussian density, 0 for non-float values.
func (n *Normal) Density(v Value) float64 {
	x, ok := v.(float64)
	if !ok {
		return 0.0
	}

	return n.dist.Prob(x)
}

// exponentialWalkWidth is the half-width of the multiplicative random walk
// used by Exponential's proposal kernel.
const exponentialWalkWidth = 0.5

// Exponential is a continuous element over (0, ∞) with the given rate.
//
// It overrides the Metropolis-Hastings proposal protocol with a
// multiplicative random walk, the canonical asymmetric kernel for a
// positive-only variable: a symmetric step in log space is an asymmetric
// step in value space, and the Jacobian shows up in TransitionRatio.
type Exponential struct {
	Base
	dist distuv.Exponential
}

// NewExponential creates an exponential element with rate > 0.
func NewExponential(u *Universe, name string, rate float64) (*Exponential, error) {
	if u == nil {
		return nil, ErrNilUniverse
	}
	if rate <= 0 || math.IsNaN(rate) {
		return nil, fmt.Errorf("%w: rate=%g", ErrBadParameter, rate)
	}
	e := &Exponential{dist: distuv.Exponential{Rate: rate, Src: u.RandSource()}}
	if err := Init(u, name, "exponential", e); err != nil {
		return nil, err
	}

	return e, nil
}

// GenerateRandomness draws a float64 sample.
func (e *Exponential) GenerateRandomness() Randomness { return e.dist.Rand() }

// GenerateValue passes the float64 randomness through unchanged.
func (e *Exponential) GenerateValue(r Randomness) Value { return r.(float64) }

// Density returns the exponential density, 0 for non-positive or non-float
// values.
func (e *Exponential) Density(v Value) float64 {
	x, ok := v.(float64)
	if !ok {
		return 0.0
	}

	return e.dist.Prob(x)
}

// NextRandomness proposes r1 = r0·exp(u) with u uniform on the symmetric
// log-space window. The forward proposal density is 1/(2w·r1), the reverse
// 1/(2w·r0), so TransitionRatio = r1/r0 — exactly reciprocal under the
// reverse move. ModelRatio is the exponential density ratio.
func (e *Exponential) NextRandomness(r Randomness) Proposal {
	r0, ok := r.(float64)
	if !ok || r0 <= 0 {
		// Nothing to walk from yet: fall back to a fresh symmetric draw.
		return Proposal{Randomness: e.GenerateRandomness(), TransitionRatio: 1.0, ModelRatio: 1.0}
	}

	step := (e.Universe().Rand().Float64()*2 - 1) * exponentialWalkWidth
	r1 := r0 * math.Exp(step)

	return Proposal{
		Randomness:      r1,
		TransitionRatio: r1 / r0,
		ModelRatio:      e.dist.Prob(r1) / e.dist.Prob(r0),
	}
}

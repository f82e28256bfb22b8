package param

import (
	"github.com/katalvlaran/provar/element"
)

// CompoundFlip is a Bernoulli element whose success probability is the
// current expected value of a shared Beta parameter, read at generation
// time. It never caches the probability, so a Maximize on the parameter
// takes effect immediately.
type CompoundFlip struct {
	element.Base
	p *Beta
}

// NewCompoundFlip creates a Bernoulli element driven by p.
func NewCompoundFlip(u *element.Universe, name string, p *Beta) (*CompoundFlip, error) {
	if p == nil {
		return nil, ErrNilParameter
	}
	f := &CompoundFlip{p: p}
	if err := element.Init(u, name, "compound-flip", f); err != nil {
		return nil, err
	}

	return f, nil
}

// Parameter returns the shared Beta parameter.
func (f *CompoundFlip) Parameter() element.Parameter { return f.p }

func (f *CompoundFlip) prob() float64 { return f.p.ExpectedValue().(float64) }

// GenerateRandomness draws the boolean outcome with the parameter's
// current expected probability.
func (f *CompoundFlip) GenerateRandomness() element.Randomness {
	return f.Universe().Rand().Float64() < f.prob()
}

// GenerateValue passes the boolean randomness through unchanged.
func (f *CompoundFlip) GenerateValue(r element.Randomness) element.Value { return r.(bool) }

// Density returns the parameter-driven Bernoulli mass, 0 for non-bool
// values.
func (f *CompoundFlip) Density(v element.Value) float64 {
	b, ok := v.(bool)
	if !ok {
		return 0.0
	}
	if b {
		return f.prob()
	}

	return 1.0 - f.prob()
}

// MakeValues enumerates {true, false}.
func (f *CompoundFlip) MakeValues() ([]element.Value, error) {
	return []element.Value{true, false}, nil
}

// CompoundSelect is a discrete element over a Dirichlet parameter's
// outcomes whose probabilities are the parameter's current expected value,
// read at generation time.
type CompoundSelect struct {
	element.Base
	d *Dirichlet
}

// NewCompoundSelect creates a discrete element driven by d.
func NewCompoundSelect(u *element.Universe, name string, d *Dirichlet) (*CompoundSelect, error) {
	if d == nil {
		return nil, ErrNilParameter
	}
	s := &CompoundSelect{d: d}
	if err := element.Init(u, name, "compound-select", s); err != nil {
		return nil, err
	}

	return s, nil
}

// Parameter returns the shared Dirichlet parameter.
func (s *CompoundSelect) Parameter() element.Parameter { return s.d }

func (s *CompoundSelect) probs() []float64 { return s.d.ExpectedValue().([]float64) }

// GenerateRandomness draws an outcome index by inverse CDF over the
// parameter's current expected probabilities.
func (s *CompoundSelect) GenerateRandomness() element.Randomness {
	probs := s.probs()
	target := s.Universe().Rand().Float64()
	cum := 0.0
	for i, p := range probs {
		cum += p
		if target < cum {
			return i
		}
	}

	return len(probs) - 1
}

// GenerateValue maps the index randomness to its outcome.
func (s *CompoundSelect) GenerateValue(r element.Randomness) element.Value {
	return s.d.outcomes[r.(int)]
}

// Density returns the parameter-driven mass of v, 0 for unknown outcomes.
func (s *CompoundSelect) Density(v element.Value) float64 {
	i, ok := s.d.index[v]
	if !ok {
		return 0.0
	}

	return s.probs()[i]
}

// MakeValues enumerates the parameter's outcomes in slot order.
func (s *CompoundSelect) MakeValues() ([]element.Value, error) {
	return s.d.Outcomes(), nil
}

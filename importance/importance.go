// Package importance implements posterior estimation by forward importance
// sampling with evidence weighting (likelihood weighting).
//
// Each sample walks the query's relevant closure in dependency order:
// unobserved elements are resampled from their generative process, observed
// elements are pinned to their evidence and contribute their density given
// the sampled parents to the sample weight. The query's value is tallied
// under that weight; the tally normalizes into the posterior estimate.
//
// Complexity: O(N·(V + E)) over the closure for N samples.
//
// Errors (sentinel):
//
//	– ErrNilQuery   if the query element is nil.
//	– ErrBadSamples if the sample count is not positive.
//	– ErrAllRejected if every sample carried zero weight.
package importance

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/provar/element"
)

// DefaultSamples is the default number of weighted samples per query.
const DefaultSamples = 5000

// Sentinel errors for the importance sampler.
var (
	// ErrNilQuery indicates a nil query element.
	ErrNilQuery = errors.New("importance: query element is nil")

	// ErrBadSamples indicates a non-positive sample count.
	ErrBadSamples = errors.New("importance: sample count must be positive")

	// ErrAllRejected indicates that every sample had zero weight, i.e. the
	// evidence is unreachable under the generative process.
	ErrAllRejected = errors.New("importance: all samples carried zero weight")
)

// Sampler estimates posteriors by likelihood weighting.
type Sampler struct {
	samples int
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithSamples sets the number of weighted samples per query.
func WithSamples(n int) Option {
	return func(s *Sampler) { s.samples = n }
}

// New creates a Sampler with DefaultSamples unless overridden.
func New(opts ...Option) (*Sampler, error) {
	s := &Sampler{samples: DefaultSamples}
	for _, opt := range opts {
		opt(s)
	}
	if s.samples < 1 {
		return nil, fmt.Errorf("%w: %d", ErrBadSamples, s.samples)
	}

	return s, nil
}

// Posterior estimates the posterior distribution of query given all
// evidence observed in its universe.
func (s *Sampler) Posterior(query element.Element) ([]element.Weighted, error) {
	// 1) Validate and order the relevant closure once; cycles surface here.
	if query == nil {
		return nil, ErrNilQuery
	}
	u := query.Universe()
	roots := append([]element.Element{query}, u.Observed()...)
	order, err := element.TopoSort(roots...)
	if err != nil {
		return nil, err
	}

	// 2) Draw weighted samples. Parents precede dependents in order, so
	//    every density sees current parent values.
	tally := make(map[element.Value]float64)
	for i := 0; i < s.samples; i++ {
		weight := 1.0
		for _, e := range order {
			if obs, ok := u.Observation(e); ok {
				weight *= e.Density(obs)
				element.ForceValue(e, obs)

				continue
			}
			element.Regenerate(e)
		}
		if weight > 0 {
			tally[query.Current()] += weight
		}
	}
	if len(tally) == 0 {
		return nil, fmt.Errorf("%w: query %q", ErrAllRejected, query.Name())
	}

	// 3) Normalize the tally into a distribution.
	return element.TallyDistribution(query, tally)
}

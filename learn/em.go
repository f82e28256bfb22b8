// Package learn implements expectation-maximization parameter learning
// over the sufficient-statistics protocol.
//
// The driver owns a set of Parameter targets and an Estimator — any
// inference engine able to report an element's posterior outcome
// distribution (the eliminate, importance and mh engines all qualify).
// Each iteration runs one expectation step, estimating the posterior of
// every parameterized element driven by a target and folding it into that
// target's accumulated sufficient statistics, then applies every Maximize
// at the step boundary. Parameter values are therefore frozen for the
// whole expectation step: no inference call observes a half-updated
// parameter.
//
// Errors (sentinel):
//
//	– ErrNilEstimator if no inference engine is supplied.
//	– ErrNoTargets    if no Parameter targets are supplied.
//	– ErrNilTarget    if a target is nil.
//	– ErrBadIterations if the iteration budget is not positive.
package learn

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/provar/element"
)

// DefaultIterations is the default expectation-maximization budget.
const DefaultIterations = 10

// Sentinel errors for the EM driver.
var (
	// ErrNilEstimator indicates a missing inference engine.
	ErrNilEstimator = errors.New("learn: estimator is nil")

	// ErrNoTargets indicates an EM driver with no parameters to learn.
	ErrNoTargets = errors.New("learn: no parameter targets")

	// ErrNilTarget indicates a nil parameter target.
	ErrNilTarget = errors.New("learn: parameter target is nil")

	// ErrBadIterations indicates a non-positive iteration budget.
	ErrBadIterations = errors.New("learn: iteration budget must be positive")
)

// Estimator is the inference-engine surface the driver consumes: a
// posterior outcome distribution for one element, given the evidence
// observed in its universe.
type Estimator interface {
	Posterior(query element.Element) ([]element.Weighted, error)
}

// EM is the expectation-maximization driver.
type EM struct {
	est        Estimator
	targets    []element.Parameter
	iterations int
}

// Option configures an EM driver.
type Option func(*EM)

// WithIterations sets the iteration budget (default DefaultIterations).
func WithIterations(n int) Option {
	return func(em *EM) { em.iterations = n }
}

// New creates an EM driver learning the given targets with est.
func New(est Estimator, targets []element.Parameter, opts ...Option) (*EM, error) {
	// 1) Validate the engine and targets.
	if est == nil {
		return nil, ErrNilEstimator
	}
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	for i, t := range targets {
		if t == nil {
			return nil, fmt.Errorf("%w: target %d", ErrNilTarget, i)
		}
	}

	// 2) Apply options.
	em := &EM{
		est:        est,
		targets:    append([]element.Parameter(nil), targets...),
		iterations: DefaultIterations,
	}
	for _, opt := range opts {
		opt(em)
	}
	if em.iterations < 1 {
		return nil, fmt.Errorf("%w: %d", ErrBadIterations, em.iterations)
	}

	return em, nil
}

// Run iterates expectation and maximization for the configured budget.
// On stationary evidence the learned values reach a fixed point and stay
// unchanged across the remaining iterations.
func (em *EM) Run() error {
	for it := 0; it < em.iterations; it++ {
		if err := em.step(); err != nil {
			return fmt.Errorf("learn: iteration %d: %w", it, err)
		}
	}

	return nil
}

// step runs one full expectation step followed by the maximization
// boundary.
func (em *EM) step() error {
	// 1) Expectation: zeroed statistics per target, then accumulate the
	//    posterior of every element the target drives. Parameters are not
	//    touched until every estimate is in.
	acc := make([][]float64, len(em.targets))
	for ti, target := range em.targets {
		acc[ti] = target.ZeroSufficientStatistics()
		for _, e := range driven(target) {
			dist, err := em.est.Posterior(e)
			if err != nil {
				return fmt.Errorf("estimating %q: %w", e.Name(), err)
			}
			floats.Add(acc[ti], target.DistributionToStatistics(dist))
		}
	}

	// 2) Maximization boundary: apply every update atomically with respect
	//    to the expectation step.
	for ti, target := range em.targets {
		if err := target.Maximize(acc[ti]); err != nil {
			return fmt.Errorf("maximizing %q: %w", target.Name(), err)
		}
	}

	return nil
}

// driven returns the parameterized elements of target's universe that hold
// a reference to target, in registration order.
func driven(target element.Parameter) []element.Element {
	var out []element.Element
	for _, e := range target.Universe().Elements() {
		pz, ok := e.(element.Parameterized)
		if !ok {
			continue
		}
		if pz.Parameter() == target {
			out = append(out, e)
		}
	}

	return out
}

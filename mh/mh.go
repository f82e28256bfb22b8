// Package mh implements a Metropolis-Hastings sampler over the proposal
// protocol: per step, one atomic unobserved element proposes a new
// randomness value — through its own Proposer kernel when it implements
// one, through the default symmetric kernel otherwise — and the sampler
// accepts with probability
//
//	min(1, TransitionRatio · ModelRatio · likelihoodRatio)
//
// where likelihoodRatio is the evidence density under the proposed state
// divided by the evidence density under the current state. The two
// protocol ratios arrive separately from the element and are combined only
// here; the element never decides acceptance.
//
// After an accepted proposal the downstream deterministic elements are
// recomputed from their stored randomness; on rejection the previous
// (randomness, value) state is reinstated wholesale.
//
// Errors (sentinel):
//
//	– ErrNilQuery     if the query element is nil.
//	– ErrBadSamples   if the burn-in or sample count is negative/zero.
//	– ErrNoProposable if the closure has no atomic unobserved element.
package mh

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/provar/element"
)

// Default sampling budget: enough for the small discrete models this core
// targets while keeping test runs fast.
const (
	// DefaultBurnIn is the number of discarded adaptation steps.
	DefaultBurnIn = 500

	// DefaultSamples is the number of recorded steps after burn-in.
	DefaultSamples = 5000
)

// Sentinel errors for the Metropolis-Hastings sampler.
var (
	// ErrNilQuery indicates a nil query element.
	ErrNilQuery = errors.New("mh: query element is nil")

	// ErrBadSamples indicates a non-positive sample count or negative burn-in.
	ErrBadSamples = errors.New("mh: bad sampling budget")

	// ErrNoProposable indicates a closure without any atomic unobserved
	// element to propose on.
	ErrNoProposable = errors.New("mh: nothing to propose on")
)

// Sampler estimates posteriors by single-site Metropolis-Hastings.
type Sampler struct {
	burnIn  int
	samples int
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithBurnIn sets the number of discarded adaptation steps.
func WithBurnIn(n int) Option {
	return func(s *Sampler) { s.burnIn = n }
}

// WithSamples sets the number of recorded steps after burn-in.
func WithSamples(n int) Option {
	return func(s *Sampler) { s.samples = n }
}

// New creates a Sampler with the default budget unless overridden.
func New(opts ...Option) (*Sampler, error) {
	s := &Sampler{burnIn: DefaultBurnIn, samples: DefaultSamples}
	for _, opt := range opts {
		opt(s)
	}
	if s.samples < 1 || s.burnIn < 0 {
		return nil, fmt.Errorf("%w: burnIn=%d samples=%d", ErrBadSamples, s.burnIn, s.samples)
	}

	return s, nil
}

// state is one element's captured (randomness, value) pair, for rollback.
type state struct {
	r element.Randomness
	v element.Value
}

// Posterior estimates the posterior distribution of query given all
// evidence observed in its universe.
func (s *Sampler) Posterior(query element.Element) ([]element.Weighted, error) {
	// 1) Validate and order the relevant closure; cycles surface here.
	if query == nil {
		return nil, ErrNilQuery
	}
	u := query.Universe()
	roots := append([]element.Element{query}, u.Observed()...)
	order, err := element.TopoSort(roots...)
	if err != nil {
		return nil, err
	}

	// 2) Split the closure: observed elements stay pinned; atomic
	//    unobserved elements are the proposal sites; everything else is
	//    recomputed after each accepted move.
	var proposable []element.Element
	var unobserved []element.Element
	for _, e := range order {
		if _, ok := u.Observation(e); ok {
			continue
		}
		unobserved = append(unobserved, e)
		if len(e.Args()) == 0 {
			proposable = append(proposable, e)
		}
	}
	if len(proposable) == 0 {
		return nil, fmt.Errorf("%w: query %q", ErrNoProposable, query.Name())
	}

	// 3) Initial state: forward-generate the unobserved closure, pin the
	//    evidence.
	for _, e := range order {
		if obs, ok := u.Observation(e); ok {
			element.ForceValue(e, obs)

			continue
		}
		element.Regenerate(e)
	}

	// 4) Run the chain.
	rng := u.Rand()
	tally := make(map[element.Value]float64)
	for step := 0; step < s.burnIn+s.samples; step++ {
		site := proposable[rng.IntN(len(proposable))]

		// 4a) Evidence likelihood of the current state.
		oldLik := evidenceLikelihood(u, order)

		// 4b) Snapshot for rollback, then propose and propagate.
		snap := capture(unobserved)
		r0, _ := element.CurrentRandomness(site)
		prop := element.NextRandomness(site, r0)
		element.SetRandomness(site, prop.Randomness)
		recompute(unobserved, site)

		// 4c) Accept with min(1, transition·model·likelihood).
		newLik := evidenceLikelihood(u, order)
		ratio := prop.TransitionRatio * prop.ModelRatio
		if oldLik > 0 {
			ratio *= newLik / oldLik
		} else if newLik == 0 {
			ratio = 0
		}
		if !(ratio >= 1 || rng.Float64() < ratio) {
			restore(unobserved, snap)
		}

		if step >= s.burnIn {
			tally[query.Current()]++
		}
	}

	// 5) Normalize the tally into a distribution.
	return element.TallyDistribution(query, tally)
}

// evidenceLikelihood multiplies the densities of all observed elements in
// the closure under the current parent values.
func evidenceLikelihood(u *element.Universe, order []element.Element) float64 {
	lik := 1.0
	for _, e := range order {
		if obs, ok := u.Observation(e); ok {
			lik *= e.Density(obs)
		}
	}

	return lik
}

// capture snapshots every unobserved element's (randomness, value) state.
func capture(es []element.Element) []state {
	snap := make([]state, len(es))
	for i, e := range es {
		r, _ := element.CurrentRandomness(e)
		snap[i] = state{r: r, v: e.Current()}
	}

	return snap
}

// restore reinstates a snapshot taken by capture.
func restore(es []element.Element, snap []state) {
	for i, e := range es {
		element.Restore(e, snap[i].r, snap[i].v)
	}
}

// recompute refreshes every dependent element downstream of site from its
// stored randomness: deterministic constructs recompute from the new parent
// values, atomic elements reproduce their value unchanged (referential
// consistency of GenerateValue).
func recompute(order []element.Element, site element.Element) {
	for _, e := range order {
		if e == site || len(e.Args()) == 0 {
			continue
		}
		r, ok := element.CurrentRandomness(e)
		if !ok {
			continue
		}
		element.SetRandomness(e, r)
	}
}

// Package element defines core types, capability interfaces, sentinel errors
// and configuration options for the provar random-variable substrate.
//
// Every random variable is an Element: a named node inside a Universe that
// knows how to draw an intermediate Randomness value, turn it into a final
// Value, and score any candidate value with a density. Optional capabilities
// (Enumerable, Conditional, Proposer, Parameter) are expressed as Go
// interfaces; an inference engine asks for a capability with a type
// assertion and receives ErrUnsupported semantics when the element does not
// provide it.
//
// Errors (sentinel):
//
//	– ErrNilUniverse      if a nil *Universe is passed to a constructor.
//	– ErrNilElement       if a nil Element is passed where one is required.
//	– ErrNilFunc          if a composition construct receives a nil function.
//	– ErrDuplicateName    if an element name is reused within one Universe.
//	– ErrCyclicDependency if composition constructs close a dependency cycle.
//	– ErrUnsupported      if a capability is requested that the element lacks.
//	– ErrInfiniteSupport  if finite enumeration is requested of a continuous element.
//	– ErrArity            if a conditional weight query has the wrong parent count.
//	– ErrBadProbability   if a probability lies outside [0,1].
//	– ErrBadParameter     if a distribution parameter is out of range.
//	– ErrBadWeights       if selection weights are malformed.
//	– ErrNoValues         if a selection element is given no outcomes.
//	– ErrDuplicateValue   if a selection element is given repeated outcomes.
//	– ErrBadCapacity      if a chain cache capacity is not positive.
package element

import "errors"

// Sentinel errors for element construction and capability dispatch.
var (
	// ErrNilUniverse indicates a nil *Universe was passed to a constructor.
	ErrNilUniverse = errors.New("element: universe is nil")

	// ErrNilElement indicates a nil Element where a concrete one is required.
	ErrNilElement = errors.New("element: element is nil")

	// ErrNilFunc indicates a nil function passed to Apply or Chain.
	ErrNilFunc = errors.New("element: function is nil")

	// ErrDuplicateName indicates a name collision inside one Universe.
	ErrDuplicateName = errors.New("element: duplicate element name")

	// ErrForeignElement indicates an element that belongs to another Universe.
	ErrForeignElement = errors.New("element: element belongs to another universe")

	// ErrCyclicDependency indicates the dependency structure is not acyclic.
	ErrCyclicDependency = errors.New("element: cyclic dependency")

	// ErrUnsupported indicates a capability the element does not implement.
	ErrUnsupported = errors.New("element: capability not supported")

	// ErrInfiniteSupport indicates finite enumeration of a continuous element.
	ErrInfiniteSupport = errors.New("element: support is not finite")

	// ErrArity indicates a conditional query with the wrong parent count.
	ErrArity = errors.New("element: wrong number of parent values")

	// ErrBadProbability indicates a probability outside [0,1].
	ErrBadProbability = errors.New("element: probability outside [0,1]")

	// ErrBadParameter indicates an out-of-range distribution parameter.
	ErrBadParameter = errors.New("element: bad distribution parameter")

	// ErrBadWeights indicates malformed selection weights.
	ErrBadWeights = errors.New("element: bad selection weights")

	// ErrNoValues indicates a selection element with no outcomes.
	ErrNoValues = errors.New("element: no outcome values")

	// ErrDuplicateValue indicates repeated outcomes in a selection element.
	ErrDuplicateValue = errors.New("element: duplicate outcome value")

	// ErrBadCapacity indicates a non-positive chain cache capacity.
	ErrBadCapacity = errors.New("element: cache capacity must be positive")
)

// Value is the final value an element produces. Values used in enumeration,
// chain caching or evidence must be comparable with ==.
type Value any

// Randomness is the intermediate stochastic value an element draws before
// producing its final value. For deterministic elements it degenerates to
// Unit. A randomness value is owned by the element that generated it and is
// replaced wholesale on each resample, never mutated in place.
type Randomness any

// Unit is the degenerate randomness of deterministic elements.
type Unit struct{}

// Weighted pairs an outcome with its probability inside a distribution
// reported by an inference engine.
type Weighted struct {
	// Prob is the probability mass assigned to Value.
	Prob float64

	// Value is the outcome.
	Value Value
}

// Enumerable is the finite-support capability. Elements whose reachable
// value set is finite return it as an ordered slice of distinct values.
// The ordering is stable across calls; tabular factors rely on it.
type Enumerable interface {
	MakeValues() ([]Value, error)
}

// Conditional is the capability of composed elements whose local
// distribution is a table over parent values. ConditionalWeight returns the
// unnormalized weight of v given one value per Args() entry, in order.
type Conditional interface {
	Element
	ConditionalWeight(parents []Value, v Value) (float64, error)
}

// Proposal is a Metropolis-Hastings proposal: a candidate randomness plus
// the two acceptance-ratio terms, kept separate because some callers need
// them independently (annealing). The calling sampler accepts with
// probability min(1, TransitionRatio*ModelRatio); the element never decides
// acceptance itself.
type Proposal struct {
	// Randomness is the proposed next randomness value.
	Randomness Randomness

	// TransitionRatio is P(proposed→current) / P(current→proposed).
	TransitionRatio float64

	// ModelRatio is P(proposed) / P(current) under the element's own density.
	ModelRatio float64
}

// Proposer is the optional MCMC capability: a custom, possibly asymmetric
// proposal kernel. Elements without it get the default symmetric kernel via
// NextRandomness (fresh resample, both ratios 1).
type Proposer interface {
	NextRandomness(r Randomness) Proposal
}

// Parameter is the learnable-hyperparameter capability. A Parameter is
// itself an element (its randomness samples the prior); it additionally
// owns a fixed-dimension sufficient-statistics shape and a learned value
// that only Maximize may replace.
type Parameter interface {
	Element

	// ZeroSufficientStatistics returns a zero vector of the family's fixed
	// dimension, used to start each expectation step.
	ZeroSufficientStatistics() []float64

	// SufficientStatistics returns the one-hot vector for a single observed
	// outcome v.
	SufficientStatistics(v Value) ([]float64, error)

	// DistributionToStatistics folds a posterior outcome distribution into a
	// sufficient-statistics vector: each outcome's probability is summed
	// into its slot; outcomes absent from dist contribute zero.
	DistributionToStatistics(dist []Weighted) []float64

	// ExpectedValue reports the expectation under the learned
	// hyperparameters. Parameterized elements read it at generation time.
	ExpectedValue() Value

	// MAPValue reports the maximum-a-posteriori point estimate.
	MAPValue() Value

	// Maximize replaces the learned value deterministically from the
	// immutable prior plus the accumulated statistics. A stats vector of the
	// wrong dimension is a fatal precondition failure.
	Maximize(stats []float64) error
}

// Parameterized is implemented by elements whose generation behavior reads
// a Parameter's current learned value. The reference is shared, not owned:
// many elements may point at one Parameter, and updating the Parameter
// immediately changes all of them.
type Parameterized interface {
	Element
	Parameter() Parameter
}

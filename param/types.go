// Package param implements learnable parameters and the elements they
// drive.
//
// A parameter is an element (its randomness samples the current
// hyperparameters) that additionally supports the sufficient-statistics
// protocol: a fixed-dimension statistics vector, one-hot conversion of
// observed outcomes, folding of posterior distributions into statistics,
// and a deterministic Maximize step computing new learned hyperparameters
// from the immutable prior plus accumulated counts. The prior never
// mutates; Maximize replaces the learned pair/vector wholesale, and the
// expectation-maximization driver applies all Maximize calls at the step
// boundary, so parameter values are frozen for the duration of an
// expectation step.
//
// Parameterized elements (CompoundFlip, CompoundSelect) hold a shared,
// non-owning reference to their parameter and read its current expected
// value at generation time, never a private copy: updating the parameter
// immediately changes every element referencing it.
//
// Errors (sentinel):
//
//	– ErrBadHyperparameters if a prior hyperparameter is not positive.
//	– ErrStatsDimension     if a statistics vector has the wrong length.
//	– ErrUnknownOutcome     if an outcome has no statistics slot.
//	– ErrNilParameter       if a parameterized element gets a nil parameter.
package param

import "errors"

// Sentinel errors for the parameter protocol.
var (
	// ErrBadHyperparameters indicates a non-positive prior hyperparameter.
	ErrBadHyperparameters = errors.New("param: hyperparameters must be positive")

	// ErrStatsDimension indicates a statistics vector of the wrong length.
	// Maximize never pads or truncates; the mismatch is fatal.
	ErrStatsDimension = errors.New("param: sufficient statistics dimension mismatch")

	// ErrUnknownOutcome indicates an outcome without a statistics slot.
	ErrUnknownOutcome = errors.New("param: unknown outcome")

	// ErrNilParameter indicates a nil parameter reference.
	ErrNilParameter = errors.New("param: parameter is nil")
)

// Package provar is a composable probabilistic-programming substrate:
// a graph of random-variable elements whose behavior is selected by which
// optional capabilities each element type implements, plus the protocols
// that let heterogeneous elements plug into multiple inference algorithms
// uniformly.
//
// 🎲 What is provar?
//
//	A small, capability-dispatched core that brings together:
//		• Elements: named random variables inside a Universe, with the
//		  randomness → value → density generation protocol
//		• Composition: n-ary deterministic Apply and dependent-branch Chain
//		  (with an optional bounded subordinate cache)
//		• Factors: memoized Variable handles and dense tables for exact
//		  inference
//		• Proposals: per-element Metropolis-Hastings kernels with separate
//		  transition and model ratios
//		• Learning: conjugate parameters with sufficient statistics and an
//		  expectation-maximization driver
//
// Everything is organized under seven subpackages:
//
//	element/    — Universe, generation protocol, Apply, Chain, capabilities
//	param/      — Beta & Dirichlet parameters, parameterized elements
//	factor/     — variable memoization context + tabular factors
//	eliminate/  — exact posterior queries by variable elimination
//	importance/ — likelihood-weighting posterior estimation
//	mh/         — Metropolis-Hastings sampler over the proposal protocol
//	learn/      — expectation-maximization over parameter targets
//
// Quick sketch:
//
//	u := element.NewUniverse(element.WithSeed(7))
//	rain, _ := element.NewFlip(u, "rain", 0.2)
//	grass, _ := element.NewChain(u, "grass", rain, func(v element.Value) element.Element {
//	    if v.(bool) {
//	        wet, _ := element.NewFlip(u, "", 0.9)
//	        return wet
//	    }
//	    wet, _ := element.NewFlip(u, "", 0.1)
//	    return wet
//	}, element.WithSmallSupportHint())
//	_ = u.Observe(grass, true)
//	posterior, _ := eliminate.New().Posterior(rain)
//
// Inference engines stay external to the element model: they only consume
// the capability surface (Enumerable, Conditional, Proposer, Parameter),
// so a custom element type plugs into every engine by implementing the
// interfaces it can support.
//
//	go get github.com/katalvlaran/provar
package provar

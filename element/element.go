package element

import (
	"fmt"
	"sort"
)

// Element is a random variable node: stable identity inside a Universe, a
// list of parent elements, and the three-part generation protocol.
//
// GenerateValue must be referentially consistent: equal randomness yields
// equal values. Density returns 0 for values outside the support and never
// fails; purely deterministic elements return 1 for their computed value.
//
// Concrete element types embed Base, which supplies identity bookkeeping
// and the current (randomness, value) state.
type Element interface {
	// Name is the element's immutable identity within its Universe.
	Name() string

	// Universe is the collection that owns the element.
	Universe() *Universe

	// Args lists the parent elements this element depends on. It must be
	// side-effect-free and valid as soon as the constructor returns.
	Args() []Element

	// GenerateRandomness draws a fresh randomness value, consuming entropy
	// from the Universe's shared source.
	GenerateRandomness() Randomness

	// GenerateValue deterministically maps randomness to a value. For
	// deterministic elements it recomputes from the parents' current values.
	GenerateValue(r Randomness) Value

	// Density returns the probability mass/density of v under the element's
	// current distribution; 0 outside the support.
	Density(v Value) float64

	// Current returns the last generated (or forced) value.
	Current() Value

	base() *Base
}

// Base carries the identity and generation state shared by all element
// types. Embed it (by value) in every concrete element.
type Base struct {
	name string
	u    *Universe

	r         Randomness
	v         Value
	generated bool
}

// Name returns the element's immutable identity.
func (b *Base) Name() string { return b.name }

// Universe returns the owning collection.
func (b *Base) Universe() *Universe { return b.u }

// Args returns no parents; composed element types override it.
func (b *Base) Args() []Element { return nil }

// Current returns the last generated (or forced) value.
func (b *Base) Current() Value { return b.v }

func (b *Base) base() *Base { return b }

// store replaces the whole (randomness, value) state; never a partial write.
func (b *Base) store(r Randomness, v Value) {
	b.r = r
	b.v = v
	b.generated = true
}

// CurrentRandomness reports e's current randomness and whether e has been
// generated at all since construction.
func CurrentRandomness(e Element) (Randomness, bool) {
	b := e.base()

	return b.r, b.generated
}

// SetRandomness installs r as e's current randomness, recomputes the value
// through GenerateValue, stores both and returns the value. Samplers use it
// both to apply accepted proposals and to recompute downstream deterministic
// elements after a parent changed.
func SetRandomness(e Element, r Randomness) Value {
	v := e.GenerateValue(r)
	e.base().store(r, v)

	return v
}

// ForceValue pins v as e's current value without consuming randomness.
// Inference engines use it to install observed evidence.
func ForceValue(e Element, v Value) {
	b := e.base()
	b.v = v
	b.generated = true
}

// Restore reinstates a previously captured (randomness, value) pair, e.g.
// when a sampler rolls back a rejected proposal.
func Restore(e Element, r Randomness, v Value) {
	e.base().store(r, v)
}

// Regenerate resamples e: parents that have never been generated are
// generated first (existing parent values are kept), then e draws fresh
// randomness and recomputes its value.
func Regenerate(e Element) Value {
	for _, p := range e.Args() {
		if !p.base().generated {
			Regenerate(p)
		}
	}

	return SetRandomness(e, e.GenerateRandomness())
}

// Generate resamples the given elements and all their ancestors exactly
// once each, parents before dependents. Shared ancestors are drawn a single
// time per call, so diamond-shaped dependencies stay consistent.
//
// Complexity: O(V + E) over the ancestor closure.
func Generate(es ...Element) error {
	// 1) Order the ancestor closure, failing on cycles.
	order, err := TopoSort(es...)
	if err != nil {
		return err
	}

	// 2) Resample in order; parents are always current when a dependent is
	//    reached, so GenerateValue may read them.
	for _, e := range order {
		SetRandomness(e, e.GenerateRandomness())
	}

	return nil
}

// TopoSort returns the ancestor closure of the given roots in dependency
// order (every element after all of its Args). A dependency cycle is a
// structural violation and yields ErrCyclicDependency.
//
// Complexity: O(V + E) over the closure.
func TopoSort(roots ...Element) ([]Element, error) {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)

	state := make(map[Element]int)
	var order []Element

	var visit func(e Element) error
	visit = func(e Element) error {
		if e == nil {
			return ErrNilElement
		}
		switch state[e] {
		case done:
			return nil
		case inStack:
			return fmt.Errorf("%w: detected at %q", ErrCyclicDependency, e.Name())
		}
		state[e] = inStack
		for _, p := range e.Args() {
			if err := visit(p); err != nil {
				return err
			}
		}
		state[e] = done
		order = append(order, e)

		return nil
	}

	for _, root := range roots {
		if err := visit(root); err != nil {
			return nil, err
		}
	}

	return order, nil
}

// CheckAcyclic verifies that e's dependency structure is acyclic.
func CheckAcyclic(e Element) error {
	_, err := TopoSort(e)

	return err
}

// NextRandomness obtains a Metropolis-Hastings proposal from e. Elements
// implementing Proposer supply their own kernel; everything else gets the
// default symmetric kernel: a fresh resample with both ratios 1, correct
// exactly when the generation process is itself the intended proposal.
func NextRandomness(e Element, r Randomness) Proposal {
	if p, ok := e.(Proposer); ok {
		return p.NextRandomness(r)
	}

	return Proposal{
		Randomness:      e.GenerateRandomness(),
		TransitionRatio: 1.0,
		ModelRatio:      1.0,
	}
}

// TallyDistribution converts an accumulated value→weight tally into a
// normalized distribution. When e enumerates a finite domain the result
// follows domain order (including zero-probability outcomes); otherwise
// outcomes are ordered by their formatted representation for determinism.
func TallyDistribution(e Element, tally map[Value]float64) ([]Weighted, error) {
	var total float64
	for _, w := range tally {
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("element: empty tally for %q", e.Name())
	}

	if en, ok := e.(Enumerable); ok {
		domain, err := en.MakeValues()
		if err == nil {
			out := make([]Weighted, len(domain))
			for i, v := range domain {
				out[i] = Weighted{Prob: tally[v] / total, Value: v}
			}

			return out, nil
		}
		// Fall through to formatted ordering when enumeration fails late.
	}

	keys := make([]Value, 0, len(tally))
	for v := range tally {
		keys = append(keys, v)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})
	out := make([]Weighted, len(keys))
	for i, v := range keys {
		out[i] = Weighted{Prob: tally[v] / total, Value: v}
	}

	return out, nil
}

package element

import "fmt"

// Apply is the n-ary deterministic composition construct: it holds n parent
// elements and a pure function of their values. The value is recomputed
// from the parents' current values on every call; there is no caching at
// this layer, so a changed parent is always reflected immediately.
type Apply struct {
	Base
	parents []Element
	fn      func([]Value) Value
}

// NewApply creates a deterministic element computing fn over the parents'
// values, in the given order. fn must be pure: side-effect-free and
// independent of construction order, since Args is consulted before the
// element's own state is fully built.
func NewApply(u *Universe, name string, fn func([]Value) Value, parents ...Element) (*Apply, error) {
	// 1) Validate the function and parent list.
	if fn == nil {
		return nil, ErrNilFunc
	}
	if len(parents) == 0 {
		return nil, fmt.Errorf("%w: apply needs at least one parent", ErrNilElement)
	}
	for i, p := range parents {
		if p == nil {
			return nil, fmt.Errorf("%w: parent %d", ErrNilElement, i)
		}
	}

	// 2) Build and register.
	a := &Apply{
		parents: append([]Element(nil), parents...),
		fn:      fn,
	}
	if err := Init(u, name, "apply", a); err != nil {
		return nil, err
	}

	return a, nil
}

// Args returns the parent list in application order.
func (a *Apply) Args() []Element {
	return append([]Element(nil), a.parents...)
}

// GenerateRandomness returns Unit; Apply is deterministic.
func (a *Apply) GenerateRandomness() Randomness { return Unit{} }

// GenerateValue recomputes fn over the parents' current values.
func (a *Apply) GenerateValue(_ Randomness) Value {
	return a.fn(a.parentValues())
}

// Density is 1 for the value fn currently computes, 0 for everything else.
func (a *Apply) Density(v Value) float64 {
	if a.fn(a.parentValues()) == v {
		return 1.0
	}

	return 0.0
}

// MakeValues enumerates the image of fn over the cross-product of the
// parents' finite supports, de-duplicated in first-seen order.
//
// Complexity: O(Π |domain_i|) function applications.
func (a *Apply) MakeValues() ([]Value, error) {
	// 1) Enumerate every parent domain.
	domains, err := parentDomains(a.parents)
	if err != nil {
		return nil, fmt.Errorf("apply %q: %w", a.Name(), err)
	}

	// 2) Walk the cross-product with an odometer, mapping through fn.
	var out []Value
	seen := make(map[Value]struct{})
	coords := make([]int, len(domains))
	vals := make([]Value, len(domains))
	for {
		for i, c := range coords {
			vals[i] = domains[i][c]
		}
		v := a.fn(vals)
		if _, dup := seen[v]; !dup {
			seen[v] = struct{}{}
			out = append(out, v)
		}
		if !advance(coords, domains) {
			break
		}
	}

	return out, nil
}

// ConditionalWeight is 1 when fn(parents) == v, 0 otherwise.
func (a *Apply) ConditionalWeight(parents []Value, v Value) (float64, error) {
	if len(parents) != len(a.parents) {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrArity, len(parents), len(a.parents))
	}
	if a.fn(parents) == v {
		return 1.0, nil
	}

	return 0.0, nil
}

func (a *Apply) parentValues() []Value {
	vals := make([]Value, len(a.parents))
	for i, p := range a.parents {
		vals[i] = p.Current()
	}

	return vals
}

// parentDomains enumerates the finite support of every parent, failing with
// ErrInfiniteSupport when any parent is not Enumerable.
func parentDomains(parents []Element) ([][]Value, error) {
	domains := make([][]Value, len(parents))
	for i, p := range parents {
		en, ok := p.(Enumerable)
		if !ok {
			return nil, fmt.Errorf("%w: parent %q", ErrInfiniteSupport, p.Name())
		}
		d, err := en.MakeValues()
		if err != nil {
			return nil, err
		}
		domains[i] = d
	}

	return domains, nil
}

// advance increments the odometer coords over domains; false on wraparound.
func advance(coords []int, domains [][]Value) bool {
	for i := len(coords) - 1; i >= 0; i-- {
		coords[i]++
		if coords[i] < len(domains[i]) {
			return true
		}
		coords[i] = 0
	}

	return false
}

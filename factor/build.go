package factor

import (
	"fmt"

	"github.com/katalvlaran/provar/element"
)

// FromElement builds the tabular factor(s) expressing e's local
// distribution, dispatching on e's capabilities:
//
//   - a Conditional element (Apply, Chain, custom conditionals) yields one
//     factor over its parents' handles followed by its own handle, cells
//     filled from ConditionalWeight;
//   - any other Enumerable element yields one single-variable factor with
//     cells filled from Density in domain order.
//
// Every cell is written; the factors are not normalized. Elements without
// the required capabilities yield element.ErrUnsupported (wrapped).
//
// Complexity: O(Π |domain_i|) weight evaluations per factor.
func FromElement(ctx *Context, e element.Element) ([]*Factor, error) {
	// 1) Validate and obtain the element's own canonical handle.
	if ctx == nil {
		return nil, ErrNilContext
	}
	if e == nil {
		return nil, element.ErrNilElement
	}
	self, err := ctx.Variable(e)
	if err != nil {
		return nil, err
	}

	// 2) Conditional elements get a parents+self table.
	if c, ok := e.(element.Conditional); ok {
		f, err := conditionalFactor(ctx, c, self)
		if err != nil {
			return nil, err
		}

		return []*Factor{f}, nil
	}

	// 3) Atomic enumerable elements get a single-variable density table.
	f, err := New(self)
	if err != nil {
		return nil, err
	}
	for i, v := range self.domain {
		if err := f.Set([]int{i}, e.Density(v)); err != nil {
			return nil, fmt.Errorf("factor: %q at %v: %w", e.Name(), v, err)
		}
	}

	return []*Factor{f}, nil
}

// conditionalFactor fills the parents+self table of a Conditional element.
func conditionalFactor(ctx *Context, c element.Conditional, self *Variable) (*Factor, error) {
	// 1) Canonical handles for every parent, in Args order.
	args := c.Args()
	vars := make([]*Variable, 0, len(args)+1)
	for _, p := range args {
		pv, err := ctx.Variable(p)
		if err != nil {
			return nil, err
		}
		vars = append(vars, pv)
	}
	vars = append(vars, self)

	f, err := New(vars...)
	if err != nil {
		return nil, err
	}

	// 2) Fill every cell: the last coordinate indexes the element's own
	//    value, the rest index parent values.
	coords := make([]int, len(vars))
	parentVals := make([]element.Value, len(args))
	for {
		for i := range args {
			parentVals[i] = vars[i].domain[coords[i]]
		}
		selfVal := self.domain[coords[len(coords)-1]]
		w, err := c.ConditionalWeight(parentVals, selfVal)
		if err != nil {
			return nil, fmt.Errorf("factor: conditional %q: %w", c.Name(), err)
		}
		if err := f.Set(coords, w); err != nil {
			return nil, err
		}
		if !advanceCoords(coords, vars) {
			break
		}
	}

	return f, nil
}

// Evidence builds the single-variable evidence factor pinning e to v:
// weight 1 at v's domain index, 0 elsewhere. A value outside the domain
// yields an all-zero factor, consistent with zero density outside support;
// the elimination engine surfaces it as inconsistent evidence.
func Evidence(ctx *Context, e element.Element, v element.Value) (*Factor, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if e == nil {
		return nil, element.ErrNilElement
	}
	self, err := ctx.Variable(e)
	if err != nil {
		return nil, err
	}

	f, err := New(self)
	if err != nil {
		return nil, err
	}
	for i, dv := range self.domain {
		w := 0.0
		if dv == v {
			w = 1.0
		}
		if err := f.Set([]int{i}, w); err != nil {
			return nil, err
		}
	}

	return f, nil
}

package factor

import (
	"fmt"
	"sync"

	"github.com/katalvlaran/provar/element"
)

// Variable is the canonical finite-domain handle of one element: the
// element plus its enumerated domain in a fixed order. Two factors built
// through the same Context always share the identical handle for a given
// element, so their cell indices agree.
type Variable struct {
	el     element.Element
	domain []element.Value
	index  map[element.Value]int
}

// Element returns the element this handle wraps.
func (v *Variable) Element() element.Element { return v.el }

// Domain returns a copy of the ordered domain.
func (v *Variable) Domain() []element.Value {
	return append([]element.Value(nil), v.domain...)
}

// Size returns the domain cardinality.
func (v *Variable) Size() int { return len(v.domain) }

// Index returns the domain index of val.
func (v *Variable) Index(val element.Value) (int, error) {
	i, ok := v.index[val]
	if !ok {
		return 0, fmt.Errorf("%w: %v for %q", ErrValueNotInDomain, val, v.el.Name())
	}

	return i, nil
}

// Context is the per-run variable memoization table. The zero value is not
// usable; create one with NewContext per inference run, and share it across
// goroutines only when runs deliberately cooperate on one elimination.
type Context struct {
	mu   sync.Mutex
	vars map[element.Element]*Variable
}

// NewContext creates an empty memoization table.
func NewContext() *Context {
	return &Context{vars: make(map[element.Element]*Variable)}
}

// Variable returns the canonical handle for e, creating and memoizing it on
// first request. Repeated requests return the same handle (referential
// stability). Elements without finite support yield ErrUnsupported.
func (c *Context) Variable(e element.Element) (*Variable, error) {
	if c == nil {
		return nil, ErrNilContext
	}
	if e == nil {
		return nil, element.ErrNilElement
	}

	// Fast path: already memoized.
	c.mu.Lock()
	if v, ok := c.vars[e]; ok {
		c.mu.Unlock()

		return v, nil
	}
	c.mu.Unlock()

	// Enumerate outside the lock: chain enumeration may construct
	// subordinate elements and must not hold the table mutex.
	en, ok := e.(element.Enumerable)
	if !ok {
		return nil, fmt.Errorf("%w: %q has no finite support", element.ErrUnsupported, e.Name())
	}
	domain, err := en.MakeValues()
	if err != nil {
		return nil, fmt.Errorf("factor: enumerating %q: %w", e.Name(), err)
	}
	if len(domain) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyDomain, e.Name())
	}

	v := &Variable{
		el:     e,
		domain: domain,
		index:  make(map[element.Value]int, len(domain)),
	}
	for i, val := range domain {
		v.index[val] = i
	}

	// Re-check under the lock; a concurrent caller may have won the race.
	c.mu.Lock()
	defer c.mu.Unlock()
	if prior, ok := c.vars[e]; ok {
		return prior, nil
	}
	c.vars[e] = v

	return v, nil
}

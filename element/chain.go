package element

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultChainCapacity is the caching chain's default memoization table
// size, suitable for low-cardinality parents.
const DefaultChainCapacity = 16

// ChainFunc maps a parent value to a freshly constructed subordinate
// element. Constructed subordinates register themselves in the Universe
// like any other element.
type ChainFunc func(Value) Element

type cachePolicy int

const (
	cacheAuto cachePolicy = iota
	cacheAlways
	cacheNever
)

type chainConfig struct {
	policy       cachePolicy
	capacity     int
	smallSupport bool
}

// ChainOption configures a Chain before creation.
type ChainOption func(*chainConfig)

// WithCaching requests the caching policy explicitly, regardless of any
// small-support hint.
func WithCaching() ChainOption {
	return func(c *chainConfig) { c.policy = cacheAlways }
}

// WithoutCaching requests the non-caching policy explicitly: a fresh
// subordinate is constructed on every resolution.
func WithoutCaching() ChainOption {
	return func(c *chainConfig) { c.policy = cacheNever }
}

// WithChainCapacity sets the caching chain's memoization table capacity.
// Implies nothing about the policy; combine with WithCaching or a hint.
func WithChainCapacity(n int) ChainOption {
	return func(c *chainConfig) { c.capacity = n }
}

// WithSmallSupportHint marks the chain function as producing few distinct
// subordinates, letting NewChain auto-select the caching policy. The hint
// is advisory only: explicit WithCaching/WithoutCaching always wins.
func WithSmallSupportHint() ChainOption {
	return func(c *chainConfig) { c.smallSupport = true }
}

// Chain is the dependent-branch construct: one parent element and a
// function mapping the parent's value to a subordinate element; the chain's
// value is the subordinate's value.
//
// Under the caching policy, subordinates are memoized in a bounded
// equality-keyed table so that equal parent values reuse the identical
// subordinate instance; eviction is silent and affects only performance,
// never correctness. The memoization table is private to the chain
// instance; concurrent resampling of one chain requires a single writer.
type Chain struct {
	Base
	parent Element
	fn     ChainFunc
	cache  *lru.Cache[Value, Element] // nil under the non-caching policy
}

// NewChain creates a dependent branch of parent through fn. Without an
// explicit policy option the non-caching policy is used, unless
// WithSmallSupportHint auto-selects caching.
func NewChain(u *Universe, name string, parent Element, fn ChainFunc, opts ...ChainOption) (*Chain, error) {
	// 1) Validate inputs.
	if parent == nil {
		return nil, fmt.Errorf("%w: chain parent", ErrNilElement)
	}
	if fn == nil {
		return nil, ErrNilFunc
	}

	// 2) Resolve the cache policy: explicit request wins, then the hint.
	cfg := chainConfig{capacity: DefaultChainCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.capacity < 1 {
		return nil, fmt.Errorf("%w: %d", ErrBadCapacity, cfg.capacity)
	}
	caching := cfg.policy == cacheAlways || (cfg.policy == cacheAuto && cfg.smallSupport)

	// 3) Build, allocating the memoization table only when caching.
	c := &Chain{parent: parent, fn: fn}
	if caching {
		cache, err := lru.New[Value, Element](cfg.capacity)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadCapacity, err)
		}
		c.cache = cache
	}
	if err := Init(u, name, "chain", c); err != nil {
		return nil, err
	}

	return c, nil
}

// Caching reports whether the chain memoizes subordinates.
func (c *Chain) Caching() bool { return c.cache != nil }

// Args returns the single parent.
func (c *Chain) Args() []Element { return []Element{c.parent} }

// Subordinate resolves the subordinate element for the given parent value.
// Under the caching policy a previously seen parent value returns the
// identical instance (reference equality); otherwise a fresh element is
// constructed. A subordinate that reaches back to the chain itself is a
// model-construction bug and yields ErrCyclicDependency.
func (c *Chain) Subordinate(parentValue Value) (Element, error) {
	// 1) Cache hit under the caching policy.
	if c.cache != nil {
		if sub, ok := c.cache.Get(parentValue); ok {
			return sub, nil
		}
	}

	// 2) Construct a fresh subordinate.
	sub := c.fn(parentValue)
	if sub == nil {
		return nil, fmt.Errorf("%w: chain %q returned nil subordinate", ErrNilElement, c.Name())
	}

	// 3) Structural check: the subordinate must not depend on the chain.
	if reaches(sub, c) {
		return nil, fmt.Errorf("%w: subordinate of %q depends on the chain", ErrCyclicDependency, c.Name())
	}

	// 4) Memoize; eviction is silent by design of the capacity policy.
	if c.cache != nil {
		c.cache.Add(parentValue, sub)
	}

	return sub, nil
}

// GenerateRandomness returns Unit; the chain's stochasticity lives in the
// subordinate it delegates to.
func (c *Chain) GenerateRandomness() Randomness { return Unit{} }

// GenerateValue selects the subordinate by the parent's current value,
// resamples it and returns its value. Resolution failures are
// model-construction bugs and panic.
func (c *Chain) GenerateValue(_ Randomness) Value {
	sub, err := c.Subordinate(c.parent.Current())
	if err != nil {
		panic(fmt.Errorf("chain %q: %w", c.Name(), err))
	}

	return Regenerate(sub)
}

// Density returns the subordinate's density of v, for the subordinate
// selected by the parent's current value.
func (c *Chain) Density(v Value) float64 {
	sub, err := c.Subordinate(c.parent.Current())
	if err != nil {
		panic(fmt.Errorf("chain %q: %w", c.Name(), err))
	}

	return sub.Density(v)
}

// MakeValues enumerates the union of subordinate supports over every
// finite parent value, de-duplicated in first-seen order.
func (c *Chain) MakeValues() ([]Value, error) {
	// 1) The parent must enumerate.
	pen, ok := c.parent.(Enumerable)
	if !ok {
		return nil, fmt.Errorf("%w: chain parent %q", ErrInfiniteSupport, c.parent.Name())
	}
	parentVals, err := pen.MakeValues()
	if err != nil {
		return nil, err
	}

	// 2) Union the subordinate supports.
	var out []Value
	seen := make(map[Value]struct{})
	for _, pv := range parentVals {
		sub, err := c.Subordinate(pv)
		if err != nil {
			return nil, err
		}
		sen, ok := sub.(Enumerable)
		if !ok {
			return nil, fmt.Errorf("%w: subordinate %q", ErrInfiniteSupport, sub.Name())
		}
		subVals, err := sen.MakeValues()
		if err != nil {
			return nil, err
		}
		for _, v := range subVals {
			if _, dup := seen[v]; !dup {
				seen[v] = struct{}{}
				out = append(out, v)
			}
		}
	}

	return out, nil
}

// ConditionalWeight returns P(chain = v | parent = parents[0]), the density
// of v under the subordinate selected by the parent value.
func (c *Chain) ConditionalWeight(parents []Value, v Value) (float64, error) {
	if len(parents) != 1 {
		return 0, fmt.Errorf("%w: got %d, want 1", ErrArity, len(parents))
	}
	sub, err := c.Subordinate(parents[0])
	if err != nil {
		return 0, err
	}

	return sub.Density(v), nil
}

// reaches reports whether target is in e's static dependency closure.
func reaches(e Element, target Element) bool {
	if e == target {
		return true
	}
	for _, p := range e.Args() {
		if reaches(p, target) {
			return true
		}
	}

	return false
}

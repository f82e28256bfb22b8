package element

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Universe is the collection that owns a set of elements: it provides name
// resolution, the shared random source, and the evidence registry.
//
// Elements may reference elements in the same Universe or an ancestor
// Universe only; a child scope never leaks names upward.
//
// All draws from the shared source happen in a single-threaded order, so a
// fixed seed (WithSeed) makes a whole inference run reproducible.
type Universe struct {
	mu sync.RWMutex

	parent *Universe

	src rand.Source
	rng *rand.Rand

	elements []Element
	byName   map[string]Element

	// observed maps element name → pinned evidence value.
	observed map[string]Value
}

// UniverseOption configures a Universe before creation.
type UniverseOption func(*Universe)

// WithSeed seeds the universe's random source deterministically.
func WithSeed(seed uint64) UniverseOption {
	return func(u *Universe) { u.src = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15) }
}

// WithParent makes the new Universe a child scope of parent: name lookups
// fall back to the ancestor chain, while registration stays local.
func WithParent(parent *Universe) UniverseOption {
	return func(u *Universe) { u.parent = parent }
}

// NewUniverse creates an empty Universe. Without WithSeed the source is
// seeded from the wall clock.
// Complexity: O(1)
func NewUniverse(opts ...UniverseOption) *Universe {
	u := &Universe{
		byName:   make(map[string]Element),
		observed: make(map[string]Value),
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.src == nil {
		now := uint64(time.Now().UnixNano())
		u.src = rand.NewPCG(now, now^0x9e3779b97f4a7c15)
	}
	u.rng = rand.New(u.src)

	return u
}

// Rand returns the universe's shared random number generator.
func (u *Universe) Rand() *rand.Rand { return u.rng }

// RandSource returns the underlying random source, for distribution
// implementations that sample from a rand.Source directly. It shares the
// draw stream with Rand.
func (u *Universe) RandSource() rand.Source { return u.src }

// Elements returns a snapshot of all registered elements in registration
// order.
func (u *Universe) Elements() []Element {
	u.mu.RLock()
	defer u.mu.RUnlock()

	out := make([]Element, len(u.elements))
	copy(out, u.elements)

	return out
}

// Lookup resolves name in this Universe, then in ancestor scopes.
func (u *Universe) Lookup(name string) (Element, bool) {
	for scope := u; scope != nil; scope = scope.parent {
		scope.mu.RLock()
		e, ok := scope.byName[name]
		scope.mu.RUnlock()
		if ok {
			return e, true
		}
	}

	return nil, false
}

// Observe pins e to the evidence value v for all subsequent inference runs.
// e must belong to this Universe.
func (u *Universe) Observe(e Element, v Value) error {
	if e == nil {
		return ErrNilElement
	}
	if e.Universe() != u {
		return fmt.Errorf("%w: %q", ErrForeignElement, e.Name())
	}
	u.mu.Lock()
	u.observed[e.Name()] = v
	u.mu.Unlock()

	return nil
}

// Unobserve removes any evidence pinned to e. Unknown elements are a no-op.
func (u *Universe) Unobserve(e Element) {
	if e == nil {
		return
	}
	u.mu.Lock()
	delete(u.observed, e.Name())
	u.mu.Unlock()
}

// Observation reports the evidence value pinned to e, if any.
func (u *Universe) Observation(e Element) (Value, bool) {
	if e == nil {
		return nil, false
	}
	u.mu.RLock()
	v, ok := u.observed[e.Name()]
	u.mu.RUnlock()

	return v, ok
}

// Observed returns all observed elements in registration order, so that
// inference engines traverse evidence deterministically.
func (u *Universe) Observed() []Element {
	u.mu.RLock()
	defer u.mu.RUnlock()

	out := make([]Element, 0, len(u.observed))
	for _, e := range u.elements {
		if _, ok := u.observed[e.Name()]; ok {
			out = append(out, e)
		}
	}

	return out
}

// Init reserves an identity for e inside u and records it as a member of
// the collection. It is called once by every element constructor, including
// constructors of custom element types outside this package. An empty name
// is replaced by a generated "kind-xxxxxxxx" name. Identity is immutable
// afterwards and never reused within the Universe.
func Init(u *Universe, name, kind string, e Element) error {
	// 1) Validate inputs.
	if u == nil {
		return ErrNilUniverse
	}
	if e == nil {
		return ErrNilElement
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	// 2) Generate an anonymous name when the caller did not supply one.
	//    uuid gives collision-free identity without a universe-wide counter.
	if name == "" {
		name = kind + "-" + uuid.NewString()[:8]
		for _, taken := u.byName[name]; taken; _, taken = u.byName[name] {
			name = kind + "-" + uuid.NewString()[:8]
		}
	}

	// 3) Reject collisions: identity is never reused for another element.
	if _, taken := u.byName[name]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	// 4) Bind identity and register.
	b := e.base()
	b.name = name
	b.u = u
	u.byName[name] = e
	u.elements = append(u.elements, e)

	return nil
}

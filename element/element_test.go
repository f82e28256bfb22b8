package element_test

import (
	"testing"

	"github.com/katalvlaran/provar/element"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUniverse_DuplicateName verifies that reusing a name within one
// universe fails with ErrDuplicateName.
func TestUniverse_DuplicateName(t *testing.T) {
	u := element.NewUniverse()

	_, err := element.NewFlip(u, "coin", 0.5)
	require.NoError(t, err)

	_, err = element.NewFlip(u, "coin", 0.5)
	assert.ErrorIs(t, err, element.ErrDuplicateName, "name reuse must be rejected")
}

// TestUniverse_AnonymousNames verifies that elements constructed without a
// name receive distinct generated identities.
func TestUniverse_AnonymousNames(t *testing.T) {
	u := element.NewUniverse()

	a, err := element.NewFlip(u, "", 0.5)
	require.NoError(t, err)
	b, err := element.NewFlip(u, "", 0.5)
	require.NoError(t, err)

	assert.NotEmpty(t, a.Name())
	assert.NotEmpty(t, b.Name())
	assert.NotEqual(t, a.Name(), b.Name(), "generated names must be distinct")
}

// TestUniverse_LookupAncestors verifies that child scopes resolve names
// from ancestor scopes but not the reverse.
func TestUniverse_LookupAncestors(t *testing.T) {
	parent := element.NewUniverse()
	child := element.NewUniverse(element.WithParent(parent))

	top, err := element.NewFlip(parent, "top", 0.5)
	require.NoError(t, err)
	inner, err := element.NewFlip(child, "inner", 0.5)
	require.NoError(t, err)

	got, ok := child.Lookup("top")
	assert.True(t, ok, "child must resolve ancestor names")
	assert.Same(t, element.Element(top), got)

	_, ok = parent.Lookup("inner")
	assert.False(t, ok, "parent must not resolve child names")
	_ = inner
}

// TestUniverse_Observe verifies the evidence registry and the
// foreign-element guard.
func TestUniverse_Observe(t *testing.T) {
	u := element.NewUniverse()
	other := element.NewUniverse()

	f, err := element.NewFlip(u, "f", 0.5)
	require.NoError(t, err)

	require.NoError(t, u.Observe(f, true))
	v, ok := u.Observation(f)
	assert.True(t, ok)
	assert.Equal(t, true, v)

	assert.Len(t, u.Observed(), 1)

	u.Unobserve(f)
	_, ok = u.Observation(f)
	assert.False(t, ok, "unobserve must clear the evidence")

	assert.ErrorIs(t, other.Observe(f, true), element.ErrForeignElement)
}

// TestUniverse_SeedDeterminism verifies that two universes with the same
// seed produce identical draw sequences.
func TestUniverse_SeedDeterminism(t *testing.T) {
	mkSequence := func(seed uint64) []bool {
		u := element.NewUniverse(element.WithSeed(seed))
		f, err := element.NewFlip(u, "f", 0.5)
		require.NoError(t, err)
		out := make([]bool, 32)
		for i := range out {
			out[i] = element.Regenerate(f).(bool)
		}

		return out
	}

	assert.Equal(t, mkSequence(42), mkSequence(42), "same seed, same draws")
	assert.NotEqual(t, mkSequence(42), mkSequence(43), "different seeds should diverge")
}

// TestGenerateValue_ReferentialConsistency verifies that equal randomness
// yields equal values.
func TestGenerateValue_ReferentialConsistency(t *testing.T) {
	u := element.NewUniverse(element.WithSeed(1))
	f, err := element.NewFlip(u, "f", 0.3)
	require.NoError(t, err)

	r := f.GenerateRandomness()
	assert.Equal(t, f.GenerateValue(r), f.GenerateValue(r))
}

// TestGenerate_DiamondSharedParent verifies that Generate resamples a
// shared ancestor exactly once per call, keeping diamonds consistent.
func TestGenerate_DiamondSharedParent(t *testing.T) {
	u := element.NewUniverse(element.WithSeed(5))
	coin, err := element.NewFlip(u, "coin", 0.5)
	require.NoError(t, err)

	left, err := element.NewApply(u, "left", func(vs []element.Value) element.Value {
		return vs[0].(bool)
	}, coin)
	require.NoError(t, err)
	right, err := element.NewApply(u, "right", func(vs []element.Value) element.Value {
		return !vs[0].(bool)
	}, coin)
	require.NoError(t, err)
	xor, err := element.NewApply(u, "xor", func(vs []element.Value) element.Value {
		return vs[0].(bool) != vs[1].(bool)
	}, left, right)
	require.NoError(t, err)

	// left and right always disagree when they read the same coin draw.
	for i := 0; i < 50; i++ {
		require.NoError(t, element.Generate(xor))
		assert.Equal(t, true, xor.Current(), "diamond must read one coin draw")
	}
}

// TestTopoSort_ParentsFirst verifies that dependents follow their parents.
func TestTopoSort_ParentsFirst(t *testing.T) {
	u := element.NewUniverse()
	a, err := element.NewFlip(u, "a", 0.5)
	require.NoError(t, err)
	b, err := element.NewApply(u, "b", func(vs []element.Value) element.Value { return vs[0] }, a)
	require.NoError(t, err)

	order, err := element.TopoSort(b)
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.Same(t, element.Element(a), order[0])
	assert.Same(t, element.Element(b), order[1])

	assert.NoError(t, element.CheckAcyclic(b))
}

// TestSetRandomness_And_Restore verifies the sampler-facing state helpers.
func TestSetRandomness_And_Restore(t *testing.T) {
	u := element.NewUniverse(element.WithSeed(9))
	f, err := element.NewFlip(u, "f", 0.5)
	require.NoError(t, err)

	v := element.SetRandomness(f, true)
	assert.Equal(t, true, v)
	assert.Equal(t, true, f.Current())

	r, ok := element.CurrentRandomness(f)
	assert.True(t, ok)
	assert.Equal(t, true, r)

	element.Restore(f, false, false)
	assert.Equal(t, false, f.Current())

	element.ForceValue(f, true)
	assert.Equal(t, true, f.Current())
}

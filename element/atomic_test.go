package element_test

import (
	"testing"

	"github.com/katalvlaran/provar/element"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// densityTolerance bounds floating error when summing densities over a
// finite support.
const densityTolerance = 1e-12

// TestDensity_SumsToOne verifies that summing density over the enumerated
// support yields 1 for every finite built-in element.
func TestDensity_SumsToOne(t *testing.T) {
	u := element.NewUniverse(element.WithSeed(3))

	flip, err := element.NewFlip(u, "flip", 0.37)
	require.NoError(t, err)
	sel, err := element.NewSelect(u, "sel", []element.Value{0, 1, 2}, []float64{2, 3, 5})
	require.NoError(t, err)
	konst, err := element.NewConstant(u, "c", "fixed")
	require.NoError(t, err)

	for _, e := range []element.Element{flip, sel, konst} {
		en, ok := e.(element.Enumerable)
		require.True(t, ok, "%s must enumerate", e.Name())
		domain, err := en.MakeValues()
		require.NoError(t, err)

		total := 0.0
		for _, v := range domain {
			total += e.Density(v)
		}
		assert.InDelta(t, 1.0, total, densityTolerance, "%s density must sum to 1", e.Name())
	}
}

// TestDensity_OutsideSupport verifies that density outside the support is
// 0, never an error.
func TestDensity_OutsideSupport(t *testing.T) {
	u := element.NewUniverse()

	flip, err := element.NewFlip(u, "flip", 0.5)
	require.NoError(t, err)
	sel, err := element.NewSelect(u, "sel", []element.Value{"a", "b"}, []float64{1, 1})
	require.NoError(t, err)
	norm, err := element.NewNormal(u, "n", 0, 1)
	require.NoError(t, err)
	uni, err := element.NewUniform(u, "u", 0, 1)
	require.NoError(t, err)

	assert.Zero(t, flip.Density("not a bool"))
	assert.Zero(t, sel.Density("z"))
	assert.Zero(t, norm.Density("not a float"))
	assert.Zero(t, uni.Density(2.5), "outside the interval")
	assert.Zero(t, uni.Density(nil))
}

// TestSelect_NormalizesWeights verifies that selection weights are
// normalized once at construction.
func TestSelect_NormalizesWeights(t *testing.T) {
	u := element.NewUniverse()
	sel, err := element.NewSelect(u, "sel", []element.Value{0, 1, 2}, []float64{0.2, 0.3, 0.5})
	require.NoError(t, err)

	assert.InDelta(t, 0.2, sel.Density(0), densityTolerance)
	assert.InDelta(t, 0.3, sel.Density(1), densityTolerance)
	assert.InDelta(t, 0.5, sel.Density(2), densityTolerance)
}

// TestSelect_Validation covers malformed selection construction.
func TestSelect_Validation(t *testing.T) {
	u := element.NewUniverse()

	_, err := element.NewSelect(u, "", nil, nil)
	assert.ErrorIs(t, err, element.ErrNoValues)

	_, err = element.NewSelect(u, "", []element.Value{1, 2}, []float64{1})
	assert.ErrorIs(t, err, element.ErrBadWeights)

	_, err = element.NewSelect(u, "", []element.Value{1, 2}, []float64{1, -1})
	assert.ErrorIs(t, err, element.ErrBadWeights)

	_, err = element.NewSelect(u, "", []element.Value{1, 2}, []float64{0, 0})
	assert.ErrorIs(t, err, element.ErrBadWeights)

	_, err = element.NewSelect(u, "", []element.Value{1, 1}, []float64{1, 1})
	assert.ErrorIs(t, err, element.ErrDuplicateValue)
}

// TestAtomic_ParameterValidation covers out-of-range distribution
// parameters.
func TestAtomic_ParameterValidation(t *testing.T) {
	u := element.NewUniverse()

	_, err := element.NewFlip(u, "", 1.5)
	assert.ErrorIs(t, err, element.ErrBadProbability)

	_, err = element.NewFlip(u, "", -0.1)
	assert.ErrorIs(t, err, element.ErrBadProbability)

	_, err = element.NewNormal(u, "", 0, 0)
	assert.ErrorIs(t, err, element.ErrBadParameter)

	_, err = element.NewUniform(u, "", 1, 1)
	assert.ErrorIs(t, err, element.ErrBadParameter)

	_, err = element.NewExponential(u, "", 0)
	assert.ErrorIs(t, err, element.ErrBadParameter)
}

// TestFlip_EmpiricalFrequency verifies that repeated generation tracks the
// configured probability under a fixed seed.
func TestFlip_EmpiricalFrequency(t *testing.T) {
	u := element.NewUniverse(element.WithSeed(11))
	f, err := element.NewFlip(u, "f", 0.25)
	require.NoError(t, err)

	const n = 20000
	hits := 0
	for i := 0; i < n; i++ {
		if element.Regenerate(f).(bool) {
			hits++
		}
	}
	assert.InDelta(t, 0.25, float64(hits)/n, 0.02)
}

// TestConstant_Deterministic verifies the degenerate generation protocol.
func TestConstant_Deterministic(t *testing.T) {
	u := element.NewUniverse()
	c, err := element.NewConstant(u, "c", 7)
	require.NoError(t, err)

	assert.Equal(t, element.Unit{}, c.GenerateRandomness())
	assert.Equal(t, 7, element.Regenerate(c))
	assert.Equal(t, 1.0, c.Density(7))
	assert.Equal(t, 0.0, c.Density(8))
}

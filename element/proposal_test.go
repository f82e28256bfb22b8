package element_test

import (
	"testing"

	"github.com/katalvlaran/provar/element"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNextRandomness_DefaultSymmetric verifies that any element without a
// Proposer override gets the default kernel: a fresh resample with both
// ratios exactly 1.
func TestNextRandomness_DefaultSymmetric(t *testing.T) {
	u := element.NewUniverse(element.WithSeed(6))
	f, err := element.NewFlip(u, "f", 0.5)
	require.NoError(t, err)
	n, err := element.NewNormal(u, "n", 0, 1)
	require.NoError(t, err)

	for _, e := range []element.Element{f, n} {
		r0 := e.GenerateRandomness()
		prop := element.NextRandomness(e, r0)
		assert.Equal(t, 1.0, prop.TransitionRatio, "%s default transition ratio", e.Name())
		assert.Equal(t, 1.0, prop.ModelRatio, "%s default model ratio", e.Name())
		assert.NotNil(t, prop.Randomness)
	}
}

// TestExponential_AsymmetricProposal verifies the multiplicative
// random-walk kernel: TransitionRatio(r0→r1) is exactly the reciprocal of
// the reverse move's ratio, and ModelRatio is the density ratio.
func TestExponential_AsymmetricProposal(t *testing.T) {
	u := element.NewUniverse(element.WithSeed(13))
	e, err := element.NewExponential(u, "e", 1.5)
	require.NoError(t, err)

	r0 := 2.0
	prop := e.NextRandomness(r0)
	r1, ok := prop.Randomness.(float64)
	require.True(t, ok)
	require.Greater(t, r1, 0.0)

	// Forward ratio is r1/r0 by the kernel's Jacobian.
	assert.InEpsilon(t, r1/r0, prop.TransitionRatio, 1e-12)

	// Reverse-proposal computation: q(r1→r0) has ratio r0/r1, the exact
	// reciprocal of the forward ratio.
	assert.InEpsilon(t, 1.0/(r0/r1), prop.TransitionRatio, 1e-12)

	assert.InEpsilon(t, e.Density(r1)/e.Density(r0), prop.ModelRatio, 1e-12)
}

// TestExponential_ProposalRatiosKeptSeparate verifies that the two ratio
// terms arrive unmultiplied, for callers that need them independently.
func TestExponential_ProposalRatiosKeptSeparate(t *testing.T) {
	u := element.NewUniverse(element.WithSeed(14))
	e, err := element.NewExponential(u, "e", 0.7)
	require.NoError(t, err)

	prop := e.NextRandomness(3.0)
	r1 := prop.Randomness.(float64)

	assert.NotEqual(t, prop.TransitionRatio*prop.ModelRatio, prop.TransitionRatio,
		"model ratio must not be folded into the transition ratio")
	assert.InEpsilon(t, r1/3.0, prop.TransitionRatio, 1e-12)
}

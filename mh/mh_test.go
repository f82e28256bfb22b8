package mh_test

import (
	"testing"

	"github.com/katalvlaran/provar/element"
	"github.com/katalvlaran/provar/mh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// chainTolerance bounds Monte-Carlo error for the chain lengths used here.
	chainTolerance = 0.02

	// expNeg1 is e⁻¹, the prior probability that an Exponential(1) draw
	// exceeds 1.
	expNeg1 = 0.36787944117144233
)

// rainWet builds the two-node evidence model: rain with prior 0.3, and a
// wetness node that is Flip(0.9) when raining and Flip(0.2) otherwise.
func rainWet(t *testing.T, u *element.Universe) (rain, wet element.Element) {
	t.Helper()

	r, err := element.NewFlip(u, "rain", 0.3)
	require.NoError(t, err)
	w, err := element.NewChain(u, "wet", r, func(v element.Value) element.Element {
		p := 0.2
		if v.(bool) {
			p = 0.9
		}
		sub, err := element.NewFlip(u, "", p)
		if err != nil {
			panic(err)
		}

		return sub
	}, element.WithSmallSupportHint())
	require.NoError(t, err)

	return r, w
}

// TestPosterior_MatchesExact verifies the chain's estimate against the
// exact posterior P(rain | wet) = 0.27/0.41.
func TestPosterior_MatchesExact(t *testing.T) {
	u := element.NewUniverse(element.WithSeed(51))
	rain, wet := rainWet(t, u)
	require.NoError(t, u.Observe(wet, true))

	s, err := mh.New(mh.WithBurnIn(500), mh.WithSamples(20000))
	require.NoError(t, err)

	dist, err := s.Posterior(rain)
	require.NoError(t, err)
	require.Len(t, dist, 2)

	assert.Equal(t, true, dist[0].Value)
	assert.InDelta(t, 0.27/0.41, dist[0].Prob, chainTolerance)
	assert.InDelta(t, 0.14/0.41, dist[1].Prob, chainTolerance)
}

// TestPosterior_NoEvidence verifies that without observations the chain
// tracks the prior.
func TestPosterior_NoEvidence(t *testing.T) {
	u := element.NewUniverse(element.WithSeed(52))
	rain, _ := rainWet(t, u)

	s, err := mh.New(mh.WithBurnIn(200), mh.WithSamples(20000))
	require.NoError(t, err)

	dist, err := s.Posterior(rain)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, dist[0].Prob, chainTolerance)
}

// TestPosterior_DeterministicEvidence verifies rollback and downstream
// recomputation on hard evidence: observing the negation pins the parent
// exactly, because every move to the contradicting state is rejected.
func TestPosterior_DeterministicEvidence(t *testing.T) {
	u := element.NewUniverse(element.WithSeed(53))
	a, err := element.NewFlip(u, "a", 0.5)
	require.NoError(t, err)
	not, err := element.NewApply(u, "not", func(vs []element.Value) element.Value {
		return !vs[0].(bool)
	}, a)
	require.NoError(t, err)
	require.NoError(t, u.Observe(not, false))

	s, err := mh.New(mh.WithBurnIn(100), mh.WithSamples(1000))
	require.NoError(t, err)

	dist, err := s.Posterior(a)
	require.NoError(t, err)
	assert.Equal(t, true, dist[0].Value)
	assert.Equal(t, 1.0, dist[0].Prob, "contradicting moves must all be rejected")
	assert.Equal(t, 0.0, dist[1].Prob)
}

// TestPosterior_AsymmetricKernel verifies mixing of a continuous site with
// its own Proposer kernel under soft evidence. The rate is Exponential(1),
// busy is the indicator rate > 1, and the alarm is Flip(0.95) when busy and
// Flip(0.1) otherwise, observed true. Exactly:
//
//	P(busy | alarm) = 0.95·e⁻¹ / (0.95·e⁻¹ + 0.1·(1−e⁻¹)) ≈ 0.8469
func TestPosterior_AsymmetricKernel(t *testing.T) {
	u := element.NewUniverse(element.WithSeed(54))
	rate, err := element.NewExponential(u, "rate", 1.0)
	require.NoError(t, err)
	busy, err := element.NewApply(u, "busy", func(vs []element.Value) element.Value {
		return vs[0].(float64) > 1.0
	}, rate)
	require.NoError(t, err)
	alarm, err := element.NewChain(u, "alarm", busy, func(v element.Value) element.Element {
		p := 0.1
		if v.(bool) {
			p = 0.95
		}
		sub, err := element.NewFlip(u, "", p)
		if err != nil {
			panic(err)
		}

		return sub
	}, element.WithSmallSupportHint())
	require.NoError(t, err)
	require.NoError(t, u.Observe(alarm, true))

	s, err := mh.New(mh.WithBurnIn(1000), mh.WithSamples(50000))
	require.NoError(t, err)

	// The query cannot enumerate (continuous ancestor), so outcomes arrive
	// in formatted order: false before true.
	dist, err := s.Posterior(busy)
	require.NoError(t, err)
	require.Len(t, dist, 2)
	assert.Equal(t, true, dist[1].Value)

	exp := 0.95 * expNeg1 / (0.95*expNeg1 + 0.1*(1-expNeg1))
	assert.InDelta(t, exp, dist[1].Prob, 0.04)
}

// TestSampler_Validation covers construction and query guards.
func TestSampler_Validation(t *testing.T) {
	_, err := mh.New(mh.WithSamples(0))
	assert.ErrorIs(t, err, mh.ErrBadSamples)
	_, err = mh.New(mh.WithBurnIn(-1))
	assert.ErrorIs(t, err, mh.ErrBadSamples)

	s, err := mh.New()
	require.NoError(t, err)
	_, err = s.Posterior(nil)
	assert.ErrorIs(t, err, mh.ErrNilQuery)
}

// TestSampler_NoProposable verifies the fully-observed degenerate case.
func TestSampler_NoProposable(t *testing.T) {
	u := element.NewUniverse(element.WithSeed(55))
	f, err := element.NewFlip(u, "f", 0.5)
	require.NoError(t, err)
	require.NoError(t, u.Observe(f, true))

	s, err := mh.New()
	require.NoError(t, err)
	_, err = s.Posterior(f)
	assert.ErrorIs(t, err, mh.ErrNoProposable)
}

package tensor

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/xx-fighting/tntorch/internal/dense"
	"github.com/xx-fighting/tntorch/internal/linalg"
)

func TestRoundTTIdempotent(t *testing.T) {
	a := hilbert(6, 6, 6)
	tt, err := FromDense(a, Options{})
	require.NoError(t, err)

	require.NoError(t, tt.RoundTT(RoundOptions{RanksTT: []int{3}}))
	first := tt.Full()
	ranks := tt.RanksTT()

	require.NoError(t, tt.RoundTT(RoundOptions{RanksTT: []int{3}}))
	assert.Equal(t, ranks, tt.RanksTT())
	assert.InDelta(t, 0, relErr(first, tt.Full()), 1e-10)
}

func TestRoundTTEpsBound(t *testing.T) {
	a := hilbert(8, 8, 8)
	tt, err := FromDense(a, Options{})
	require.NoError(t, err)
	before := tt.NumCoef()

	require.NoError(t, tt.RoundTT(RoundOptions{Eps: 1e-3}))
	assert.LessOrEqual(t, relErr(a, tt.Full()), 1e-3)
	assert.Less(t, tt.NumCoef(), before)
}

func TestRoundTTStripsInflatedRanks(t *testing.T) {
	// A bond of 5 between two size-4 modes is redundant: rounding with no
	// caps and no budget still reveals the true rank.
	tt, err := RandTT(dense.Shape{4, 4}, []int{5}, 9)
	require.NoError(t, err)
	want := tt.Full()

	require.NoError(t, tt.RoundTT(RoundOptions{}))
	assert.LessOrEqual(t, tt.RanksTT()[1], 4)
	assert.InDelta(t, 0, relErr(want, tt.Full()), 1e-11)
}

func TestRoundTTKeepsTuckerFactors(t *testing.T) {
	a := hilbert(6, 6, 6)
	ht, err := FromDense(a, Options{RanksTucker: []int{4}})
	require.NoError(t, err)

	require.NoError(t, ht.RoundTT(RoundOptions{RanksTT: []int{2}}))
	assert.Equal(t, "TT-Tucker", ht.Format())
	assert.Equal(t, []int{4, 4, 4}, ht.RanksTucker())
	assert.Equal(t, []int{1, 2, 2, 1}, ht.RanksTT())
}

func TestRoundRejectsCP(t *testing.T) {
	cp, err := RandCP(dense.Shape{3, 3, 3}, 2, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, cp.RoundTT(RoundOptions{}), ErrInvalidRequest)
	assert.ErrorIs(t, cp.RoundTucker(RoundOptions{}), ErrInvalidRequest)
	assert.ErrorIs(t, cp.Round(RoundOptions{}), ErrInvalidRequest)
	assert.True(t, cp.IsCP(), "rejected rounding must leave the tensor untouched")
}

func TestCPRoundsAfterConversion(t *testing.T) {
	cp, err := RandCP(dense.Shape{4, 4, 4}, 6, 3)
	require.NoError(t, err)
	want := cp.Full()

	tt, err := CPToTT(cp)
	require.NoError(t, err)
	require.NoError(t, tt.RoundTT(RoundOptions{Eps: 1e-12}))

	// The diagonal embedding's bond of 6 exceeds what two size-4 modes can
	// carry, so rounding must shrink it.
	assert.LessOrEqual(t, tt.RanksTT()[1], 4)
	assert.InDelta(t, 0, relErr(want, tt.Full()), 1e-10)
}

// randUnit returns a random unit vector of length n.
func randUnit(n int, rng *rand.Rand) []float64 {
	v := make([]float64, n)
	sum := 0.0
	for i := range v {
		v[i] = rng.NormFloat64()
		sum += v[i] * v[i]
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
	return v
}

func TestRoundTuckerSubspace(t *testing.T) {
	// Five separable terms with well-gapped weights: the mode subspaces are
	// exactly 5-dimensional, so a rank-5 Tucker captures them exactly and
	// rounding to 2 must land in the top-2 singular subspace of each
	// unfolding of the original array.
	rng := rand.New(rand.NewSource(17))
	a := dense.New(dense.Shape{6, 6, 6})
	for _, w := range []float64{10, 5, 1, 0.5, 0.1} {
		addSeparable(a, w, randUnit(6, rng), randUnit(6, rng), randUnit(6, rng))
	}

	tk, err := FromDense(a, Options{RanksTucker: []int{5}})
	require.NoError(t, err)
	require.NoError(t, tk.RoundTucker(RoundOptions{RanksTucker: []int{2}}))
	assert.Equal(t, []int{2, 2, 2}, tk.RanksTucker())

	for k := 0; k < 3; k++ {
		f, err := linalg.TruncatedSVD(a.Unfold(k), 2, 0)
		require.NoError(t, err)
		top2 := f.U

		uNew := tk.Factor(k)
		var tmp, proj, res mat.Dense
		tmp.Mul(top2.T(), uNew)
		proj.Mul(top2, &tmp)
		res.Sub(uNew, &proj)
		assert.InDelta(t, 0, mat.Norm(&res, 2), 1e-8, "mode %d", k)
	}
}

func TestRoundTuckerEps(t *testing.T) {
	a := hilbert(8, 8, 8)
	tk, err := FromDense(a, Options{RanksTucker: []int{-1}})
	require.NoError(t, err)
	wide, _ := tk.Factor(0).Dims()
	require.Equal(t, 8, wide)

	require.NoError(t, tk.RoundTucker(RoundOptions{Eps: 1e-2}))
	assert.LessOrEqual(t, relErr(a, tk.Full()), 1e-2)
	for k := 0; k < 3; k++ {
		_, cols := tk.Factor(k).Dims()
		assert.Less(t, cols, 8, "mode %d kept its full width", k)
	}
}

func TestRoundCombined(t *testing.T) {
	a := hilbert(6, 6, 6)
	ht, err := FromDense(a, Options{RanksTucker: []int{-1}})
	require.NoError(t, err)

	require.NoError(t, ht.Round(RoundOptions{RanksTucker: []int{3}, RanksTT: []int{2}}))
	assert.Equal(t, []int{3, 3, 3}, ht.RanksTucker())
	ranks := ht.RanksTT()
	assert.LessOrEqual(t, ranks[1], 2)
	assert.LessOrEqual(t, ranks[2], 2)
}

func TestRoundTuckerNeedsFactors(t *testing.T) {
	tt, err := RandTT(dense.Shape{4, 4, 4}, []int{2}, 5)
	require.NoError(t, err)
	assert.ErrorIs(t, tt.RoundTucker(RoundOptions{}), ErrInvalidRequest)
}

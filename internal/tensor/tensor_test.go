package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xx-fighting/tntorch/internal/dense"
)

// hilbert builds the smooth array a[i...] = 1/(1+i0+i1+...), a standard
// low-rank fixture whose unfoldings have rapidly decaying spectra.
func hilbert(shape ...int) *dense.Dense {
	d := dense.New(dense.Shape(shape))
	data := d.Data()
	idx := make([]int, len(shape))
	for p := range data {
		sum := 1.0
		for _, i := range idx {
			sum += float64(i)
		}
		data[p] = 1 / sum
		for k := len(idx) - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < shape[k] {
				break
			}
			idx[k] = 0
		}
	}
	return d
}

// addSeparable accumulates w * v0 ⊗ v1 ⊗ ... into d.
func addSeparable(d *dense.Dense, w float64, vecs ...[]float64) {
	term := []float64{w}
	for _, v := range vecs {
		next := make([]float64, len(term)*len(v))
		for i, t := range term {
			for j, x := range v {
				next[i*len(v)+j] = t * x
			}
		}
		term = next
	}
	data := d.Data()
	for i := range data {
		data[i] += term[i]
	}
}

func relErr(want, got *dense.Dense) float64 {
	w, g := want.Data(), got.Data()
	num, den := 0.0, 0.0
	for i := range w {
		d := w[i] - g[i]
		num += d * d
		den += w[i] * w[i]
	}
	if den == 0 {
		if num == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Sqrt(num / den)
}

func TestQueriesTT(t *testing.T) {
	a := hilbert(4, 5, 6)
	tt, err := FromDense(a, Options{})
	require.NoError(t, err)

	assert.False(t, tt.IsCP())
	assert.False(t, tt.HasTucker())
	assert.Equal(t, "TT", tt.Format())
	assert.Equal(t, 3, tt.Dim())
	assert.Equal(t, dense.Shape{4, 5, 6}, tt.Shape())
	assert.Equal(t, []int{4, 5, 6}, tt.RanksTucker())
	assert.Equal(t, 0, tt.RankCP())
	assert.Equal(t, 4*5*6, tt.NumElements())

	ranks := tt.RanksTT()
	require.Len(t, ranks, 4)
	assert.Equal(t, 1, ranks[0])
	assert.Equal(t, 1, ranks[3])
	assert.LessOrEqual(t, ranks[1], 4)
	assert.LessOrEqual(t, ranks[2], 6)

	coef := 0
	for k := 0; k < tt.Dim(); k++ {
		coef += tt.Core(k).NumElements()
	}
	assert.Equal(t, coef, tt.NumCoef())
	assert.InDelta(t, float64(tt.NumElements())/float64(coef), tt.CompressionRatio(), 1e-12)
}

func TestQueriesCP(t *testing.T) {
	cp, err := RandCP(dense.Shape{3, 4, 5}, 2, 7)
	require.NoError(t, err)

	assert.True(t, cp.IsCP())
	assert.Equal(t, "CP", cp.Format())
	assert.Equal(t, 2, cp.RankCP())
	assert.Equal(t, dense.Shape{3, 4, 5}, cp.Shape())
	assert.Equal(t, []int{1, 2, 2, 1}, cp.RanksTT())
	assert.Equal(t, (3+4+5)*2, cp.NumCoef())
}

func TestQueriesHybrid(t *testing.T) {
	a := hilbert(6, 6, 6)
	ht, err := FromDense(a, Options{RanksTucker: []int{3}, RanksTT: []int{2}})
	require.NoError(t, err)

	assert.True(t, ht.HasTucker())
	assert.Equal(t, "TT-Tucker", ht.Format())
	assert.Equal(t, dense.Shape{6, 6, 6}, ht.Shape())
	assert.Equal(t, []int{3, 3, 3}, ht.RanksTucker())
	assert.Equal(t, []int{1, 2, 2, 1}, ht.RanksTT())
	for k := 0; k < 3; k++ {
		rows, cols := ht.Factor(k).Dims()
		assert.Equal(t, 6, rows)
		assert.Equal(t, 3, cols)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := hilbert(3, 3, 3)
	tt, err := FromDense(a, Options{})
	require.NoError(t, err)

	clone := tt.Clone()
	before := clone.Full()
	tt.Core(0).Data()[0] += 10

	assert.InDelta(t, 0, relErr(before, clone.Full()), 1e-15)
	assert.Greater(t, relErr(before, tt.Full()), 1e-3)
}

func TestString(t *testing.T) {
	tt, err := RandTT(dense.Shape{4, 4}, []int{2}, 1)
	require.NoError(t, err)
	assert.Equal(t, "2D TT tensor [4 4]", tt.String())

	cp, err := RandCP(dense.Shape{4, 4}, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, "2D CP tensor [4 4]", cp.String())
}

func TestDiagram(t *testing.T) {
	a := hilbert(6, 6, 6)
	ht, err := FromDense(a, Options{RanksTucker: []int{3}, RanksTT: []int{2}})
	require.NoError(t, err)

	dia := ht.Diagram()
	assert.Contains(t, dia, "TT-Tucker")
	assert.Contains(t, dia, "6")
	assert.Contains(t, dia, "3")
	assert.Contains(t, dia, "(0)")
	assert.Contains(t, dia, "(2)")
	assert.Contains(t, dia, "/ \\")
}

func TestValidateRejectsBadChains(t *testing.T) {
	// Bond mismatch between adjacent cores.
	_, err := FromTTCores([]*dense.Dense{
		dense.New(dense.Shape{1, 3, 2}),
		dense.New(dense.Shape{3, 3, 1}),
	})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	// Boundary rank not 1.
	_, err = FromTTCores([]*dense.Dense{
		dense.New(dense.Shape{2, 3, 1}),
		dense.New(dense.Shape{1, 3, 1}),
	})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	// CP factors with differing ranks.
	_, err = FromCPFactors([]*dense.Dense{
		dense.New(dense.Shape{3, 2}),
		dense.New(dense.Shape{3, 4}),
	})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	// Wrong core arity.
	_, err = FromTTCores([]*dense.Dense{dense.New(dense.Shape{3, 2})})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xx-fighting/tntorch/internal/dense"
	"github.com/xx-fighting/tntorch/internal/tensor"
)

func fromValues(t *testing.T, data []float64, shape dense.Shape) *dense.Dense {
	t.Helper()
	d, err := dense.FromSlice(data, shape)
	require.NoError(t, err)
	return d
}

func TestRelativeError(t *testing.T) {
	want := fromValues(t, []float64{3, 4}, dense.Shape{2})
	same := fromValues(t, []float64{3, 4}, dense.Shape{2})
	zero := fromValues(t, []float64{0, 0}, dense.Shape{2})

	got, err := RelativeError(want, same)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = RelativeError(want, zero)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-15)
}

func TestRelativeErrorZeroReference(t *testing.T) {
	zero := fromValues(t, []float64{0, 0}, dense.Shape{2})
	other := fromValues(t, []float64{1, 0}, dense.Shape{2})

	got, err := RelativeError(zero, zero.Clone())
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = RelativeError(zero, other)
	require.NoError(t, err)
	assert.True(t, math.IsInf(got, 1))
}

func TestRMSE(t *testing.T) {
	want := fromValues(t, []float64{0, 0, 0, 0}, dense.Shape{2, 2})
	got := fromValues(t, []float64{2, 2, 2, 2}, dense.Shape{2, 2})

	v, err := RMSE(want, got)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, v, 1e-15)
}

func TestRSquared(t *testing.T) {
	want := fromValues(t, []float64{1, 3}, dense.Shape{2})

	v, err := RSquared(want, want.Clone())
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	mean := fromValues(t, []float64{2, 2}, dense.Shape{2})
	v, err = RSquared(want, mean)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, v, 1e-15)

	flipped := fromValues(t, []float64{3, 1}, dense.Shape{2})
	v, err = RSquared(want, flipped)
	require.NoError(t, err)
	assert.InDelta(t, -3.0, v, 1e-15)
}

func TestShapeMismatch(t *testing.T) {
	a := fromValues(t, []float64{1, 2, 3, 4, 5, 6}, dense.Shape{2, 3})
	b := fromValues(t, []float64{1, 2, 3, 4, 5, 6}, dense.Shape{3, 2})

	_, err := RelativeError(a, b)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = RMSE(a, b)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = RSquared(a, b)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestCompressionFidelity(t *testing.T) {
	// The reported relative error of a compressed-then-reconstructed array
	// stays within the decomposition's budget.
	a := dense.New(dense.Shape{8, 8, 8})
	data := a.Data()
	idx := 0
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			for k := 0; k < 8; k++ {
				data[idx] = 1 / (1 + float64(i+j+k))
				idx++
			}
		}
	}

	tt, err := tensor.FromDense(a, tensor.Options{Eps: 1e-3})
	require.NoError(t, err)

	rel, err := RelativeError(a, tt.Full())
	require.NoError(t, err)
	assert.LessOrEqual(t, rel, 1e-3)

	r2, err := RSquared(a, tt.Full())
	require.NoError(t, err)
	assert.Greater(t, r2, 0.99)
}

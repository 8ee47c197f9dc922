package tensor_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xx-fighting/tntorch/metrics"
	"github.com/xx-fighting/tntorch/tensor"
)

// waveField fills a 3D array with a smooth product of decaying waves, a
// typical compression-friendly input.
func waveField(n int) *tensor.Dense {
	d := tensor.NewDense(tensor.Shape{n, n, n})
	data := d.Data()
	idx := 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				data[idx] = 1.0 / (1.0 + float64(i+j+k))
				idx++
			}
		}
	}
	return d
}

func TestCompressReconstruct(t *testing.T) {
	a := waveField(10)
	tt, err := tensor.FromDense(a, tensor.Options{Eps: 1e-4})
	require.NoError(t, err)

	assert.Greater(t, tt.CompressionRatio(), 1.0)

	rel, err := metrics.RelativeError(a, tt.Full())
	require.NoError(t, err)
	assert.LessOrEqual(t, rel, 1e-4)
}

func TestFormatSelection(t *testing.T) {
	a := waveField(6)
	cases := []struct {
		name   string
		opts   tensor.Options
		format string
	}{
		{"default is exact TT", tensor.Options{}, "TT"},
		{"tt ranks", tensor.Options{RanksTT: []int{3}}, "TT"},
		{"tucker ranks", tensor.Options{RanksTucker: []int{3}}, "TT-Tucker"},
		{"eps alone", tensor.Options{Eps: 1e-3}, "TT-Tucker"},
		{"cp rank", tensor.Options{RankCP: 2, Seed: 1}, "CP"},
		{"cp with tucker", tensor.Options{RankCP: 2, RanksTucker: []int{3}, Seed: 1}, "CP-Tucker"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tt, err := tensor.FromDense(a, tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.format, tt.Format())
		})
	}
}

func TestInvalidRequestSurfaces(t *testing.T) {
	a := waveField(4)
	_, err := tensor.FromDense(a, tensor.Options{RankCP: 2, Eps: 1e-3})
	assert.True(t, errors.Is(err, tensor.ErrInvalidRequest))
}

func TestCPConversionWorkflow(t *testing.T) {
	cp, err := tensor.RandCP(tensor.Shape{5, 5, 5}, 8, 4)
	require.NoError(t, err)
	want := cp.Full()

	// CP admits no in-place rounding.
	require.Error(t, cp.RoundTT(tensor.RoundOptions{Eps: 1e-8}))

	tt, err := tensor.CPToTT(cp)
	require.NoError(t, err)
	require.NoError(t, tt.RoundTT(tensor.RoundOptions{Eps: 1e-10}))

	rel, err := metrics.RelativeError(want, tt.Full())
	require.NoError(t, err)
	assert.LessOrEqual(t, rel, 1e-9)
	assert.LessOrEqual(t, tt.RanksTT()[1], 5)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	a := waveField(8)
	src, err := tensor.FromDense(a, tensor.Options{Eps: 1e-6})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "wave.tt")
	require.NoError(t, tensor.Save(src, path))

	got, err := tensor.Load(path)
	require.NoError(t, err)
	assert.Equal(t, src.Format(), got.Format())
	assert.Equal(t, src.RanksTT(), got.RanksTT())

	rel, err := metrics.RelativeError(src.Full(), got.Full())
	require.NoError(t, err)
	assert.Zero(t, rel) // the file stores exact float64 bits
}

func TestConstructorsRoundTrip(t *testing.T) {
	ones, err := tensor.Ones(tensor.Shape{3, 3})
	require.NoError(t, err)
	assert.Equal(t, 1.0, ones.Full().At(2, 1))

	data := []float64{1, 2, 3, 4, 5, 6}
	d, err := tensor.FromSlice(data, tensor.Shape{2, 3})
	require.NoError(t, err)
	exact, err := tensor.FromDense(d, tensor.Options{})
	require.NoError(t, err)

	rel, err := metrics.RelativeError(d, exact.Full())
	require.NoError(t, err)
	assert.InDelta(t, 0, rel, 1e-13)
}

package tensor

import (
	"math/rand"

	"github.com/xx-fighting/tntorch/internal/dense"
	"github.com/xx-fighting/tntorch/internal/linalg"
	"github.com/xx-fighting/tntorch/internal/serialization"
	itensor "github.com/xx-fighting/tntorch/internal/tensor"
)

// Type aliases for the public API

// Tensor is a compressed multi-dimensional array in TT, CP, TT-Tucker or
// CP-Tucker form.
type Tensor = itensor.Tensor

// Options selects the decomposition FromDense performs.
type Options = itensor.Options

// RoundOptions configures in-place recompression.
type RoundOptions = itensor.RoundOptions

// Shape represents the mode sizes of an array.
// Example: Shape{32, 32, 32} is a 3D array with 32768 entries.
type Shape = dense.Shape

// Dense is an in-memory row-major multi-dimensional array: the input to
// FromDense and the output of (*Tensor).Full.
type Dense = dense.Dense

// Sentinel errors, matched with errors.Is.
var (
	// ErrInvalidRequest reports options that contradict each other or the
	// input's geometry.
	ErrInvalidRequest = itensor.ErrInvalidRequest

	// ErrShapeMismatch reports core or factor lists that do not chain.
	ErrShapeMismatch = itensor.ErrShapeMismatch

	// ErrFactorization reports an SVD that failed to converge.
	ErrFactorization = linalg.ErrFactorization
)

// FromDense compresses a dense array into the format the options select.
//
// Example:
//
//	t, err := tensor.FromDense(data, tensor.Options{RanksTT: []int{8}})
func FromDense(a *Dense, opts Options) (*Tensor, error) {
	return itensor.FromDense(a, opts)
}

// CPToTT converts a CP tensor into an equivalent TT tensor by an exact
// diagonal embedding, without forming the full array. The input is left
// unchanged; round the result to shrink the embedded bond ranks.
//
// Example:
//
//	tt, err := tensor.CPToTT(cp)
//	if err == nil {
//	    err = tt.RoundTT(tensor.RoundOptions{Eps: 1e-10})
//	}
func CPToTT(t *Tensor) (*Tensor, error) {
	return itensor.CPToTT(t)
}

// NewDense creates a zero-filled dense array.
func NewDense(shape Shape) *Dense {
	return dense.New(shape)
}

// FromSlice creates a dense array from row-major data. The slice length
// must match the shape's element count; the data is copied.
func FromSlice(data []float64, shape Shape) (*Dense, error) {
	return dense.FromSlice(data, shape)
}

// Randn creates a dense array with standard normal entries. A nil rng uses
// the global source.
func Randn(shape Shape, rng *rand.Rand) *Dense {
	return dense.Randn(shape, rng)
}

// RandTT builds a TT tensor with the given interior bond ranks and random
// cores, useful as a seed or test fixture.
//
// Example:
//
//	t, err := tensor.RandTT(tensor.Shape{16, 16, 16}, []int{4}, 1)
func RandTT(shape Shape, ranks []int, seed int64) (*Tensor, error) {
	return itensor.RandTT(shape, ranks, seed)
}

// RandCP builds a CP tensor of the given rank with random factors.
func RandCP(shape Shape, rank int, seed int64) (*Tensor, error) {
	return itensor.RandCP(shape, rank, seed)
}

// Zeros returns the zero tensor as a unit-rank TT chain.
func Zeros(shape Shape) (*Tensor, error) {
	return itensor.Zeros(shape)
}

// Ones returns the all-ones tensor as a unit-rank TT chain.
func Ones(shape Shape) (*Tensor, error) {
	return itensor.Ones(shape)
}

// FromTTCores wraps an explicit chain of 3-mode cores shaped
// (rank before, size, rank after) with unit boundary ranks.
func FromTTCores(cores []*Dense) (*Tensor, error) {
	return itensor.FromTTCores(cores)
}

// FromCPFactors wraps explicit 2-mode factor matrices, one per mode, all
// sharing a column count.
func FromCPFactors(factors []*Dense) (*Tensor, error) {
	return itensor.FromCPFactors(factors)
}

// Save writes the compressed tensor to a .tt file at path. Only cores and
// Tucker factors are stored; the full array is never formed. The file
// carries a checksum that Load verifies.
//
// Example:
//
//	if err := tensor.Save(t, "field.tt"); err != nil {
//	    log.Fatal(err)
//	}
func Save(t *Tensor, path string) error {
	return serialization.Save(t, path, nil)
}

// Load reads a compressed tensor from a .tt file written by Save.
func Load(path string) (*Tensor, error) {
	return serialization.Load(path)
}

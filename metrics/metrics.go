// Package metrics provides fidelity measures between dense arrays,
// typically an original and the reconstruction of its compressed form.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/xx-fighting/tntorch/internal/dense"
)

// ErrShapeMismatch reports arrays whose shapes differ.
var ErrShapeMismatch = errors.New("shape mismatch")

func diffNorm(want, got *dense.Dense) (float64, error) {
	if !want.Shape().Equal(got.Shape()) {
		return 0, fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, want.Shape(), got.Shape())
	}
	w, g := want.Data(), got.Data()
	sum := 0.0
	for i := range w {
		d := w[i] - g[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// RelativeError returns |want - got| / |want| in the Frobenius sense. A
// zero reference yields 0 for an exact match and +Inf otherwise.
func RelativeError(want, got *dense.Dense) (float64, error) {
	dn, err := diffNorm(want, got)
	if err != nil {
		return 0, err
	}
	wn := want.Norm()
	if wn == 0 {
		if dn == 0 {
			return 0, nil
		}
		return math.Inf(1), nil
	}
	return dn / wn, nil
}

// RMSE returns the root-mean-square entrywise error.
func RMSE(want, got *dense.Dense) (float64, error) {
	dn, err := diffNorm(want, got)
	if err != nil {
		return 0, err
	}
	return dn / math.Sqrt(float64(want.NumElements())), nil
}

// RSquared returns the coefficient of determination of got against want: 1
// for a perfect reconstruction, 0 for matching only the mean, negative for
// worse. A constant reference yields 1 for an exact match and -Inf
// otherwise.
func RSquared(want, got *dense.Dense) (float64, error) {
	dn, err := diffNorm(want, got)
	if err != nil {
		return 0, err
	}
	w := want.Data()
	mean := floats.Sum(w) / float64(len(w))
	ss := 0.0
	for _, v := range w {
		d := v - mean
		ss += d * d
	}
	if ss == 0 {
		if dn == 0 {
			return 1, nil
		}
		return math.Inf(-1), nil
	}
	return 1 - dn*dn/ss, nil
}

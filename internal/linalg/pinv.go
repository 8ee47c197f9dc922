package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// PseudoInverse computes the Moore-Penrose pseudo-inverse of a via SVD,
// with singular values below max(m,n)·ulp·s_max treated as zero.
// The pseudo-inverse of an all-zero matrix is the zero n×m matrix.
func PseudoInverse(a *mat.Dense) (*mat.Dense, error) {
	m, n := a.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, fmt.Errorf("pseudo-inverse of %dx%d matrix: %w", m, n, ErrFactorization)
	}

	s := svd.Values(nil)
	out := mat.NewDense(n, m, nil)
	if len(s) == 0 || s[0] == 0 {
		return out, nil
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// A⁺ = V · diag(1/s) · Uᵀ over the numerically nonzero components.
	cutoff := float64(max(m, n)) * ulp * s[0]
	k := len(s)
	for k > 0 && s[k-1] <= cutoff {
		k--
	}

	scaled := mat.NewDense(n, k, nil)
	for j := 0; j < k; j++ {
		inv := 1 / s[j]
		for i := 0; i < n; i++ {
			scaled.Set(i, j, v.At(i, j)*inv)
		}
	}
	out.Mul(scaled, u.Slice(0, m, 0, k).T())
	return out, nil
}

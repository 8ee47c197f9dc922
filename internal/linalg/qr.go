package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Orthonormalize factors a as Q·R where Q (m×min(m,n)) has orthonormal
// columns. Tall or square inputs use a thin QR; wide inputs fall back to a
// thin SVD basis (Q = U, R = Uᵀ·A), since a wide matrix has at most m
// orthonormal columns and gonum's QR requires m >= n. R is triangular only
// on the QR path, which no caller relies on.
func Orthonormalize(a *mat.Dense) (q, r *mat.Dense, err error) {
	m, n := a.Dims()

	if m >= n {
		var qr mat.QR
		qr.Factorize(a)

		var qFull, rFull mat.Dense
		qr.QTo(&qFull)
		qr.RTo(&rFull)

		q = mat.DenseCopyOf(qFull.Slice(0, m, 0, n))
		r = mat.DenseCopyOf(rFull.Slice(0, n, 0, n))
		return q, r, nil
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, nil, fmt.Errorf("orthonormalize %dx%d matrix: %w", m, n, ErrFactorization)
	}
	var u mat.Dense
	svd.UTo(&u)

	r = mat.NewDense(m, n, nil)
	r.Mul(u.T(), a)
	return &u, r, nil
}

// Package linalg wraps the dense linear-algebra primitives the decomposition
// engine consumes (truncated SVD, orthonormalization, pseudo-inverse). All
// heavy numerics are delegated to gonum; this package only adds the
// rank-or-tolerance truncation policy on top.
package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ulp is the distance from 1.0 to the next float64.
var ulp = math.Nextafter(1, 2) - 1

// SVDFactors holds a truncated singular value decomposition
// A ≈ U · diag(S) · Vᵀ with orthonormal U (m×r) and V (n×r).
// A zero truncation rank is represented by nil U/V and an empty S.
type SVDFactors struct {
	U *mat.Dense
	S []float64
	V *mat.Dense
}

// Rank returns the truncation rank.
func (f SVDFactors) Rank() int {
	return len(f.S)
}

// ScaledVT returns diag(S) · Vᵀ as a fresh r×n matrix, the remainder a
// left-to-right decomposition sweep carries forward. Returns nil at rank 0.
func (f SVDFactors) ScaledVT() *mat.Dense {
	if f.Rank() == 0 {
		return nil
	}
	n, r := f.V.Dims()
	out := mat.NewDense(r, n, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, f.S[i]*f.V.At(j, i))
		}
	}
	return out
}

// Compose reconstructs U · diag(S) · Vᵀ as an m×n matrix. The m and n
// arguments fix the output size so that rank 0 composes to a zero matrix.
func (f SVDFactors) Compose(m, n int) *mat.Dense {
	out := mat.NewDense(m, n, nil)
	if f.Rank() == 0 {
		return out
	}
	out.Product(f.U, f.ScaledVT())
	return out
}

// TruncatedSVD computes a truncated SVD of a.
//
// rank caps the number of retained components (negative means no cap) and is
// itself capped by the numerical rank of a. eps, when positive, is a relative
// discarded-energy bound: the smallest r is chosen such that
// sqrt(sum_{i>r} s_i²) <= eps · sqrt(sum s_i²), ties preferring fewer
// components. When both are given, the eps-driven rank is capped by rank.
// An all-zero matrix (or a zero cap) yields Rank() == 0 with nil factors.
//
// A convergence failure in the underlying factorization is returned as
// ErrFactorization and must be treated as fatal.
func TruncatedSVD(a *mat.Dense, rank int, eps float64) (SVDFactors, error) {
	m, n := a.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return SVDFactors{}, fmt.Errorf("truncated svd of %dx%d matrix: %w", m, n, ErrFactorization)
	}

	s := svd.Values(nil)
	for i, v := range s {
		if v < 0 || math.IsNaN(v) {
			s[i] = 0 // Singular values are non-negative by definition.
		}
	}

	r := truncationRank(s, m, n, rank, eps)
	if r == 0 {
		return SVDFactors{S: []float64{}}, nil
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	return SVDFactors{
		U: mat.DenseCopyOf(u.Slice(0, m, 0, r)),
		S: s[:r:r],
		V: mat.DenseCopyOf(v.Slice(0, n, 0, r)),
	}, nil
}

// truncationRank applies the rank cap and the relative discarded-energy bound
// to a descending list of singular values.
func truncationRank(s []float64, m, n, rank int, eps float64) int {
	total := 0.0
	for _, v := range s {
		total += v * v
	}
	if total == 0 {
		return 0
	}

	// Numerical rank: components below max(m,n)·ulp·s_max carry no signal.
	cutoff := float64(max(m, n)) * ulp * s[0]
	r := len(s)
	for r > 0 && s[r-1] <= cutoff {
		r--
	}

	if eps > 0 {
		// Smallest rank whose discarded energy stays within the bound;
		// the greedy tail walk prefers fewer components on ties.
		allowed := eps * eps * total
		tail := 0.0
		rEps := len(s)
		for rEps > 0 && tail+s[rEps-1]*s[rEps-1] <= allowed {
			tail += s[rEps-1] * s[rEps-1]
			rEps--
		}
		if rEps < r {
			r = rEps
		}
	}

	if rank >= 0 && rank < r {
		r = rank
	}
	return r
}

package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/xx-fighting/tntorch/internal/dense"
	"github.com/xx-fighting/tntorch/internal/linalg"
)

// ttSVD decomposes a dense array into a TT chain by a left-to-right sweep of
// truncated SVDs. At step k the remainder matrix (r[k]*n[k], rest) is
// factorized; U becomes core k and diag(S)*Vᵀ carries into the next step.
//
// ranks caps the interior bond ranks (nil or -1 entries leave a bond
// uncapped). eps > 0 bounds the total relative error: each of the N-1 steps
// receives an absolute budget of eps*normA/sqrt(N-1), measured against the
// input's norm, so the near-orthogonal step errors combine to at most
// eps*normA.
func ttSVD(a *dense.Dense, ranks []int, eps float64) ([]*dense.Dense, error) {
	shape := a.Shape()
	n := len(shape)
	cores := make([]*dense.Dense, n)
	if n == 1 {
		cores[0] = a.Clone().Reshape(1, shape[0], 1)
		return cores, nil
	}

	delta := splitTolerance(eps, n-1) * a.Norm()

	rest := a.NumElements() / shape[0]
	cur := mat.NewDense(shape[0], rest, append([]float64(nil), a.Data()...))
	rPrev := 1
	for k := 0; k < n-1; k++ {
		// cur is (rPrev*n[k], rest).
		maxRank := -1
		if ranks != nil {
			maxRank = ranks[k]
		}
		epsRel := 0.0
		if eps > 0 {
			if norm := mat.Norm(cur, 2); norm > 0 {
				epsRel = delta / norm
			}
		}
		f, err := linalg.TruncatedSVD(cur, maxRank, epsRel)
		if err != nil {
			return nil, fmt.Errorf("tt-svd step %d: %w", k, err)
		}
		rows, cols := cur.Dims()
		var u, carry *mat.Dense
		if f.Rank() == 0 {
			// Nothing survives the truncation: clamp the bond to 1 and
			// carry a zero remainder so the tail reconstructs to zeros.
			u = mat.NewDense(rows, 1, nil)
			carry = mat.NewDense(1, cols, nil)
		} else {
			u = f.U
			carry = f.ScaledVT()
		}
		r, _ := carry.Dims()
		cores[k] = dense.FromMatrix(u).Reshape(rPrev, shape[k], r)
		rest = cols / shape[k+1]
		cur = reshapeMatrix(carry, r*shape[k+1], rest)
		rPrev = r
	}
	cores[n-1] = dense.FromMatrix(cur).Reshape(rPrev, shape[n-1], 1)
	return cores, nil
}

package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/xx-fighting/tntorch/internal/dense"
	"github.com/xx-fighting/tntorch/internal/linalg"
)

// hosvd computes a Tucker factorization: for each mode independently, the
// left singular vectors of that mode's unfolding become an orthonormal
// factor matrix, and the core is the input projected through all transposed
// factors.
//
// ranks caps the per-mode factor widths (nil or -1 entries leave a mode
// uncapped). eps > 0 grants each of the n modes eps/sqrt(n) of the relative
// error budget; unfolding preserves the Frobenius norm, so the per-mode
// tolerance applies to the unfolding directly.
func hosvd(a *dense.Dense, ranks []int, eps float64) ([]*mat.Dense, *dense.Dense, error) {
	shape := a.Shape()
	n := len(shape)
	modeTol := splitTolerance(eps, n)
	factors := make([]*mat.Dense, n)
	for k := 0; k < n; k++ {
		maxRank := -1
		if ranks != nil {
			maxRank = ranks[k]
		}
		f, err := linalg.TruncatedSVD(a.Unfold(k), maxRank, modeTol)
		if err != nil {
			return nil, nil, fmt.Errorf("hosvd mode %d: %w", k, err)
		}
		if f.Rank() == 0 {
			// Zero unfolding: keep a single canonical basis column so the
			// factor stays orthonormal. The projected core is zero anyway.
			factors[k] = canonicalColumn(shape[k])
			continue
		}
		factors[k] = f.U
	}
	core := a
	for k := 0; k < n; k++ {
		core = core.ModeProduct(k, factors[k].T())
	}
	return factors, core, nil
}

package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/xx-fighting/tntorch/internal/dense"
)

// CPToTT converts a CP tensor into an equivalent TT tensor by the exact
// diagonal embedding: interior cores are (R, s, R) slices holding the CP
// columns on their diagonal, so no full array is formed and no accuracy is
// lost. Tucker factors carry over unchanged. The input is not modified;
// rounding the result usually pays off, since the embedded bond rank R is
// rarely minimal.
func CPToTT(t *Tensor) (*Tensor, error) {
	if !t.IsCP() {
		return nil, fmt.Errorf("%w: tensor already has TT cores", ErrInvalidRequest)
	}
	n := t.Dim()
	r := t.RankCP()
	cores := make([]*dense.Dense, n)
	for k, c := range t.cores {
		s := c.Shape()[0]
		switch {
		case n == 1:
			// A single CP mode sums its columns.
			summed := dense.New(dense.Shape{1, s, 1})
			for i := 0; i < s; i++ {
				total := 0.0
				for j := 0; j < r; j++ {
					total += c.At(i, j)
				}
				summed.Set(total, 0, i, 0)
			}
			cores[k] = summed
		case k == 0:
			cores[k] = c.Clone().Reshape(1, s, r)
		case k == n-1:
			// (R, s, 1) with core[j, i, 0] = c[i, j].
			last := dense.New(dense.Shape{r, s, 1})
			for i := 0; i < s; i++ {
				for j := 0; j < r; j++ {
					last.Set(c.At(i, j), j, i, 0)
				}
			}
			cores[k] = last
		default:
			// (R, s, R) diagonal slices: core[j, i, j] = c[i, j].
			mid := dense.New(dense.Shape{r, s, r})
			for i := 0; i < s; i++ {
				for j := 0; j < r; j++ {
					mid.Set(c.At(i, j), j, i, j)
				}
			}
			cores[k] = mid
		}
	}
	out := &Tensor{cores: cores}
	if t.factors != nil {
		out.factors = make([]*mat.Dense, n)
		for k, u := range t.factors {
			out.factors[k] = mat.DenseCopyOf(u)
		}
	}
	return out, nil
}

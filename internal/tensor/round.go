package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/xx-fighting/tntorch/internal/dense"
	"github.com/xx-fighting/tntorch/internal/linalg"
)

// RoundOptions configures in-place recompression. Rank slices follow the
// Options conventions: a single entry broadcasts, -1 leaves a position
// uncapped. Eps bounds the relative error of the rounding itself, measured
// against the tensor's own norm.
type RoundOptions struct {
	RanksTT     []int
	RanksTucker []int
	Eps         float64
}

// RoundTT recompresses the bond ranks in place: one right-to-left
// orthogonalization pass, then a left-to-right sweep of truncated SVDs with
// the remainder carried forward. The full array is never materialized. With
// neither caps nor Eps the sweep still strips numerically zero bonds.
func (t *Tensor) RoundTT(opts RoundOptions) error {
	if t.IsCP() {
		return fmt.Errorf("%w: CP cores round only after CPToTT", ErrInvalidRequest)
	}
	if opts.Eps < 0 {
		return fmt.Errorf("%w: Eps %v is negative", ErrInvalidRequest, opts.Eps)
	}
	n := t.Dim()
	if n == 1 {
		return nil
	}
	ranks, err := normalizeRanks(opts.RanksTT, n-1, "RanksTT")
	if err != nil {
		return err
	}
	if err := t.RightOrthogonalize(); err != nil {
		return err
	}
	// With all later cores right-orthogonal the first core carries the full
	// norm, and each sweep step sees the remaining energy in its own matrix
	// view.
	delta := splitTolerance(opts.Eps, n-1) * t.cores[0].Norm()
	for k := 0; k < n-1; k++ {
		s := t.cores[k].Shape()
		m := coreLeftMatrix(t.cores[k])
		maxRank := -1
		if ranks != nil {
			maxRank = ranks[k]
		}
		epsRel := 0.0
		if opts.Eps > 0 {
			if norm := mat.Norm(m, 2); norm > 0 {
				epsRel = delta / norm
			}
		}
		f, err := linalg.TruncatedSVD(m, maxRank, epsRel)
		if err != nil {
			return fmt.Errorf("round bond %d: %w", k+1, err)
		}
		rows, cols := m.Dims()
		var u, carry *mat.Dense
		if f.Rank() == 0 {
			u = mat.NewDense(rows, 1, nil)
			carry = mat.NewDense(1, cols, nil)
		} else {
			u = f.U
			carry = f.ScaledVT()
		}
		rNew, _ := carry.Dims()
		t.cores[k] = dense.FromMatrix(u).Reshape(s[0], s[1], rNew)

		next := t.cores[k+1]
		ns := next.Shape()
		var nm mat.Dense
		nm.Mul(carry, coreRightMatrix(next))
		t.cores[k+1] = dense.FromMatrix(&nm).Reshape(rNew, ns[1], ns[2])
	}
	return nil
}

// RoundTucker recompresses the Tucker factor widths in place. The small
// core is rebuilt densely from the chain (it is the compressed object, not
// the full array), each mode's unfolding is re-truncated to yield a basis
// change W, factors absorb W, and the shrunken core is refactorized into an
// exact chain.
func (t *Tensor) RoundTucker(opts RoundOptions) error {
	if t.IsCP() {
		return fmt.Errorf("%w: CP cores round only after CPToTT", ErrInvalidRequest)
	}
	if t.factors == nil {
		return fmt.Errorf("%w: tensor carries no Tucker factors", ErrInvalidRequest)
	}
	if opts.Eps < 0 {
		return fmt.Errorf("%w: Eps %v is negative", ErrInvalidRequest, opts.Eps)
	}
	n := t.Dim()
	ranks, err := normalizeRanks(opts.RanksTucker, n, "RanksTucker")
	if err != nil {
		return err
	}
	core := contractChain(t.cores)
	delta := splitTolerance(opts.Eps, n) * core.Norm()
	for k := 0; k < n; k++ {
		unf := core.Unfold(k)
		maxRank := -1
		if ranks != nil {
			maxRank = ranks[k]
		}
		epsRel := 0.0
		if opts.Eps > 0 {
			if norm := mat.Norm(unf, 2); norm > 0 {
				epsRel = delta / norm
			}
		}
		f, err := linalg.TruncatedSVD(unf, maxRank, epsRel)
		if err != nil {
			return fmt.Errorf("round mode %d: %w", k, err)
		}
		var w *mat.Dense
		if f.Rank() == 0 {
			w = canonicalColumn(core.Shape()[k])
		} else {
			w = f.U
		}
		var nf mat.Dense
		nf.Mul(t.factors[k], w)
		t.factors[k] = &nf
		core = core.ModeProduct(k, w.T())
	}
	cores, err := ttSVD(core, nil, 0)
	if err != nil {
		return err
	}
	t.cores = cores
	return nil
}

// Round recompresses both structural knobs in place. When a Tucker stage is
// requested alongside a TT stage the two split the error budget evenly;
// otherwise the single stage keeps all of it. CP tensors are rejected:
// convert with CPToTT first.
func (t *Tensor) Round(opts RoundOptions) error {
	if t.IsCP() {
		return fmt.Errorf("%w: CP cores round only after CPToTT", ErrInvalidRequest)
	}
	wantTucker := opts.RanksTucker != nil
	wantTT := opts.RanksTT != nil || opts.Eps > 0 || !wantTucker
	eps := opts.Eps
	if wantTucker && wantTT {
		eps = splitTolerance(opts.Eps, 2)
	}
	if wantTucker {
		if err := t.RoundTucker(RoundOptions{RanksTucker: opts.RanksTucker, Eps: eps}); err != nil {
			return err
		}
	}
	if !wantTT {
		return nil
	}
	return t.RoundTT(RoundOptions{RanksTT: opts.RanksTT, Eps: eps})
}

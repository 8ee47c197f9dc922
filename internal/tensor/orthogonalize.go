package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/xx-fighting/tntorch/internal/dense"
	"github.com/xx-fighting/tntorch/internal/linalg"
)

// leftStep makes core k left-orthogonal by a QR of its left matrix view,
// pushing the triangular remainder into core k+1.
func (t *Tensor) leftStep(k int) error {
	c := t.cores[k]
	s := c.Shape()
	q, r, err := linalg.Orthonormalize(coreLeftMatrix(c))
	if err != nil {
		return fmt.Errorf("orthogonalize core %d: %w", k, err)
	}
	_, rNew := q.Dims()
	t.cores[k] = dense.FromMatrix(q).Reshape(s[0], s[1], rNew)

	next := t.cores[k+1]
	ns := next.Shape()
	var m mat.Dense
	m.Mul(r, coreRightMatrix(next))
	t.cores[k+1] = dense.FromMatrix(&m).Reshape(rNew, ns[1], ns[2])
	return nil
}

// rightStep makes core k right-orthogonal, pushing the remainder into core
// k-1. The right view M (r0, n*r1) factors as M = Rᵀ Qᵀ through a QR of Mᵀ;
// Qᵀ has orthonormal rows and becomes the new core.
func (t *Tensor) rightStep(k int) error {
	c := t.cores[k]
	s := c.Shape()
	q, r, err := linalg.Orthonormalize(mat.DenseCopyOf(coreRightMatrix(c).T()))
	if err != nil {
		return fmt.Errorf("orthogonalize core %d: %w", k, err)
	}
	_, rNew := q.Dims()
	t.cores[k] = dense.FromMatrix(q.T()).Reshape(rNew, s[1], s[2])

	prev := t.cores[k-1]
	ps := prev.Shape()
	var m mat.Dense
	m.Mul(coreLeftMatrix(prev), r.T())
	t.cores[k-1] = dense.FromMatrix(&m).Reshape(ps[0], ps[1], rNew)
	return nil
}

// OrthogonalizeAt sweeps QR factorizations towards core k, leaving cores
// left of k left-orthogonal and cores right of k right-orthogonal. The
// represented value is unchanged; overlarge bond ranks shrink to their
// matrix-view minimum. Panics when k is out of range.
func (t *Tensor) OrthogonalizeAt(k int) error {
	if t.IsCP() {
		return fmt.Errorf("%w: orthogonalization requires a TT chain", ErrInvalidRequest)
	}
	if k < 0 || k >= t.Dim() {
		panic(fmt.Sprintf("tensor: orthogonalization center %d out of range for %d modes", k, t.Dim()))
	}
	for i := 0; i < k; i++ {
		if err := t.leftStep(i); err != nil {
			return err
		}
	}
	for i := t.Dim() - 1; i > k; i-- {
		if err := t.rightStep(i); err != nil {
			return err
		}
	}
	return nil
}

// LeftOrthogonalize leaves every core but the last left-orthogonal.
func (t *Tensor) LeftOrthogonalize() error { return t.OrthogonalizeAt(t.Dim() - 1) }

// RightOrthogonalize leaves every core but the first right-orthogonal. The
// tensor's norm is then carried entirely by the first core.
func (t *Tensor) RightOrthogonalize() error { return t.OrthogonalizeAt(0) }

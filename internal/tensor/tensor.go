// Package tensor implements compressed tensor representations and the
// decomposition routines that produce them.
//
// A Tensor holds one of two core layouts: a tensor-train chain of 3-mode
// cores linked by bond ranks, or a CP list of 2-mode factor matrices sharing
// a single rank. Either layout may additionally carry per-mode Tucker factor
// matrices with orthonormal columns, giving the four formats TT, CP,
// TT-Tucker and CP-Tucker. Decompositions are built from dense arrays with
// FromDense and recompressed in place with RoundTT and RoundTucker.
package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/xx-fighting/tntorch/internal/dense"
)

// Tensor is a compressed multi-dimensional array. The zero value is not
// usable; build one with FromDense, the Rand/Zeros/Ones constructors, or
// FromTTCores / FromCPFactors.
type Tensor struct {
	// cores holds either TT cores shaped (r[k-1], s[k], r[k]) with
	// r[0] == r[N] == 1, or CP factors shaped (s[k], R). All cores of one
	// tensor share a layout; the first core's mode count distinguishes them.
	cores []*dense.Dense

	// factors holds per-mode Tucker factor matrices (n[k], s[k]) with
	// orthonormal columns, or nil when the tensor carries none. Entries are
	// never nil when the slice is present.
	factors []*mat.Dense
}

// Dim returns the number of modes.
func (t *Tensor) Dim() int { return len(t.cores) }

// IsCP reports whether the cores form a CP list rather than a TT chain.
func (t *Tensor) IsCP() bool { return len(t.cores) > 0 && t.cores[0].Dim() == 2 }

// HasTucker reports whether the tensor carries Tucker factor matrices.
func (t *Tensor) HasTucker() bool { return t.factors != nil }

// coreModalSize returns the mode-k size seen by the core chain. It equals
// the full mode size unless a Tucker factor compresses that mode.
func (t *Tensor) coreModalSize(k int) int {
	if t.IsCP() {
		return t.cores[k].Shape()[0]
	}
	return t.cores[k].Shape()[1]
}

// Shape returns the sizes of the full (uncompressed) modes.
func (t *Tensor) Shape() dense.Shape {
	shape := make(dense.Shape, t.Dim())
	for k := range t.cores {
		if t.factors != nil {
			rows, _ := t.factors[k].Dims()
			shape[k] = rows
			continue
		}
		shape[k] = t.coreModalSize(k)
	}
	return shape
}

// RanksTT returns the bond ranks of the core chain, boundaries included, so
// the slice has Dim()+1 entries starting and ending at 1. For CP cores it
// reports the ranks of the equivalent diagonal TT chain.
func (t *Tensor) RanksTT() []int {
	n := t.Dim()
	ranks := make([]int, n+1)
	ranks[0], ranks[n] = 1, 1
	if t.IsCP() {
		r := t.RankCP()
		for k := 1; k < n; k++ {
			ranks[k] = r
		}
		return ranks
	}
	for k := 0; k < n-1; k++ {
		ranks[k+1] = t.cores[k].Shape()[2]
	}
	return ranks
}

// RanksTucker returns the per-mode sizes of the core chain. Modes without a
// Tucker factor report their full size.
func (t *Tensor) RanksTucker() []int {
	ranks := make([]int, t.Dim())
	for k := range ranks {
		ranks[k] = t.coreModalSize(k)
	}
	return ranks
}

// RankCP returns the shared CP rank, or 0 for TT cores.
func (t *Tensor) RankCP() int {
	if !t.IsCP() {
		return 0
	}
	return t.cores[0].Shape()[1]
}

// NumCoef returns the number of stored coefficients across cores and
// factors.
func (t *Tensor) NumCoef() int {
	n := 0
	for _, c := range t.cores {
		n += c.NumElements()
	}
	for _, u := range t.factors {
		rows, cols := u.Dims()
		n += rows * cols
	}
	return n
}

// NumElements returns the number of entries of the full array.
func (t *Tensor) NumElements() int { return t.Shape().NumElements() }

// CompressionRatio returns full size divided by stored size.
func (t *Tensor) CompressionRatio() float64 {
	return float64(t.NumElements()) / float64(t.NumCoef())
}

// Clone returns a deep copy sharing no storage with t.
func (t *Tensor) Clone() *Tensor {
	out := &Tensor{cores: make([]*dense.Dense, len(t.cores))}
	for k, c := range t.cores {
		out.cores[k] = c.Clone()
	}
	if t.factors != nil {
		out.factors = make([]*mat.Dense, len(t.factors))
		for k, u := range t.factors {
			out.factors[k] = mat.DenseCopyOf(u)
		}
	}
	return out
}

// Core returns the k-th core. The returned array shares storage with t.
func (t *Tensor) Core(k int) *dense.Dense { return t.cores[k] }

// Factor returns the k-th Tucker factor, or nil when the tensor carries
// none. The returned matrix shares storage with t.
func (t *Tensor) Factor(k int) *mat.Dense {
	if t.factors == nil {
		return nil
	}
	return t.factors[k]
}

// Format names the representation: "TT", "CP", "TT-Tucker" or "CP-Tucker".
func (t *Tensor) Format() string {
	name := "TT"
	if t.IsCP() {
		name = "CP"
	}
	if t.HasTucker() {
		name += "-Tucker"
	}
	return name
}

func (t *Tensor) String() string {
	return fmt.Sprintf("%dD %s tensor %v", t.Dim(), t.Format(), t.Shape())
}

// validate checks that cores and factors chain into a consistent network.
func (t *Tensor) validate() error {
	if len(t.cores) == 0 {
		return fmt.Errorf("%w: tensor has no cores", ErrShapeMismatch)
	}
	cp := t.IsCP()
	for k, c := range t.cores {
		switch {
		case cp && c.Dim() != 2:
			return fmt.Errorf("%w: CP core %d has %d modes, want 2", ErrShapeMismatch, k, c.Dim())
		case !cp && c.Dim() != 3:
			return fmt.Errorf("%w: TT core %d has %d modes, want 3", ErrShapeMismatch, k, c.Dim())
		}
	}
	if cp {
		r := t.cores[0].Shape()[1]
		for k, c := range t.cores {
			if c.Shape()[1] != r {
				return fmt.Errorf("%w: CP core %d has rank %d, want %d", ErrShapeMismatch, k, c.Shape()[1], r)
			}
		}
	} else {
		if r0 := t.cores[0].Shape()[0]; r0 != 1 {
			return fmt.Errorf("%w: leading bond rank is %d, want 1", ErrShapeMismatch, r0)
		}
		if rn := t.cores[len(t.cores)-1].Shape()[2]; rn != 1 {
			return fmt.Errorf("%w: trailing bond rank is %d, want 1", ErrShapeMismatch, rn)
		}
		for k := 0; k < len(t.cores)-1; k++ {
			right, left := t.cores[k].Shape()[2], t.cores[k+1].Shape()[0]
			if right != left {
				return fmt.Errorf("%w: bond %d links ranks %d and %d", ErrShapeMismatch, k+1, right, left)
			}
		}
	}
	if t.factors == nil {
		return nil
	}
	if len(t.factors) != len(t.cores) {
		return fmt.Errorf("%w: %d Tucker factors for %d modes", ErrShapeMismatch, len(t.factors), len(t.cores))
	}
	for k, u := range t.factors {
		if u == nil {
			return fmt.Errorf("%w: Tucker factor %d is nil", ErrShapeMismatch, k)
		}
		_, cols := u.Dims()
		if cols != t.coreModalSize(k) {
			return fmt.Errorf("%w: Tucker factor %d has %d columns, core expects %d", ErrShapeMismatch, k, cols, t.coreModalSize(k))
		}
	}
	return nil
}

package dense

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/xx-fighting/tntorch/internal/parallel"
)

var parCfg = parallel.DefaultConfig()

// Permute returns a copy of the array with its modes reordered so that
// result mode i is source mode axes[i].
// Panics if axes is not a permutation of [0, ndim).
func (d *Dense) Permute(axes ...int) *Dense {
	ndim := len(d.shape)
	if len(axes) != ndim {
		panic(fmt.Sprintf("dense: permute: axes length %d != ndim %d", len(axes), ndim))
	}
	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("dense: permute: invalid axis %d for %d-mode array", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("dense: permute: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	dstShape := make(Shape, ndim)
	for i, ax := range axes {
		dstShape[i] = d.shape[ax]
	}
	dst := New(dstShape)

	// Stride of destination mode i in the source buffer.
	permStrides := make([]int, ndim)
	for i, ax := range axes {
		permStrides[i] = d.strides[ax]
	}
	dstStrides := dst.strides

	parallel.ForRange(len(dst.data), func(start, end int) {
		for i := start; i < end; i++ {
			// Decode the destination coordinates and accumulate the
			// corresponding source offset in one pass.
			idx := i
			src := 0
			for dim := 0; dim < ndim; dim++ {
				src += (idx / dstStrides[dim]) * permStrides[dim]
				idx %= dstStrides[dim]
			}
			dst.data[i] = d.data[src]
		}
	}, parCfg)

	return dst
}

// Unfold reshapes the array into a matrix along the chosen mode: rows index
// that mode, columns flatten the remaining modes in their original order
// (row-major). The result is a copy; Fold is the exact inverse.
// Panics if mode is out of [0, ndim).
func (d *Dense) Unfold(mode int) *mat.Dense {
	ndim := len(d.shape)
	if mode < 0 || mode >= ndim {
		panic(fmt.Sprintf("dense: unfold: mode %d out of range for %d-mode array", mode, ndim))
	}

	rows := d.shape[mode]
	cols := len(d.data) / rows

	if mode == 0 {
		// Already laid out as (n_0, rest).
		out := make([]float64, len(d.data))
		copy(out, d.data)
		return mat.NewDense(rows, cols, out)
	}

	axes := make([]int, 0, ndim)
	axes = append(axes, mode)
	for j := 0; j < ndim; j++ {
		if j != mode {
			axes = append(axes, j)
		}
	}
	p := d.Permute(axes...)
	return mat.NewDense(rows, cols, p.data)
}

// Fold is the inverse of Unfold: it reassembles a matrix produced by
// Unfold(mode) into an array of the given shape.
// Panics if mode is out of range or the element counts disagree.
func Fold(m *mat.Dense, mode int, shape Shape) *Dense {
	ndim := len(shape)
	if mode < 0 || mode >= ndim {
		panic(fmt.Sprintf("dense: fold: mode %d out of range for %d-mode shape", mode, ndim))
	}
	r, c := m.Dims()
	if r != shape[mode] || r*c != shape.NumElements() {
		panic(fmt.Sprintf("dense: fold: matrix %dx%d does not match shape %v at mode %d", r, c, shape, mode))
	}

	// The matrix is the permuted tensor (mode first, others in order).
	permShape := make(Shape, 0, ndim)
	permShape = append(permShape, shape[mode])
	for j := 0; j < ndim; j++ {
		if j != mode {
			permShape = append(permShape, shape[j])
		}
	}

	data := make([]float64, r*c)
	raw := m.RawMatrix()
	if raw.Stride == c {
		copy(data, raw.Data)
	} else {
		for i := 0; i < r; i++ {
			copy(data[i*c:(i+1)*c], raw.Data[i*raw.Stride:i*raw.Stride+c])
		}
	}
	permuted := Wrap(data, permShape)
	if mode == 0 {
		return permuted
	}

	// Invert the mode-to-front permutation.
	inv := make([]int, ndim)
	inv[0] = mode
	k := 1
	for j := 0; j < ndim; j++ {
		if j != mode {
			inv[k] = j
			k++
		}
	}
	axes := make([]int, ndim)
	for i, ax := range inv {
		axes[ax] = i
	}
	return permuted.Permute(axes...)
}

// ModeProduct contracts the array with a matrix along one mode
// (the tensor-times-matrix product): the result replaces size n_mode with
// m's row count, computed as fold(m * unfold(a, mode)).
// Panics if m's column count does not match the mode's size.
func (d *Dense) ModeProduct(mode int, m mat.Matrix) *Dense {
	rows, cols := m.Dims()
	if cols != d.shape[mode] {
		panic(fmt.Sprintf("dense: mode product: matrix is %dx%d but mode %d has size %d", rows, cols, mode, d.shape[mode]))
	}

	unf := d.Unfold(mode)
	var out mat.Dense
	out.Mul(m, unf)

	newShape := d.shape.Clone()
	newShape[mode] = rows
	return Fold(&out, mode, newShape)
}
